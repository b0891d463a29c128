package archive

import (
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrNoEntries 当日没有已归档的条目
var ErrNoEntries = errors.New("no archived entries")

// ListDay 返回 root 下 day 的全部条目，按序号数值升序排列
func ListDay(root string, day Day) ([]Entry, error) {
	dir := day.Dir(root)
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read day directory: %w", err)
	}

	seen := make(map[int]struct{})
	for _, f := range files {
		n, err := ParseSequence(f.Name())
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		seen[n] = struct{}{}
	}

	seqs := make([]int, 0, len(seen))
	for n := range seen {
		seqs = append(seqs, n)
	}
	sort.Ints(seqs)

	entries := make([]Entry, 0, len(seqs))
	for _, n := range seqs {
		entries = append(entries, NewEntry(root, day, n))
	}
	return entries, nil
}

// Latest 返回 day 中序号最大的条目
func Latest(root string, day Day) (Entry, error) {
	entries, err := ListDay(root, day)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("%w for %s", ErrNoEntries, day)
	}
	return entries[len(entries)-1], nil
}
