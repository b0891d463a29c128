package archive

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrMalformedName 文件名缺少可解析的序号前缀
var ErrMalformedName = errors.New("file name has no numeric sequence prefix")

// ParseSequence 解析文件名开头的连续十进制数字
func ParseSequence(name string) (int, error) {
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedName, name)
	}

	n, err := strconv.Atoi(name[:end])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedName, name, err)
	}
	return n, nil
}

// NextSequence 返回 dayDir 中下一个可用序号。
// 目录不存在或为空时返回 1；否则返回最大前缀加一。
// 任何无法解析前缀的文件名都视为数据完整性错误。
func NextSequence(dayDir string) (int, error) {
	entries, err := os.ReadDir(dayDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to read day directory: %w", err)
	}

	highest := 0
	for _, e := range entries {
		n, err := ParseSequence(e.Name())
		if err != nil {
			return 0, fmt.Errorf("scan %s: %w", dayDir, err)
		}
		if n > highest {
			highest = n
		}
	}

	return highest + 1, nil
}
