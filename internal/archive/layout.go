package archive

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// =============================================================================
// 📁 文件布局约定
// =============================================================================

const (
	// TripletSize 一个完整三元组的文件数
	TripletSize = 3

	// 暂存目录中的固定文件名
	StagedImage  = "current.jpg"
	StagedPrompt = "currentPrompt.txt"
	StagedStory  = "currentStory.txt"

	// 归档文件名后缀，前缀为序号
	ImageSuffix  = "_.jpg"
	PromptSuffix = "_prompt.txt"
	StorySuffix  = "_story.txt"
)

// StagedNames 按搬迁顺序返回暂存文件名
func StagedNames() []string {
	return []string{StagedImage, StagedPrompt, StagedStory}
}

// Day 日历日
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf 取 t 所在时区的日历日
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay 解析 YYYY-MM-DD
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DayOf(t), nil
}

// Dir 返回 root/YYYY/MM/DD
func (d Day) Dir(root string) string {
	return filepath.Join(root,
		fmt.Sprintf("%04d", d.Year),
		fmt.Sprintf("%02d", int(d.Month)),
		fmt.Sprintf("%02d", d.Day),
	)
}

// Compact 返回 YYYYMMDD
func (d Day) Compact() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// =============================================================================
// 🗂️ 归档条目
// =============================================================================

// Entry 已归档的三元组，写入后不可变
type Entry struct {
	Day        Day    `json:"day"`
	Sequence   int    `json:"sequence"`
	ImagePath  string `json:"image_path"`
	PromptPath string `json:"prompt_path"`
	StoryPath  string `json:"story_path"`
}

// NewEntry 按布局约定构造 root 下 day 的第 seq 个条目
func NewEntry(root string, day Day, seq int) Entry {
	dir := day.Dir(root)
	n := strconv.Itoa(seq)
	return Entry{
		Day:        day,
		Sequence:   seq,
		ImagePath:  filepath.Join(dir, n+ImageSuffix),
		PromptPath: filepath.Join(dir, n+PromptSuffix),
		StoryPath:  filepath.Join(dir, n+StorySuffix),
	}
}

// ID 返回 YYYYMMDD_<n>
func (e Entry) ID() string {
	return FormatID(e.Day, e.Sequence)
}

// Paths 按搬迁顺序返回三个目标路径
func (e Entry) Paths() []string {
	return []string{e.ImagePath, e.PromptPath, e.StoryPath}
}

// FormatID 由日期与序号派生标识符，序号不补零
func FormatID(day Day, seq int) string {
	return day.Compact() + "_" + strconv.Itoa(seq)
}
