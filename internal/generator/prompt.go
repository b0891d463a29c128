package generator

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
)

// LoadStyles 读取风格列表，每行一个，忽略空行
func LoadStyles(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open styles file: %w", err)
	}
	defer f.Close()

	var styles []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			styles = append(styles, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read styles file: %w", err)
	}
	return styles, nil
}

// PickStyle 掷一个六面骰，点数 1..3 时随机返回一种风格，否则返回空字符串
func PickStyle(rng *rand.Rand, styles []string) string {
	if len(styles) == 0 {
		return ""
	}
	if rng.IntN(6)+1 > 3 {
		return ""
	}
	return styles[rng.IntN(len(styles))]
}

// ImagePrompt 拼接图像提示词：可选追加 ", <style> style"，再去掉第一个句点
func ImagePrompt(terms, style string) string {
	p := terms
	if style != "" {
		p += ", " + style + " style"
	}
	return strings.Replace(p, ".", "", 1)
}

// StoryPrompt 以不含风格的画面描述拼接故事提示词，并去掉第一个双引号
func StoryPrompt(instructions, terms string) string {
	return strings.Replace(instructions+terms, `"`, "", 1)
}
