package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrFontUnspecified 表示文本存在未指定字体的位置。
	ErrFontUnspecified = errors.New("layout: text must have a font fully specified on every character")
	// ErrIncompleteLayout 表示测量后端排出的字形没有覆盖整段文本，属于后端内部不变式被破坏。
	ErrIncompleteLayout = errors.New("layout: measured layout does not cover the whole text")
)

// HasFontFullySpecified 判断每个非空片段是否都指定了字体。
func HasFontFullySpecified(text StyledText) bool {
	return checkFonts(text) == nil
}

func checkFonts(text StyledText) error {
	for i, r := range text.Runs {
		if r.Text == "" {
			continue
		}
		if !r.Style.Font.Specified() {
			return fmt.Errorf("run %d (%q): %w", i, r.Text, ErrFontUnspecified)
		}
	}
	return nil
}

// WithFontSize 返回把所有片段字号改为 size 的副本，颜色、对齐等其它属性保持不变。
// 宿主附加的 OriginalFont 会被清除，否则回退字形仍按旧字号测量。
func WithFontSize(text StyledText, size float64) StyledText {
	if len(text.Runs) == 0 {
		return text
	}
	out := StyledText{Runs: make([]Run, len(text.Runs))}
	for i, r := range text.Runs {
		r.Style.Size = size
		r.Style.OriginalFont = nil
		out.Runs[i] = r
	}
	return out
}
