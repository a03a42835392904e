package layout

import (
	"fmt"
	"strings"
	"unicode"
)

// IsSeparator 报告 r 是否为单词分隔符。
// 采用完整的 Unicode 空白集合（含换行），与 canvas 测量后端寻找断行机会时使用的判定一致。
func IsSeparator(r rune) bool { return unicode.IsSpace(r) }

// Words 把文本按分隔符拆成单词，顺序与原文一致，空片段被过滤，跨样式的单词保留各自的片段样式。
func Words(text StyledText) []StyledText {
	var (
		words []StyledText
		cur   StyledText
		buf   strings.Builder
		style Style
	)
	flushRun := func() {
		if buf.Len() == 0 {
			return
		}
		cur = cur.Append(buf.String(), style)
		buf.Reset()
	}
	flushWord := func() {
		flushRun()
		if len(cur.Runs) > 0 {
			words = append(words, cur)
		}
		cur = StyledText{}
	}
	for _, run := range text.Runs {
		flushRun()
		style = run.Style
		for _, r := range run.Text {
			if IsSeparator(r) {
				flushWord()
				continue
			}
			buf.WriteRune(r)
		}
	}
	flushWord()
	return words
}

// LongestWord 返回单行渲染宽度最大的单词。
// 所有单词都在同一个参考字号 referenceSize 下测量。
// 文本为空或只有空白时返回空文本。
func LongestWord(text StyledText, referenceSize float64, m Measurer) (StyledText, error) {
	if err := checkFonts(text); err != nil {
		return StyledText{}, err
	}
	if m == nil {
		return StyledText{}, fmt.Errorf("layout: 缺少测量后端 Measurer")
	}
	if referenceSize <= 0 {
		referenceSize = DefaultReferenceFontSize
	}
	var (
		longest StyledText
		widest  = -1.0
	)
	for _, word := range Words(text) {
		size, err := m.Measure(WithFontSize(word, referenceSize), 0, false)
		if err != nil {
			return StyledText{}, fmt.Errorf("测量单词 %q 失败: %w", word.String(), err)
		}
		if size.Width > widest {
			widest = size.Width
			longest = word
		}
	}
	return longest, nil
}
