package layout

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	monoAdvance = 0.6 // 每个字符宽度 = 0.6 × 字号
	monoLeading = 1.2 // 行高 = 1.2 × 字号
)

var testFont = FontResource{Name: "Body", Src: "embed:regular"}

func plain(s string) StyledText {
	return NewStyledText(s, Style{Font: testFont, Size: 12})
}

// monoMeasurer 是等宽字体的测量后端：贪心地在空白处折行，单词本身超宽时按字符拆开。
type monoMeasurer struct {
	calls int
	sizes []float64
}

func (m *monoMeasurer) Measure(text StyledText, maxWidth float64, wrap bool) (Size, error) {
	m.calls++
	size := 0.0
	for _, r := range text.Runs {
		size = math.Max(size, r.Style.Size)
	}
	m.sizes = append(m.sizes, size)
	lines := monoLines(text.String(), maxWidth, wrap, monoAdvance*size)
	var out Size
	for _, ln := range lines {
		out.Width = math.Max(out.Width, float64(utf8.RuneCountInString(ln))*monoAdvance*size)
	}
	out.Height = float64(len(lines)) * monoLeading * size
	return out, nil
}

func monoLines(s string, maxWidth float64, wrap bool, advance float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		if !wrap || maxWidth <= 0 || advance <= 0 {
			lines = append(lines, strings.TrimRight(para, " \t"))
			continue
		}
		limit := int(math.Floor(maxWidth/advance + 1e-9))
		if limit < 1 {
			limit = 1
		}
		cur := ""
		for _, word := range strings.Fields(para) {
			runes := []rune(word)
			for len(runes) > limit {
				if cur != "" {
					lines = append(lines, cur)
					cur = ""
				}
				lines = append(lines, string(runes[:limit]))
				runes = runes[limit:]
			}
			w := string(runes)
			switch {
			case cur == "":
				cur = w
			case utf8.RuneCountInString(cur)+1+len(runes) <= limit:
				cur += " " + w
			default:
				lines = append(lines, cur)
				cur = w
			}
		}
		lines = append(lines, cur)
	}
	return lines
}
