package layout

import (
	"errors"
	"testing"
)

func TestWordsSplitsOnWhitespace(t *testing.T) {
	words := Words(plain("  hello   wide\tworld\n"))
	want := []string{"hello", "wide", "world"}
	if len(words) != len(want) {
		t.Fatalf("got %d words, want %d", len(words), len(want))
	}
	for i, w := range words {
		if w.String() != want[i] {
			t.Fatalf("word %d = %q, want %q", i, w.String(), want[i])
		}
	}
}

func TestWordsKeepRunStyles(t *testing.T) {
	red := Style{Font: testFont, Size: 12, Color: Color{R: 255}}
	text := plain("he").Append("llo world", red)
	words := Words(text)
	if len(words) != 2 {
		t.Fatalf("got %d words", len(words))
	}
	first := words[0]
	if len(first.Runs) != 2 || first.Runs[0].Text != "he" || first.Runs[1].Text != "llo" {
		t.Fatalf("unexpected runs: %+v", first.Runs)
	}
	if first.Runs[1].Style.Color != red.Color {
		t.Fatalf("style lost across runs")
	}
}

func TestLongestWordUsesReferenceSize(t *testing.T) {
	m := &monoMeasurer{}
	big := Style{Font: testFont, Size: 40}
	small := Style{Font: testFont, Size: 10}
	// 原始字号下 "aa" 更宽，但统一到参考字号后 "bbbb" 才是最长单词。
	text := NewStyledText("aa ", big).Append("bbbb", small)
	longest, err := LongestWord(text, 12, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if longest.String() != "bbbb" {
		t.Fatalf("longest = %q, want bbbb", longest.String())
	}
	for _, s := range m.sizes {
		if s != 12 {
			t.Fatalf("word measured at %g, want reference size 12", s)
		}
	}
}

func TestLongestWordTieKeepsFirst(t *testing.T) {
	longest, err := LongestWord(plain("Line one."), 12, &monoMeasurer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if longest.String() != "Line" {
		t.Fatalf("longest = %q, want the first of equal words", longest.String())
	}
}

func TestLongestWordEdgeCases(t *testing.T) {
	longest, err := LongestWord(plain(" \n\t "), 12, &monoMeasurer{})
	if err != nil || !longest.IsEmpty() {
		t.Fatalf("whitespace-only text: %q, %v", longest.String(), err)
	}
	if _, err := LongestWord(NewStyledText("x", Style{Size: 12}), 12, &monoMeasurer{}); !errors.Is(err, ErrFontUnspecified) {
		t.Fatalf("expected ErrFontUnspecified, got %v", err)
	}
	if _, err := LongestWord(plain("x"), 12, nil); err == nil {
		t.Fatalf("expected error for nil measurer")
	}
}
