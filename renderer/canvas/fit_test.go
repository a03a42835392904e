package canvasrenderer

import (
	"testing"

	"github.com/ByLCY/autofit/layout"
)

func fitSize(t *testing.T, r *Renderer, text layout.StyledText, w, h float64) float64 {
	t.Helper()
	size, err := layout.MaxFontSize(text, layout.NewFitBox(w, h), r, layout.DefaultSearchOptions())
	if err != nil {
		t.Fatalf("MaxFontSize: %v", err)
	}
	return size
}

func TestFittedTextStaysInsideBox(t *testing.T) {
	r := NewRenderer(".")
	cases := []struct {
		text string
		w, h float64
	}{
		{"COOL", 200, 200},
		{"Line one.\nLine two!", 100, 100},
		{"The quick brown fox jumps over the lazy dog", 180, 60},
		{"Supercalifragilisticexpialidocious", 40, 300},
	}
	for _, c := range cases {
		text := layout.NewStyledText(c.text, bodyStyle(12))
		size := fitSize(t, r, text, c.w, c.h)
		if size <= layout.DefaultMinFontSize {
			continue
		}
		measured, err := r.Measure(layout.WithFontSize(text, size), c.w, true)
		if err != nil {
			t.Fatalf("measure: %v", err)
		}
		if !layout.NewFitBox(c.w, c.h).Contains(measured) {
			t.Fatalf("%q at %.0fpt does not fit %gx%g: %+v", c.text, size, c.w, c.h, measured)
		}
	}
}

func TestFittedWordsAreNotBroken(t *testing.T) {
	r := NewRenderer(".")
	text := layout.NewStyledText("tiny enormousword", bodyStyle(12))
	size := fitSize(t, r, text, 120, 200)

	longest, err := layout.LongestWord(text, layout.DefaultReferenceFontSize, r)
	if err != nil {
		t.Fatalf("LongestWord: %v", err)
	}
	if got := longest.String(); got != "enormousword" {
		t.Fatalf("longest word = %q", got)
	}
	scaled := layout.WithFontSize(longest, size)
	single, err := r.Measure(scaled, 0, false)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if single.Width > 120 {
		t.Fatalf("longest word is %.2fpt wide at %.0fpt, box is 120pt", single.Width, size)
	}
	wrapped, err := r.Measure(scaled, 120, true)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if wrapped.Height != single.Height {
		t.Fatalf("longest word wraps at fitted size: %.2f vs %.2f", wrapped.Height, single.Height)
	}
}

func TestCarriageReturnSeparatesWords(t *testing.T) {
	r := NewRenderer(".")
	text := layout.NewStyledText("AB\rCDEFGHIJ", bodyStyle(12))
	size := fitSize(t, r, text, 100, 400)

	longest, err := layout.LongestWord(text, layout.DefaultReferenceFontSize, r)
	if err != nil {
		t.Fatalf("LongestWord: %v", err)
	}
	if got := longest.String(); got != "CDEFGHIJ" {
		t.Fatalf("longest word = %q", got)
	}
	lines, err := layoutLines(layout.WithFontSize(text, size), 100, true, r.faceSource())
	if err != nil {
		t.Fatalf("layoutLines: %v", err)
	}
	for _, ln := range lines {
		if ln.content() == "CDEFGHIJ" {
			return
		}
	}
	t.Fatalf("word CDEFGHIJ broken at %.0fpt: %d lines", size, len(lines))
}

func TestFitSizeGrowsWithBox(t *testing.T) {
	r := NewRenderer(".")
	text := layout.NewStyledText("Grow with the box", bodyStyle(12))
	prev := 0.0
	for _, w := range []float64{50, 100, 150, 200, 300} {
		size := fitSize(t, r, text, w, w)
		if size < prev {
			t.Fatalf("size shrank from %.0f to %.0f when box grew to %g", prev, size, w)
		}
		prev = size
	}
}

func TestMoreLinesFitSmaller(t *testing.T) {
	r := NewRenderer(".")
	one := fitSize(t, r, layout.NewStyledText("Line one.", bodyStyle(12)), 100, 100)
	two := fitSize(t, r, layout.NewStyledText("Line one.\nLine two!", bodyStyle(12)), 100, 100)
	if two >= one {
		t.Fatalf("expected second line to shrink text: %.0f >= %.0f", two, one)
	}
}

func TestWithFontSizeIsIdempotentForMeasurement(t *testing.T) {
	r := NewRenderer(".")
	text := layout.NewStyledText("Repeat me twice", bodyStyle(12))
	direct, err := r.Measure(layout.WithFontSize(text, 30), 150, true)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	twice, err := r.Measure(layout.WithFontSize(layout.WithFontSize(text, 7), 30), 150, true)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if direct != twice {
		t.Fatalf("measurements differ: %+v vs %+v", direct, twice)
	}
}
