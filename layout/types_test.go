package layout

import "testing"

func TestFitBoxFloorsAndClamps(t *testing.T) {
	b := NewFitBox(100.9, -3)
	if b.Width != 100 || b.Height != 0 {
		t.Fatalf("unexpected box: %+v", b)
	}
	box := NewFitBox(100, 50)
	if !box.Contains(Size{Width: 100, Height: 50}) {
		t.Fatalf("exact size must fit")
	}
	if box.Contains(Size{Width: 100.01, Height: 10}) {
		t.Fatalf("wider size must not fit")
	}
}

func TestStyledTextRunes(t *testing.T) {
	bold := Style{Font: FontResource{Name: "Bold", Src: "embed:bold"}, Size: 12}
	text := plain("héllo ").Append("wörld", bold).Append("!", bold)
	if text.Len() != 12 {
		t.Fatalf("Len = %d, want 12", text.Len())
	}
	if len(text.Runs) != 2 {
		t.Fatalf("same-style appends should merge, got %d runs", len(text.Runs))
	}
	s := text.Slice(4, 8)
	if s.String() != "o wö" || len(s.Runs) != 2 || s.Runs[1].Style.Font.Name != "Bold" {
		t.Fatalf("unexpected slice: %+v", s)
	}
	joined := plain("a").Concat(plain("b"))
	if len(joined.Runs) != 1 || joined.String() != "ab" {
		t.Fatalf("unexpected concat: %+v", joined)
	}
	if !NewStyledText("", bold).IsEmpty() {
		t.Fatalf("empty string should give empty text")
	}
}
