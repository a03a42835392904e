package layout

import (
	"errors"
	"reflect"
	"testing"
)

func TestWithFontSize(t *testing.T) {
	emoji := FontResource{Name: "Emoji", Src: "embed:bold"}
	style := Style{Font: testFont, Size: 12, Color: Color{R: 10}, Align: AlignCenter, LineSpacing: 1.5, OriginalFont: &emoji}
	text := NewStyledText("hello ", style).Append("world", Style{Font: testFont, Size: 9})

	out := WithFontSize(text, 30)
	for i, r := range out.Runs {
		if r.Style.Size != 30 {
			t.Fatalf("run %d size = %g", i, r.Style.Size)
		}
		if r.Style.OriginalFont != nil {
			t.Fatalf("run %d kept its original font", i)
		}
	}
	if out.String() != text.String() {
		t.Fatalf("text changed: %q", out.String())
	}
	first := out.Runs[0].Style
	if first.Color != style.Color || first.Align != style.Align || first.LineSpacing != style.LineSpacing || first.Font != style.Font {
		t.Fatalf("other attributes changed: %+v", first)
	}
	if text.Runs[0].Style.Size != 12 || text.Runs[0].Style.OriginalFont == nil {
		t.Fatalf("input was modified")
	}
}

func TestWithFontSizeIsIdempotent(t *testing.T) {
	text := plain("abc").Append("def", Style{Font: testFont, Size: 20, Color: Color{B: 200}})
	once := WithFontSize(text, 18)
	twice := WithFontSize(WithFontSize(text, 7), 18)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("WithFontSize is not idempotent:\n%+v\n%+v", once, twice)
	}
	if got := WithFontSize(StyledText{}, 10); len(got.Runs) != 0 {
		t.Fatalf("empty text gained runs")
	}
}

func TestHasFontFullySpecified(t *testing.T) {
	if !HasFontFullySpecified(plain("ok")) {
		t.Fatalf("expected font to be specified")
	}
	withEmpty := StyledText{Runs: []Run{{Text: "", Style: Style{}}, {Text: "x", Style: Style{Font: testFont}}}}
	if !HasFontFullySpecified(withEmpty) {
		t.Fatalf("empty runs must not require a font")
	}
	missing := StyledText{Runs: []Run{{Text: "x", Style: Style{Font: FontResource{Src: "  "}}}}}
	if HasFontFullySpecified(missing) {
		t.Fatalf("blank font must not count as specified")
	}
	if err := checkFonts(missing); !errors.Is(err, ErrFontUnspecified) {
		t.Fatalf("unexpected error: %v", err)
	}
}
