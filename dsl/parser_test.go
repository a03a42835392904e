package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/autofit/dsl"
)

const sampleDSL = `
doc Cards v1 {
  meta {
    title: "Flash cards"
    keywords: [
      "fit"
      "demo"
    ]
  }

  resources {
    font Body {
      src: "embed:regular"
    }
    color Accent #FF6600
    style Title extends Base {
      font: Body
      size: 12pt
      line-height: 1.2x
      color: Accent
    }
  }

  // a comment
  page 400pt 300pt margin 10pt {
    box x 10pt y 10pt width 180pt height 120pt valign center background #000 {
      span Title { "COOL ${user.name}" }
      "plain tail"
    }
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Name != "Cards" || doc.Version != "v1" {
		t.Fatalf("unexpected header: %s %s", doc.Name, doc.Version)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	kinds := []string{"meta", "resources", "page"}
	for i, k := range kinds {
		if got := doc.Sections[i].Kind(); got != k {
			t.Fatalf("section %d kind = %s, want %s", i, got, k)
		}
	}

	meta := doc.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Key != "title" || title.Value.Text() != "Flash cards" {
		t.Fatalf("expected title assignment, got %+v", meta.Block.Statements[0])
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.Array == nil {
		t.Fatalf("expected keywords array assignment")
	}
	if got := keywords.Value.Strings(); len(got) != 2 || got[0] != "fit" || got[1] != "demo" {
		t.Fatalf("unexpected keywords: %v", got)
	}

	res := doc.Sections[1].Resources.Block.Statements
	if len(res) != 3 {
		t.Fatalf("expected 3 resource statements, got %d", len(res))
	}
	color := res[1].Command
	if color == nil || color.Name != "color" || len(color.Args) != 2 || color.Args[1].Type != "Color" || color.Args[1].Value != "#FF6600" {
		t.Fatalf("unexpected color command: %+v", color)
	}
	style := res[2].Command
	if style == nil || style.Name != "style" || len(style.Args) != 3 || style.Args[1].Value != "extends" {
		t.Fatalf("unexpected style command: %+v", style)
	}
	props := map[string]string{}
	for _, st := range style.Block.Statements {
		if st.Assignment != nil {
			props[st.Assignment.Key] = st.Assignment.Value.Text()
		}
	}
	if props["font"] != "Body" || props["size"] != "12pt" || props["line-height"] != "1.2x" || props["color"] != "Accent" {
		t.Fatalf("unexpected style props: %v", props)
	}

	page := doc.Sections[2].Page
	if len(page.Params) != 4 || page.Params[0].Value != "400pt" || page.Params[3].Value != "10pt" {
		t.Fatalf("unexpected page params: %+v", page.Params)
	}
	box := page.Block.Statements[0].Command
	if box == nil || box.Name != "box" {
		t.Fatalf("expected box command, got %+v", page.Block.Statements[0])
	}
	if len(box.Args) != 12 || box.Args[11].Value != "#000" {
		t.Fatalf("unexpected box args: %d %+v", len(box.Args), box.Args)
	}
	if len(box.Block.Statements) != 2 {
		t.Fatalf("expected 2 box statements, got %d", len(box.Block.Statements))
	}
	span := box.Block.Statements[0].Command
	if span == nil || span.Name != "span" || span.Args[0].Value != "Title" {
		t.Fatalf("expected span command, got %+v", box.Block.Statements[0])
	}
	if got := string(span.Block.Statements[0].Text.Value); !strings.Contains(got, "${user.name}") {
		t.Fatalf("expected interpolation in span literal, got %s", got)
	}
	if tail := box.Block.Statements[1].Text; tail == nil || string(tail.Value) != "plain tail" {
		t.Fatalf("expected plain literal, got %+v", box.Block.Statements[1])
	}
}

func TestParseRejectsUnknownSection(t *testing.T) {
	if _, err := dsl.ParseString(`doc X v1 { widgets { } }`); err == nil {
		t.Fatalf("expected parse error for unknown section")
	}
}
