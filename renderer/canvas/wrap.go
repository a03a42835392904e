package canvasrenderer

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/autofit/layout"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenSpace
	tokenNewline
)

// segment 是 token 中共享同一样式的一段文本；单词可以跨越多个样式片段。
type segment struct {
	text  string
	style layout.Style
}

type token struct {
	kind  tokenKind
	segs  []segment
	runes int
}

// piece 是一行中已经测量好的文本段（宽度单位 pt）。
type piece struct {
	text  string
	style layout.Style
	face  *canvas.FontFace
	width float64
}

// textLine 是排好的一行。
type textLine struct {
	pieces  []piece
	width   float64
	height  float64
	ascent  float64
	align   layout.Align
	endFace *canvas.FontFace // 空行用它决定行高
}

func (l *textLine) empty() bool { return len(l.pieces) == 0 }

// tokenize 将文本切成单词、空白与换行。\r\n 与单独的 \r 都算作一次换行。
func tokenize(text layout.StyledText) []token {
	var tokens []token
	push := func(kind tokenKind, r rune, style layout.Style) {
		if kind != tokenNewline && len(tokens) > 0 {
			last := &tokens[len(tokens)-1]
			if last.kind == kind {
				if seg := &last.segs[len(last.segs)-1]; seg.style == style {
					seg.text += string(r)
				} else {
					last.segs = append(last.segs, segment{text: string(r), style: style})
				}
				last.runes++
				return
			}
		}
		tokens = append(tokens, token{kind: kind, segs: []segment{{text: string(r), style: style}}, runes: 1})
	}
	afterCR := false
	for _, run := range text.Runs {
		for _, r := range run.Text {
			switch {
			case r == '\n' && afterCR:
				last := &tokens[len(tokens)-1]
				last.segs[len(last.segs)-1].text += "\n"
				last.runes++
			case r == '\r', r == '\n':
				push(tokenNewline, r, run.Style)
			case layout.IsSeparator(r):
				push(tokenSpace, r, run.Style)
			default:
				push(tokenWord, r, run.Style)
			}
			afterCR = r == '\r'
		}
	}
	return tokens
}

type faceSource func(style layout.Style) (*canvas.FontFace, error)

// lineBreaker 是贪心折行器：在空白处断行，行尾空白悬挂不计宽度，只有单词本身超宽时才在词内断开。
type lineBreaker struct {
	faces   faceSource
	limit   float64
	lines   []textLine
	cur     textLine
	pending []piece // 尚未确定是否悬挂的空白
	placed  int     // 已落到行内（含悬挂空白与换行）的 rune 数
}

func (b *lineBreaker) measure(segs []segment) ([]piece, float64, error) {
	out := make([]piece, 0, len(segs))
	total := 0.0
	for _, seg := range segs {
		face, err := b.faces(seg.style)
		if err != nil {
			return nil, 0, err
		}
		w := toPt(face.TextWidth(seg.text))
		out = append(out, piece{text: seg.text, style: seg.style, face: face, width: w})
		total += w
	}
	return out, total, nil
}

func (b *lineBreaker) pendingWidth() float64 {
	w := 0.0
	for _, p := range b.pending {
		w += p.width
	}
	return w
}

func (b *lineBreaker) appendPieces(ps []piece, width float64) {
	if b.cur.empty() && len(ps) > 0 {
		b.cur.align = ps[0].style.Align
	}
	for _, p := range ps {
		b.placed += utf8.RuneCountInString(p.text)
	}
	b.cur.pieces = append(b.cur.pieces, ps...)
	b.cur.width += width
}

func (b *lineBreaker) emit(endFace *canvas.FontFace) {
	// 行尾空白悬挂，不计入宽度也不绘制。
	for _, p := range b.pending {
		b.placed += utf8.RuneCountInString(p.text)
	}
	b.pending = nil
	b.cur.endFace = endFace
	b.lines = append(b.lines, b.cur)
	b.cur = textLine{}
}

func (b *lineBreaker) addWord(tok token) error {
	pieces, width, err := b.measure(tok.segs)
	if err != nil {
		return err
	}
	spaces := b.pendingWidth()
	if !b.cur.empty() && b.cur.width+spaces+width > b.limit {
		b.emit(nil)
		spaces = 0
	}
	if len(b.pending) > 0 {
		b.appendPieces(b.pending, spaces)
		b.pending = nil
	}
	if width <= b.limit {
		b.appendPieces(pieces, width)
		return nil
	}
	// 单词本身超过可用宽度，只能按字素簇拆开，不拆 emoji 与组合字符。
	for _, p := range pieces {
		g := uniseg.NewGraphemes(p.text)
		for g.Next() {
			s := g.Str()
			w := toPt(p.face.TextWidth(s))
			if !b.cur.empty() && b.cur.width+w > b.limit {
				b.emit(nil)
			}
			b.appendPieces([]piece{{text: s, style: p.style, face: p.face, width: w}}, w)
		}
	}
	return nil
}

func (b *lineBreaker) run(tokens []token) error {
	for _, tok := range tokens {
		switch tok.kind {
		case tokenNewline:
			b.placed += tok.runes
			face, err := b.faces(tok.segs[0].style)
			if err != nil {
				return err
			}
			b.emit(face)
		case tokenSpace:
			pieces, _, err := b.measure(tok.segs)
			if err != nil {
				return err
			}
			b.pending = append(b.pending, pieces...)
		case tokenWord:
			if err := b.addWord(tok); err != nil {
				return err
			}
		}
	}
	if !b.cur.empty() || len(b.lines) == 0 || len(b.pending) > 0 {
		var endFace *canvas.FontFace
		if len(b.pending) > 0 {
			endFace = b.pending[0].face
		}
		b.emit(endFace)
	}
	return nil
}

// layoutLines 把文本排成若干行。wrap 为 false 时只在显式换行处断行。
// 行宽、行高均为 pt。
func layoutLines(text layout.StyledText, maxWidth float64, wrap bool, faces faceSource) ([]textLine, error) {
	limit := maxWidth
	if !wrap || limit <= 0 {
		limit = math.MaxFloat64
	}
	b := &lineBreaker{faces: faces, limit: limit}
	if err := b.run(tokenize(text)); err != nil {
		return nil, err
	}
	if got, want := b.placed, text.Len(); got != want {
		return nil, fmt.Errorf("排版覆盖 %d/%d 个字符: %w", got, want, layout.ErrIncompleteLayout)
	}
	// 文本完全为空时，行高取第一个片段的字体。
	var fallbackFace *canvas.FontFace
	if len(text.Runs) > 0 {
		face, err := faces(text.Runs[0].Style)
		if err != nil {
			return nil, err
		}
		fallbackFace = face
	}
	for i := range b.lines {
		b.lines[i].measureHeight(fallbackFace)
	}
	return b.lines, nil
}

func (l *textLine) measureHeight(fallback *canvas.FontFace) {
	apply := func(face *canvas.FontFace, spacing float64) {
		if face == nil {
			return
		}
		m := face.Metrics()
		if spacing <= 0 {
			spacing = 1
		}
		l.height = math.Max(l.height, toPt(m.LineHeight)*spacing)
		l.ascent = math.Max(l.ascent, toPt(m.Ascent))
	}
	for _, p := range l.pieces {
		apply(p.face, p.style.LineSpacing)
	}
	if l.empty() {
		if l.endFace != nil {
			apply(l.endFace, 0)
		} else {
			apply(fallback, 0)
		}
	}
}

// content 返回行的纯文本，调试用。
func (l *textLine) content() string {
	var sb strings.Builder
	for _, p := range l.pieces {
		sb.WriteString(p.text)
	}
	return sb.String()
}
