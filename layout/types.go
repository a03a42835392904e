package layout

import (
	"math"
	"strings"
	"unicode/utf8"
)

// 该文件定义带样式文本、适配框以及布局结果，供字号搜索、渲染与调试 JSON 共用。

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Align 表示段落的水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// VerticalAlign 表示文本块在适配框内的垂直对齐方式。
type VerticalAlign string

const (
	VAlignTop    VerticalAlign = "top"
	VAlignCenter VerticalAlign = "center"
	VAlignBottom VerticalAlign = "bottom"
)

// FontResource 描述字体资源，src 可以是文件路径、内置 embed 路径或 built-in:* 形式。
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Style    string `json:"style,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// Specified 判断字体是否可以解析为具体字形。
func (f FontResource) Specified() bool {
	return strings.TrimSpace(f.Src) != "" || strings.TrimSpace(f.Name) != ""
}

// Style 是一个文本片段的全部样式属性。
type Style struct {
	Font  FontResource `json:"font"`
	Size  float64      `json:"size"` // pt
	Color Color        `json:"color"`
	Align Align        `json:"align,omitempty"`
	// LineSpacing 是相对字体默认行高的倍数，<=0 时使用字体自身的行高。
	LineSpacing float64 `json:"lineSpacing,omitempty"`
	// OriginalFont 记录宿主为回退字形（如 emoji）附加的原字体；字号变化后即失效。
	OriginalFont *FontResource `json:"originalFont,omitempty"`
}

// Run 是一段共享同一样式的文本。
type Run struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// StyledText 是按顺序排列的带样式片段。
// 所有变换都返回新的值，不修改原有片段。
type StyledText struct {
	Runs []Run `json:"runs"`
}

// NewStyledText 用单一样式构造文本。
func NewStyledText(s string, style Style) StyledText {
	if s == "" {
		return StyledText{}
	}
	return StyledText{Runs: []Run{{Text: s, Style: style}}}
}

// String 返回去掉样式后的纯文本。
func (t StyledText) String() string {
	var b strings.Builder
	for _, r := range t.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Len 返回文本的 rune 数。
func (t StyledText) Len() int {
	n := 0
	for _, r := range t.Runs {
		n += utf8.RuneCountInString(r.Text)
	}
	return n
}

// IsEmpty 在没有任何字符时返回 true。
func (t StyledText) IsEmpty() bool { return t.Len() == 0 }

// Clone 返回片段切片的副本。
func (t StyledText) Clone() StyledText {
	if len(t.Runs) == 0 {
		return StyledText{}
	}
	runs := make([]Run, len(t.Runs))
	copy(runs, t.Runs)
	for i := range runs {
		if f := runs[i].Style.OriginalFont; f != nil {
			cp := *f
			runs[i].Style.OriginalFont = &cp
		}
	}
	return StyledText{Runs: runs}
}

// Append 返回追加一个片段后的新文本；与末尾样式相同时合并。
func (t StyledText) Append(s string, style Style) StyledText {
	out := t.Clone()
	if s == "" {
		return out
	}
	if n := len(out.Runs); n > 0 && sameStyle(out.Runs[n-1].Style, style) {
		out.Runs[n-1].Text += s
		return out
	}
	out.Runs = append(out.Runs, Run{Text: s, Style: style})
	return out
}

// Concat 把两个文本首尾相接。
func (t StyledText) Concat(other StyledText) StyledText {
	out := t.Clone()
	for _, r := range other.Runs {
		out = out.Append(r.Text, r.Style)
	}
	return out
}

// Slice 按 rune 下标截取 [start, end)，保留每个字符原有的样式。
func (t StyledText) Slice(start, end int) StyledText {
	if start < 0 {
		start = 0
	}
	var out StyledText
	pos := 0
	for _, r := range t.Runs {
		n := utf8.RuneCountInString(r.Text)
		lo, hi := max(start, pos), min(end, pos+n)
		if lo < hi {
			runes := []rune(r.Text)
			out = out.Append(string(runes[lo-pos:hi-pos]), r.Style)
		}
		pos += n
		if pos >= end {
			break
		}
	}
	return out
}

func sameStyle(a, b Style) bool {
	if a.Font != b.Font || a.Size != b.Size || a.Color != b.Color || a.Align != b.Align || a.LineSpacing != b.LineSpacing {
		return false
	}
	if (a.OriginalFont == nil) != (b.OriginalFont == nil) {
		return false
	}
	return a.OriginalFont == nil || *a.OriginalFont == *b.OriginalFont
}

// Size 是测量得到的宽高（pt）。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect 是以左上角为原点的矩形（pt）。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size 返回矩形尺寸。
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// FitBox 是文本不能超出的目标区域，宽高总是向下取整。
type FitBox struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewFitBox 构造向下取整后的适配框，负值按 0 处理。
func NewFitBox(width, height float64) FitBox {
	return FitBox{
		Width:  math.Max(math.Floor(width), 0),
		Height: math.Max(math.Floor(height), 0),
	}
}

// Contains 判断 size 是否能放进适配框。
func (b FitBox) Contains(size Size) bool {
	return size.Width <= b.Width && size.Height <= b.Height
}

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录解析出的字体、颜色与样式定义。
type ResourceSet struct {
	Fonts     map[string]FontResource `json:"fonts"`
	FontOrder []string                `json:"fontOrder"` // 字体声明顺序
	Colors    map[string]Color        `json:"colors"`
	Styles    map[string]StyleDef     `json:"styles"`
}

// StyleDef 用于描述可继承的文本样式。
type StyleDef struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// Page 记录页面尺寸与已经完成字号适配的文本框（pt）。
type Page struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Margin Margin      `json:"margin"`
	Boxes  []FittedBox `json:"boxes"`
}

// Margin 以 pt 为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// FittedBox 是一个完成字号搜索的文本框。
type FittedBox struct {
	Name          string        `json:"name,omitempty"`
	Frame         Rect          `json:"frame"`
	Text          StyledText    `json:"text"` // 已缩放到 FontSize
	FontSize      float64       `json:"fontSize"`
	LongestWord   string        `json:"longestWord,omitempty"`
	TextRect      Rect          `json:"textRect"` // 文本实际占用区域（页面坐标）
	VerticalAlign VerticalAlign `json:"verticalAlign"`
	Background    *Color        `json:"background,omitempty"`
	Border        *Color        `json:"border,omitempty"`
	BorderWidth   float64       `json:"borderWidth,omitempty"`
	Padding       float64       `json:"padding,omitempty"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
