package layout

import (
	"fmt"
	"math"
)

// TextView 把一段文本自动缩放到 bounds 内并按垂直对齐方式绘制。
// 它只依赖 Surface 接口，不绑定任何具体控件。
type TextView struct {
	VerticalAlign VerticalAlign
	Options       SearchOptions

	text       StyledText
	longest    StyledText
	longestRef float64 // 计算 longest 时使用的参考字号
	bounds     Rect

	// 文本排版属性、bounds 与搜索参数都没变时直接复用上一次的字号（例如只改了颜色）。
	cached   bool
	lastKey  fitKey
	lastSize float64
}

// fitKey 汇总决定字号结果的输入。
type fitKey struct {
	bounds             Rect
	min, max, step, ref float64
}

func (v *TextView) fitKey() fitKey {
	o := v.Options.normalized()
	return fitKey{
		bounds: v.bounds,
		min:    o.MinFontSize,
		max:    o.MaxFontSize,
		step:   o.AccuracyThreshold,
		ref:    o.ReferenceFontSize,
	}
}

// NewTextView 构造一个默认垂直居中的视图。
func NewTextView(opts SearchOptions) *TextView {
	return &TextView{VerticalAlign: VAlignCenter, Options: opts}
}

// SetText 替换文本并重新计算最长单词。文本存在未指定字体的位置时返回 ErrFontUnspecified，视图保持原状。
func (v *TextView) SetText(text StyledText, m Measurer) error {
	if err := checkFonts(text); err != nil {
		return err
	}
	opts := v.Options.normalized()
	longest, err := LongestWord(text, opts.ReferenceFontSize, m)
	if err != nil {
		return err
	}
	if !layoutEquivalent(v.text, text) {
		v.cached = false
	}
	v.text = text.Clone()
	v.longest = longest
	v.longestRef = opts.ReferenceFontSize
	return nil
}

// layoutEquivalent 忽略颜色比较两段文本；颜色不影响测量结果。
func layoutEquivalent(a, b StyledText) bool {
	if len(a.Runs) != len(b.Runs) {
		return false
	}
	for i := range a.Runs {
		ra, rb := a.Runs[i], b.Runs[i]
		ra.Style.Color, rb.Style.Color = Color{}, Color{}
		if ra.Text != rb.Text || !sameStyle(ra.Style, rb.Style) {
			return false
		}
	}
	return true
}

// Text 返回当前文本。
func (v *TextView) Text() StyledText { return v.text }

// LongestWord 返回缓存的最长单词。
func (v *TextView) LongestWord() StyledText { return v.longest }

// SetBounds 更新视图区域并通知 surface。
func (v *TextView) SetBounds(bounds Rect, s Surface) {
	v.bounds = bounds
	if s != nil {
		s.BoundsChanged(bounds)
	}
}

// Bounds 返回视图区域。
func (v *TextView) Bounds() Rect { return v.bounds }

// FontSize 返回当前文本在 bounds 内的最大字号。
func (v *TextView) FontSize(m Measurer) (float64, error) {
	key := v.fitKey()
	if v.cached && key == v.lastKey {
		return v.lastSize, nil
	}
	if key.ref != v.longestRef && !v.text.IsEmpty() {
		longest, err := LongestWord(v.text, key.ref, m)
		if err != nil {
			return 0, err
		}
		v.longest, v.longestRef = longest, key.ref
	}
	box := NewFitBox(v.bounds.Width, v.bounds.Height)
	size, err := MaxFontSizeWithWord(v.text, v.longest, box, m, v.Options)
	if err != nil {
		return size, err
	}
	v.cached, v.lastKey, v.lastSize = true, key, size
	return size, nil
}

// Layout 计算字号并返回缩放后的文本及其在 bounds 内的位置。
func (v *TextView) Layout(m Measurer) (StyledText, float64, Rect, error) {
	size, err := v.FontSize(m)
	if err != nil {
		return StyledText{}, size, Rect{}, err
	}
	fitted := WithFontSize(v.text, size)
	if fitted.IsEmpty() {
		return fitted, size, Rect{X: v.bounds.X, Y: v.bounds.Y, Width: v.bounds.Width}, nil
	}
	// 重新测量一次，得到实际使用的文本区域。
	measured, err := m.Measure(fitted, v.bounds.Width, true)
	if err != nil {
		return StyledText{}, size, Rect{}, fmt.Errorf("测量适配后的文本失败: %w", err)
	}
	return fitted, size, AlignedTextRect(v.bounds, measured, v.VerticalAlign), nil
}

// Draw 把适配后的文本绘制到 surface 上。
func (v *TextView) Draw(s Surface) error {
	if s == nil {
		return fmt.Errorf("layout: surface 不能为空")
	}
	fitted, _, rect, err := v.Layout(s)
	if err != nil {
		return err
	}
	if fitted.IsEmpty() {
		return nil
	}
	return s.Render(fitted, rect, true)
}

// AlignedTextRect 根据垂直对齐方式把测量得到的文本块放进 bounds，宽度沿用 bounds。
func AlignedTextRect(bounds Rect, measured Size, align VerticalAlign) Rect {
	padding := math.Max(0, bounds.Height-measured.Height)
	var shift float64
	switch align {
	case VAlignTop:
		shift = 0
	case VAlignBottom:
		shift = padding
	default:
		shift = padding / 2
	}
	return Rect{
		X:      bounds.X,
		Y:      bounds.Y + shift,
		Width:  bounds.Width,
		Height: measured.Height,
	}
}
