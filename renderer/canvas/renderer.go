package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/autofit/fonts"
	"github.com/ByLCY/autofit/layout"
	"github.com/ByLCY/autofit/renderer"
)

const defaultBorderWidth = 0.5 // pt

// Renderer 基于 github.com/tdewolff/canvas 测量并绘制带样式文本。
// 对外的尺寸一律为 pt；canvas 内部使用 mm，在边界处换算。
type Renderer struct {
	baseDir    string
	log        *logrus.Entry
	substitute bool

	fontBlobs map[string][]byte // built-in:<name>

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
	Logger  *logrus.Entry

	// SubstituteMissingFonts 为 true 时，无法加载的字体以内置字体代替；默认直接报错。
	SubstituteMissingFonts bool
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := &Renderer{
		baseDir:      opts.BaseDir,
		log:          log,
		substitute:   opts.SubstituteMissingFonts,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, err := os.ReadFile(res.Path)
			if err != nil {
				// 使用到时再报错
				r.log.WithError(err).WithField("font", name).Warn("读取内置字体失败")
				continue
			}
			r.fontBlobs[name] = data
		}
	}
	return r
}

// Measure 实现 layout.Measurer：返回文本排版后的包围尺寸（pt）。
func (r *Renderer) Measure(text layout.StyledText, maxWidth float64, wrap bool) (layout.Size, error) {
	lines, err := layoutLines(text, maxWidth, wrap, r.faceSource())
	if err != nil {
		return layout.Size{}, err
	}
	var size layout.Size
	for _, ln := range lines {
		if ln.width > size.Width {
			size.Width = ln.width
		}
		size.Height += ln.height
	}
	return size, nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	surface := r.NewSurface(ctx)
	for _, box := range page.Boxes {
		r.drawFrame(ctx, box)
		if box.Text.IsEmpty() {
			continue
		}
		surface.BoundsChanged(box.Frame)
		if err := surface.Render(box.Text, box.TextRect, true); err != nil {
			name := box.Name
			if name == "" {
				name = "box"
			}
			return fmt.Errorf("绘制 %s 失败: %w", name, err)
		}
	}
	return nil
}

// drawFrame 绘制文本框的背景与边框。
func (r *Renderer) drawFrame(ctx *canvas.Context, box layout.FittedBox) {
	if box.Background == nil && box.Border == nil {
		return
	}
	f := box.Frame
	if box.Background != nil {
		ctx.SetFillColor(colorFromLayout(*box.Background))
	} else {
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	}
	if box.Border != nil {
		w := box.BorderWidth
		if w <= 0 {
			w = defaultBorderWidth
		}
		ctx.SetStrokeColor(colorFromLayout(*box.Border))
		ctx.SetStrokeWidth(toMm(w))
	} else {
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeWidth(0)
	}
	ctx.DrawPath(toMm(f.X), toMm(f.Y), canvas.Rectangle(toMm(f.Width), toMm(f.Height)))
}

// drawText 在 rect（pt）内逐行绘制文本，水平对齐取每行首个片段的对齐方式。
func (r *Renderer) drawText(ctx *canvas.Context, text layout.StyledText, rect layout.Rect, wrap bool) error {
	lines, err := layoutLines(text, rect.Width, wrap, r.faceSource())
	if err != nil {
		return err
	}
	cursorY := rect.Y
	for _, ln := range lines {
		var x float64
		switch ln.align {
		case layout.AlignCenter:
			x = rect.X + (rect.Width-ln.width)/2
		case layout.AlignRight:
			x = rect.X + rect.Width - ln.width
		default:
			x = rect.X
		}
		// 基线位置：行顶部加上字体上升部
		baseline := cursorY + ln.ascent
		for _, p := range ln.pieces {
			ctx.DrawText(toMm(x), toMm(baseline), canvas.NewTextLine(p.face, p.text, canvas.Left))
			x += p.width
		}
		r.log.WithFields(logrus.Fields{"line": ln.content(), "y": cursorY}).Trace("绘制文本行")
		cursorY += ln.height
	}
	return nil
}

// faceSource 返回一次排版内共享的字体面查找函数。
func (r *Renderer) faceSource() faceSource {
	cache := map[layout.Style]*canvas.FontFace{}
	return func(style layout.Style) (*canvas.FontFace, error) {
		if face, ok := cache[style]; ok {
			return face, nil
		}
		if style.Size <= 0 {
			return nil, fmt.Errorf("字号必须大于 0（当前 %.2f）", style.Size)
		}
		font := style.Font
		// 宿主附加的原字体优先，用于回退字形的测量。
		if style.OriginalFont != nil {
			font = *style.OriginalFont
		}
		face, err := r.fontFace(font, style.Size, style.Color)
		if err != nil {
			return nil, err
		}
		cache[style] = face
		return face, nil
	}
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Name
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	err := r.loadFontIntoFamily(family, font.Src, style)
	if err != nil && font.Fallback != "" {
		r.log.WithError(err).WithField("font", familyName).Debug("字体加载失败，尝试 fallback")
		family = canvas.NewFontFamily(familyName)
		err = r.loadFontIntoFamily(family, font.Fallback, style)
	}
	if err != nil && !r.substitute {
		return nil, canvas.FontRegular, fmt.Errorf("字体 %s 加载失败: %w", familyName, err)
	}
	if err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.log.WithError(err).WithField("font", familyName).Warn("字体不可用，使用内置字体")
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, src string, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(src)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体缺少 src")
	}
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	}
	if strings.HasPrefix(src, "embed:") {
		return fonts.Load(src)
	}
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 built-in: 或 embed:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load(fonts.DefaultFont)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("autofit-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	var result canvas.FontStyle
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	default:
		result = canvas.FontRegular
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s|%s", font.Name, font.Src, font.Style, font.Fallback)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
