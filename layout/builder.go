package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/autofit/binding"
	"github.com/ByLCY/autofit/dsl"
)

const (
	defaultFontName = "Body"
	defaultFontSrc  = "embed:regular"
	defaultFontSize = 12.0 // pt
	defaultMargin   = 20.0 // pt
)

var defaultTextColor = Color{R: 30, G: 30, B: 30}

// 纸张预设（pt）。
var pagePresets = map[string][2]float64{
	"A4":     {595.28, 841.89},
	"A5":     {419.53, 595.28},
	"A6":     {297.64, 419.53},
	"LETTER": {612, 792},
}

// Build 根据 DSL AST 解析资源，并为每个 box 搜索最大字号。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Measurer == nil {
		return nil, fmt.Errorf("layout: 缺少测量后端 Measurer")
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	result := &Result{Resources: res, Meta: collectMeta(doc)}
	for _, section := range doc.Sections {
		if section.Page == nil {
			continue
		}
		page, err := buildPage(section.Page, res, data, opts)
		if err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, page)
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}
	return result, nil
}

func buildPage(section *dsl.PageSection, res ResourceSet, data any, opts BuildOptions) (Page, error) {
	width, height, margin, err := resolvePageSpec(section.Params)
	if err != nil {
		return Page{}, err
	}
	page := Page{Width: width, Height: height, Margin: margin}
	if section.Block == nil {
		return page, nil
	}
	content := Rect{
		X:      margin.Left,
		Y:      margin.Top,
		Width:  width - margin.Left - margin.Right,
		Height: height - margin.Top - margin.Bottom,
	}
	for _, stmt := range section.Block.Statements {
		if stmt.Command == nil || stmt.Command.Name != "box" {
			// 其余命令暂未实现，忽略即可
			continue
		}
		box, err := buildBox(stmt.Command, content, res, data, opts)
		if err != nil {
			return Page{}, fmt.Errorf("box（第 %d 行）: %w", stmt.Command.Pos.Line, err)
		}
		page.Boxes = append(page.Boxes, box)
	}
	return page, nil
}

func buildBox(cmd *dsl.Command, content Rect, res ResourceSet, data any, opts BuildOptions) (FittedBox, error) {
	name, attrs := parseArgs(cmd.Args, true)
	x := parseDimension(attrs["x"], content.Width)
	y := parseDimension(attrs["y"], content.Height)
	frame := Rect{X: content.X + x, Y: content.Y + y, Width: content.Width - x, Height: content.Height - y}
	if v := attrs["width"]; v != "" {
		frame.Width = parseDimension(v, content.Width)
	}
	if v := attrs["height"]; v != "" {
		frame.Height = parseDimension(v, content.Height)
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return FittedBox{}, fmt.Errorf("box 尺寸无效: %gx%g", frame.Width, frame.Height)
	}

	fb := FittedBox{
		Name:          name,
		Frame:         frame,
		VerticalAlign: normalizeVAlign(attrs["valign"]),
		Padding:       parsePt(attrs["padding"]),
	}
	if v := attrs["background"]; v != "" {
		c := resolveColor(v, res)
		fb.Background = &c
	}
	if v := attrs["border"]; v != "" {
		c := resolveColor(v, res)
		fb.Border = &c
		fb.BorderWidth = 1
		if w := parsePt(attrs["border-width"]); w > 0 {
			fb.BorderWidth = w
		}
	}

	text, err := composeText(cmd.Block, attrs["style"], res, data)
	if err != nil {
		return FittedBox{}, err
	}
	inner := Rect{
		X:      frame.X + fb.Padding,
		Y:      frame.Y + fb.Padding,
		Width:  frame.Width - 2*fb.Padding,
		Height: frame.Height - 2*fb.Padding,
	}
	fb.TextRect = Rect{X: inner.X, Y: inner.Y, Width: inner.Width}
	if text.IsEmpty() {
		fb.FontSize = opts.Search.normalized().MinFontSize
		return fb, nil
	}

	search := opts.Search.normalized()
	if search.Logger != nil {
		search.Logger = search.Logger.WithField("box", boxLabel(name, cmd))
	}
	longest, err := LongestWord(text, search.ReferenceFontSize, opts.Measurer)
	if err != nil {
		return FittedBox{}, err
	}
	size, err := MaxFontSizeWithWord(text, longest, NewFitBox(inner.Width, inner.Height), opts.Measurer, search)
	if err != nil {
		return FittedBox{}, err
	}
	fitted := WithFontSize(text, size)
	measured, err := opts.Measurer.Measure(fitted, inner.Width, true)
	if err != nil {
		return FittedBox{}, fmt.Errorf("测量适配后的文本失败: %w", err)
	}
	fb.Text = fitted
	fb.FontSize = size
	fb.LongestWord = longest.String()
	fb.TextRect = AlignedTextRect(inner, measured, fb.VerticalAlign)
	return fb, nil
}

func boxLabel(name string, cmd *dsl.Command) string {
	if name != "" {
		return name
	}
	return "line " + strconv.Itoa(cmd.Pos.Line)
}

// composeText 把 box 内的 span 与字符串字面量拼成带样式文本。
func composeText(block *dsl.Block, boxStyle string, res ResourceSet, data any) (StyledText, error) {
	var text StyledText
	if block == nil {
		return text, nil
	}
	base, err := resolveStyle(boxStyle, nil, res)
	if err != nil {
		return text, err
	}
	for _, stmt := range block.Statements {
		switch {
		case stmt.Text != nil:
			text = text.Append(binding.Interpolate(string(stmt.Text.Value), data), base)
		case stmt.Command != nil && stmt.Command.Name == "span":
			styleName, attrs := parseArgs(stmt.Command.Args, true)
			if styleName == "" {
				styleName = boxStyle
			}
			style, err := resolveStyle(styleName, attrs, res)
			if err != nil {
				return text, err
			}
			text = text.Append(binding.Interpolate(extractText(stmt.Command.Block), data), style)
		case stmt.Command != nil && stmt.Command.Name == "br":
			text = text.Append("\n", base)
		}
	}
	return text, nil
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}

// resolveStyle 合并命名样式与内联属性，得到一个完整的 Style。
func resolveStyle(name string, inline map[string]string, res ResourceSet) (Style, error) {
	if name == "" {
		if _, ok := res.Styles[defaultFontName]; ok {
			name = defaultFontName
		}
	}
	attrs := mergeStyleAttributes(name, inline, res.Styles)
	if name != "" {
		_, isStyle := res.Styles[name]
		_, isFont := res.Fonts[name]
		if !isStyle && !isFont {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
	}
	font, err := resolveFontResource(attrs["font"], name, res)
	if err != nil {
		return Style{}, err
	}
	style := Style{
		Font:  font,
		Size:  defaultFontSize,
		Color: resolveColor(attrs["color"], res),
		Align: normalizeAlign(attrs["align"]),
	}
	if v := parsePt(attrs["size"]); v > 0 {
		style.Size = v
	}
	if v := strings.TrimSpace(attrs["line-height"]); v != "" {
		ls, err := ParseLineSpacing(v)
		if err != nil {
			return Style{}, err
		}
		style.LineSpacing = ls
	}
	return style, nil
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Styles: map[string]StyleDef{},
	}
	rawStyles := map[string]StyleDef{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name == "" {
					continue
				}
				if _, seen := res.Fonts[font.Name]; !seen {
					res.FontOrder = append(res.FontOrder, font.Name)
				}
				res.Fonts[font.Name] = font
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, err
				}
				res.Colors[name] = c
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}

	if len(res.Fonts) == 0 {
		res.Fonts[defaultFontName] = FontResource{Name: defaultFontName, Src: defaultFontSrc}
		res.FontOrder = []string{defaultFontName}
	}

	resolved, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolved
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{Creator: "autofit"}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = stmt.Assignment.Value.Text()
			case "author":
				meta.Author = stmt.Assignment.Value.Text()
			case "subject":
				meta.Subject = stmt.Assignment.Value.Text()
			case "creator":
				meta.Creator = stmt.Assignment.Value.Text()
			case "keywords":
				meta.Keywords = stmt.Assignment.Value.Strings()
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{Name: cmd.Args[0].Value}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		switch stmt.Assignment.Key {
		case "src":
			font.Src = stmt.Assignment.Value.Text()
		case "style":
			font.Style = stmt.Assignment.Value.Text()
		case "fallback":
			font.Fallback = stmt.Assignment.Value.Text()
		}
	}
	return font
}

func parseStyleResource(cmd *dsl.Command) StyleDef {
	if len(cmd.Args) == 0 {
		return StyleDef{}
	}
	style := StyleDef{Name: cmd.Args[0].Value, Props: map[string]string{}}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := stmt.Assignment.Value.Text(); val != "" {
			style.Props[stmt.Assignment.Key] = val
		}
	}
	return style
}

func resolveStyles(styles map[string]StyleDef) (map[string]StyleDef, error) {
	resolved := map[string]StyleDef{}
	visiting := map[string]bool{}

	var dfs func(name string) (StyleDef, error)
	dfs = func(name string) (StyleDef, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return StyleDef{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return StyleDef{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return StyleDef{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return cmd.Args[0].Value, value
}

// resolvePageSpec 解析 `page A4 landscape margin 10mm` 或 `page 400pt 300pt margin 10pt 20pt`。
func resolvePageSpec(params []*dsl.Lexeme) (float64, float64, Margin, error) {
	margin := Margin{Top: defaultMargin, Right: defaultMargin, Bottom: defaultMargin, Left: defaultMargin}
	var (
		width, height float64
		dims          []float64
		landscape     bool
	)
	for i := 0; i < len(params); i++ {
		token := params[i].Value
		switch strings.ToLower(token) {
		case "landscape":
			landscape = true
		case "portrait":
			landscape = false
		case "margin":
			var vals []float64
			for j := i + 1; j < len(params) && len(vals) < 4; j++ {
				l, err := ParseLength(params[j].Value)
				if err != nil {
					break
				}
				vals = append(vals, l.ToPT())
			}
			i += len(vals)
			// 1 值：四边相同；2 值：上下/左右；3 值：上/左右/下；4 值：上右下左
			switch len(vals) {
			case 1:
				margin = Margin{Top: vals[0], Right: vals[0], Bottom: vals[0], Left: vals[0]}
			case 2:
				margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
			case 3:
				margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
			case 4:
				margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
			}
		default:
			if preset, ok := pagePresets[strings.ToUpper(token)]; ok {
				width, height = preset[0], preset[1]
				continue
			}
			l, err := ParseLength(token)
			if err != nil {
				return 0, 0, margin, fmt.Errorf("暂不支持的纸张参数：%s", token)
			}
			dims = append(dims, l.ToPT())
		}
	}
	if len(dims) >= 2 {
		width, height = dims[0], dims[1]
	} else if len(dims) == 1 {
		return 0, 0, margin, fmt.Errorf("页面尺寸需要宽和高两个值")
	}
	if width == 0 && height == 0 {
		width, height = pagePresets["A4"][0], pagePresets["A4"][1]
	}
	if landscape && height > width {
		width, height = height, width
	}
	if width <= margin.Left+margin.Right || height <= margin.Top+margin.Bottom {
		return 0, 0, margin, fmt.Errorf("页边距超出页面尺寸 %gx%g", width, height)
	}
	return width, height, margin, nil
}

// parseArgs 把 `Name key value key value` 形式的参数拆成样式名与属性表。
func parseArgs(args []*dsl.Lexeme, allowStyle bool) (string, map[string]string) {
	result := map[string]string{}
	if len(args) == 0 {
		return "", result
	}
	cursor := 0
	var style string
	if allowStyle && args[0].Type == "Ident" && len(args)%2 == 1 {
		style = args[0].Value
		cursor = 1
	}
	for cursor < len(args)-1 {
		result[strings.ToLower(args[cursor].Value)] = args[cursor+1].Value
		cursor += 2
	}
	return style, result
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]StyleDef) map[string]string {
	out := make(map[string]string)
	if style != "" {
		if s, ok := styles[style]; ok {
			for k, v := range s.Props {
				out[k] = v
			}
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

// resolveFontResource 按 font 属性、同名字体、默认字体的顺序选择字体。
// 默认字体为 Body，没有 Body 时取第一个声明的字体。显式写出但未定义的字体直接报错。
func resolveFontResource(explicit, styleName string, res ResourceSet) (FontResource, error) {
	if explicit != "" {
		font, ok := res.Fonts[explicit]
		if !ok {
			return FontResource{}, fmt.Errorf("字体 %s 未定义", explicit)
		}
		return font, nil
	}
	if font, ok := res.Fonts[styleName]; ok && styleName != "" {
		return font, nil
	}
	if font, ok := res.Fonts[defaultFontName]; ok {
		return font, nil
	}
	for _, name := range res.FontOrder {
		if font, ok := res.Fonts[name]; ok {
			return font, nil
		}
	}
	return FontResource{}, fmt.Errorf("没有可用的默认字体")
}

func resolveColor(value string, res ResourceSet) Color {
	if value == "" {
		return defaultTextColor
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c
		}
	}
	return defaultTextColor
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

// parseDimension 支持绝对长度与相对 reference 的百分比。
func parseDimension(value string, reference float64) float64 {
	v := strings.TrimSpace(value)
	if strings.HasSuffix(v, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return 0
		}
		return reference * f / 100
	}
	return parsePt(v)
}

func normalizeAlign(v string) Align {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "center":
		return AlignCenter
	case "right", "end":
		return AlignRight
	case "left", "start":
		return AlignLeft
	default:
		return ""
	}
}

func normalizeVAlign(v string) VerticalAlign {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "top", "start":
		return VAlignTop
	case "bottom", "end":
		return VAlignBottom
	default:
		return VAlignCenter
	}
}
