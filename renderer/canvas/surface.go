package canvasrenderer

import (
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/autofit/layout"
)

// Surface 把一个 canvas.Context 包装成 layout.Surface，供 TextView 直接绘制。
type Surface struct {
	r      *Renderer
	ctx    *canvas.Context
	bounds layout.Rect
}

var _ layout.Surface = (*Surface)(nil)

// NewSurface 返回绑定到 ctx 的绘制面。ctx 应已设置为 CartesianIV 坐标系。
func (r *Renderer) NewSurface(ctx *canvas.Context) *Surface {
	return &Surface{r: r, ctx: ctx}
}

func (s *Surface) Measure(text layout.StyledText, maxWidth float64, wrap bool) (layout.Size, error) {
	return s.r.Measure(text, maxWidth, wrap)
}

// Render 在 box（pt）内绘制文本。
func (s *Surface) Render(text layout.StyledText, box layout.Rect, wrap bool) error {
	return s.r.drawText(s.ctx, text, box, wrap)
}

func (s *Surface) BoundsChanged(bounds layout.Rect) { s.bounds = bounds }

// Bounds 返回最近一次通知的视图区域。
func (s *Surface) Bounds() layout.Rect { return s.bounds }
