package layout

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Measurer 是外部测量能力：给定带样式文本与可用宽度，返回渲染后的尺寸（pt）。
// 高度总是不受限；wrap 为 false 时宽度同样不受限（单行），为 true 时在 maxWidth 处折行。
type Measurer interface {
	Measure(text StyledText, maxWidth float64, wrap bool) (Size, error)
}

// MeasureFunc 让普通函数满足 Measurer。
type MeasureFunc func(text StyledText, maxWidth float64, wrap bool) (Size, error)

func (f MeasureFunc) Measure(text StyledText, maxWidth float64, wrap bool) (Size, error) {
	return f(text, maxWidth, wrap)
}

// Surface 是某个目标平台上可以测量并绘制文本的区域。
type Surface interface {
	Measurer
	Render(text StyledText, box Rect, wrap bool) error
	BoundsChanged(bounds Rect)
}

const (
	DefaultMinFontSize       = 1.0
	DefaultAccuracyThreshold = 1.0
	DefaultReferenceFontSize = 12.0
)

// SearchOptions 控制字号搜索。零值字段在搜索时取默认值。
type SearchOptions struct {
	MinFontSize float64
	// MaxFontSize 为 0 时只使用 2×min(宽, 高) 的启发式上界。
	MaxFontSize float64
	// AccuracyThreshold 是候选字号的量化步长；结果可能比理想值小至多一个步长。必须大于 0。
	AccuracyThreshold float64
	// ReferenceFontSize 是挑选最长单词时统一使用的测量字号。
	ReferenceFontSize float64

	Logger   *logrus.Entry
	Recorder Recorder
}

// DefaultSearchOptions 返回默认搜索参数。
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MinFontSize:       DefaultMinFontSize,
		AccuracyThreshold: DefaultAccuracyThreshold,
		ReferenceFontSize: DefaultReferenceFontSize,
	}
}

func (o SearchOptions) normalized() SearchOptions {
	if o.MinFontSize <= 0 {
		o.MinFontSize = DefaultMinFontSize
	}
	if o.AccuracyThreshold <= 0 {
		o.AccuracyThreshold = DefaultAccuracyThreshold
	}
	if o.ReferenceFontSize <= 0 {
		o.ReferenceFontSize = DefaultReferenceFontSize
	}
	if o.MaxFontSize < 0 {
		o.MaxFontSize = 0
	}
	return o
}

func (o SearchOptions) logger() *logrus.Entry {
	if o.Logger != nil {
		return o.Logger
	}
	return discardLogger
}

var discardLogger = func() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}()

// BuildOptions 配置布局阶段所需的依赖，例如测量后端。
type BuildOptions struct {
	Measurer Measurer
	Search   SearchOptions
}
