package layout

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// RoundedFontSize 把字号量化到 threshold 的整数倍。
func RoundedFontSize(size, threshold float64) float64 {
	if threshold <= 0 {
		threshold = DefaultAccuracyThreshold
	}
	return math.Round(size/threshold) * threshold
}

// UpperBound 返回搜索的启发式上界 2×min(宽, 高)，按 opts.MaxFontSize 截断。
func UpperBound(box FitBox, opts SearchOptions) float64 {
	opts = opts.normalized()
	upper := RoundedFontSize(2*math.Min(box.Width, box.Height), opts.AccuracyThreshold)
	if opts.MaxFontSize > 0 && upper > opts.MaxFontSize {
		upper = opts.MaxFontSize
	}
	return math.Max(upper, opts.MinFontSize)
}

// MaxFontSize 计算 text 能放进 box 的最大字号，且任何单词都不会被拆到两行。
// 即使最小字号也放不下时返回 MinFontSize 而不是错误；需要确认是否真正放下的调用方应自行重新测量。
func MaxFontSize(text StyledText, box FitBox, m Measurer, opts SearchOptions) (float64, error) {
	opts = opts.normalized()
	if err := checkFonts(text); err != nil {
		return opts.MinFontSize, err
	}
	if text.IsEmpty() {
		return opts.MinFontSize, nil
	}
	longest, err := LongestWord(text, opts.ReferenceFontSize, m)
	if err != nil {
		return opts.MinFontSize, err
	}
	return MaxFontSizeWithWord(text, longest, box, m, opts)
}

// MaxFontSizeWithWord 与 MaxFontSize 相同，但使用调用方预先算好的最长单词（文本不变时可以复用）。
// longest 为空表示没有需要保持完整的单词，此时跳过第一阶段。
func MaxFontSizeWithWord(text, longest StyledText, box FitBox, m Measurer, opts SearchOptions) (float64, error) {
	opts = opts.normalized()
	if m == nil {
		return opts.MinFontSize, fmt.Errorf("layout: 缺少测量后端 Measurer")
	}
	if err := checkFonts(text); err != nil {
		return opts.MinFontSize, err
	}
	if text.IsEmpty() {
		return opts.MinFontSize, nil
	}
	box = NewFitBox(box.Width, box.Height)

	start := time.Now()
	s := &searcher{box: box, m: m, opts: opts, log: opts.logger()}
	defer func() {
		if opts.Recorder != nil {
			opts.Recorder.ObserveSearch(time.Since(start), s.steps)
		}
	}()

	upper := UpperBound(box, opts)
	size := upper
	if !longest.IsEmpty() {
		// 第一阶段：最长单词单行测量，禁止折行，否则宿主可能悄悄把单词拆开。
		fit, err := s.search(longest, opts.MinFontSize, upper, false)
		if err != nil {
			return opts.MinFontSize, err
		}
		size = fit
		if text.Len() <= longest.Len() {
			return size, nil
		}
	}
	// 第二阶段：整段文本按 box 宽度折行，上界是第一阶段的结果。
	return s.search(text, opts.MinFontSize, size, true)
}

type searcher struct {
	box   FitBox
	m     Measurer
	opts  SearchOptions
	log   *logrus.Entry
	steps int
}

// search 在 [lo, hi] 内二分查找能放进 box 的最大量化字号。
// 返回值总是已验证能放下的下界（或 lo 本身），从不返回未验证的上界。
func (s *searcher) search(text StyledText, lo, hi float64, wrap bool) (float64, error) {
	maxWidth := 0.0
	if wrap {
		maxWidth = s.box.Width
	}
	for {
		mid := RoundedFontSize((lo+hi)/2, s.opts.AccuracyThreshold)
		if mid <= lo || mid >= hi {
			return lo, nil
		}
		s.steps++
		size, err := s.m.Measure(WithFontSize(text, mid), maxWidth, wrap)
		if err != nil {
			return lo, fmt.Errorf("以字号 %g 测量失败: %w", mid, err)
		}
		fits := s.box.Contains(size)
		s.log.WithFields(logrus.Fields{
			"runes": text.Len(),
			"lo":    lo,
			"hi":    hi,
			"font":  mid,
			"w":     size.Width,
			"h":     size.Height,
			"wrap":  wrap,
			"fits":  fits,
		}).Debug("binary search step")
		if fits {
			lo = mid
		} else {
			hi = mid
		}
	}
}
