package layout

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hako/durafmt"
)

// Recorder 接收每次字号搜索的耗时与测量次数。
type Recorder interface {
	ObserveSearch(d time.Duration, steps int)
}

// SearchStats 是并发安全的累计统计。
type SearchStats struct {
	count atomic.Int64
	total atomic.Int64 // ns
	steps atomic.Int64
}

var _ Recorder = (*SearchStats)(nil)

func (s *SearchStats) ObserveSearch(d time.Duration, steps int) {
	s.count.Add(1)
	s.total.Add(int64(d))
	s.steps.Add(int64(steps))
}

// Count 返回搜索次数。
func (s *SearchStats) Count() int64 { return s.count.Load() }

// Steps 返回累计测量次数。
func (s *SearchStats) Steps() int64 { return s.steps.Load() }

// Average 返回平均单次搜索耗时。
func (s *SearchStats) Average() time.Duration {
	n := s.count.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(s.total.Load() / n)
}

func (s *SearchStats) String() string {
	n := s.Count()
	if n == 0 {
		return "no searches"
	}
	return fmt.Sprintf("%d searches, %d measurements, average %s", n, s.Steps(), durafmt.Parse(s.Average()).LimitFirstN(2).String())
}
