package utils

import (
	"fmt"
	"log/slog"
	"time"
)

// Phase is one named step of a run and the time it took.
type Phase struct {
	Name string
	Took time.Duration
}

// Timings records how long each phase of a run took, measured from the end of
// the previous phase.
type Timings struct {
	start  time.Time
	last   time.Time
	phases []Phase
	now    func() time.Time
}

func NewTimings() *Timings {
	t := &Timings{now: time.Now}
	t.start = t.now()
	t.last = t.start
	return t
}

// Mark closes the current phase under name.
func (t *Timings) Mark(name string) time.Duration {
	now := t.now()
	took := now.Sub(t.last)
	t.last = now
	t.phases = append(t.phases, Phase{Name: name, Took: took})
	return took
}

func (t *Timings) Phases() []Phase {
	return append([]Phase(nil), t.phases...)
}

// Total is the time elapsed up to the last mark.
func (t *Timings) Total() time.Duration {
	return t.last.Sub(t.start)
}

// Share returns the percentage of the total spent in p.
func (t *Timings) Share(p Phase) float64 {
	total := t.Total()
	if total <= 0 {
		return 0
	}
	return float64(p.Took) / float64(total) * 100
}

// Log writes the stats at debug level.
func (t *Timings) Log(logger *slog.Logger) {
	logger.Debug("timing stats", "total", t.Total().Round(time.Microsecond).String())
	for _, p := range t.Phases() {
		logger.Debug("timing",
			"phase", p.Name,
			"took", p.Took.Round(time.Microsecond).String(),
			"share", fmt.Sprintf("%.1f%%", t.Share(p)),
		)
	}
}
