package violation

import (
	"math"
	"time"
)

// TickDuration is the duration of one server tick.
const TickDuration = 50 * time.Millisecond

// tolerableLag is the lag factor up to which a short term window keeps counting.
const tolerableLag = 1.5

// LagSource measures how far the server falls behind real time. Lag returns a factor of at least 1
// for the given window: 1 means no lag, 2 means the window took twice as long as it should have.
type LagSource interface {
	Lag(window time.Duration) float64
}

// NoLag is a LagSource for a server that never lags.
type NoLag struct{}

func (NoLag) Lag(time.Duration) float64 { return 1 }

// FixedLag reports the same lag factor for every window.
type FixedLag float64

func (f FixedLag) Lag(time.Duration) float64 {
	return math.Max(1, sanitize(float64(f)))
}

// LagFactor returns the lag of src over window, or 1 if src is nil or reports nonsense.
func LagFactor(src LagSource, window time.Duration) float64 {
	if src == nil {
		return 1
	}
	lag := src.Lag(window)
	if math.IsNaN(lag) || math.IsInf(lag, 0) || lag < 1 {
		return 1
	}
	return lag
}

// ShortTermWindow counts events over a fixed amount of ticks.
type ShortTermWindow struct {
	StartTick int64
	Count     int
}

// Add counts an event at tick and returns the count of the window. The window restarts when it ran
// out, when the tick counter went backwards, or when lag is not nil and the server lagged by 1.5 or
// more since the window started.
func (w *ShortTermWindow) Add(tick, windowTicks int64, lag LagSource) int {
	elapsed := tick - w.StartTick
	switch {
	case w.Count == 0 || elapsed < 0 || elapsed >= windowTicks:
		w.restart(tick)
	case lag == nil || LagFactor(lag, time.Duration(elapsed)*TickDuration) < tolerableLag:
		w.Count++
	default:
		w.restart(tick)
	}
	return w.Count
}

func (w *ShortTermWindow) restart(tick int64) {
	w.StartTick, w.Count = tick, 1
}

// ShortTermWeight returns the weight converting an excess short term count into milliseconds.
func ShortTermWeight(windowTicks int64, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	return float64(TickDuration.Milliseconds()) * float64(windowTicks) / float64(limit)
}

// ShortTermViolation returns the violation of a short term count over limit.
func ShortTermViolation(count, limit int, windowTicks int64) float64 {
	if count <= limit {
		return 0
	}
	return float64(count-limit) * ShortTermWeight(windowTicks, limit)
}

// FullPeriodViolation returns how far score exceeds the window duration in milliseconds, with the
// window scaled by the lag factor.
func FullPeriodViolation(score float64, window time.Duration, lag float64) float64 {
	limit := float64(window.Milliseconds()) * math.Max(1, sanitize(lag))
	if score > limit {
		return score - limit
	}
	return 0
}
