package violation

import (
	"math"
	"time"

	"github.com/oomph-ac/replica/assert"
	"github.com/oomph-ac/replica/utils"
)

// TimeBuckets is a rolling history of weighted events split into buckets of equal duration. The
// newest bucket has index 0.
type TimeBuckets struct {
	queue    *utils.CircularQueue[float64]
	duration int64
	// start is the time in milliseconds at which the newest bucket began.
	start int64
}

// NewTimeBuckets returns a history of n buckets of the given duration each.
func NewTimeBuckets(n int, duration time.Duration) *TimeBuckets {
	assert.IsTrue(n > 0, "time buckets need at least one bucket, got %d", n)
	assert.IsTrue(duration >= time.Millisecond, "time buckets need a duration of at least 1ms, got %v", duration)
	return &TimeBuckets{
		queue:    utils.NewCircularQueue(n, func() float64 { return 0 }),
		duration: duration.Milliseconds(),
	}
}

// Add adds amount to the bucket covering now.
func (b *TimeBuckets) Add(now time.Time, amount float64) {
	b.Update(now)
	v, _ := b.queue.Newest()
	_ = b.queue.Set(b.queue.Size()-1, v+sanitize(amount))
}

// Observe adds weight at now and returns the resulting score.
func (b *TimeBuckets) Observe(now time.Time, weight, factor float64) float64 {
	b.Add(now, weight)
	return b.Score(factor)
}

// Update moves the window forward to now. A clock that went backwards, or a gap longer than the whole
// window, clears the history.
func (b *TimeBuckets) Update(now time.Time) {
	ms := now.UnixMilli()
	diff := ms - b.start
	n := int64(b.queue.Capacity())
	switch {
	case diff < 0 || diff >= b.duration*n:
		b.Clear(now)
	case diff >= b.duration:
		shift := diff / b.duration
		for range shift {
			_ = b.queue.Append(0)
		}
		b.start += b.duration * shift
	}
}

// Clear empties every bucket and starts the newest bucket at now.
func (b *TimeBuckets) Clear(now time.Time) {
	b.queue.Fill(0)
	b.start = now.UnixMilli()
}

// Bucket returns the amount in bucket i, 0 being the newest.
func (b *TimeBuckets) Bucket(i int) float64 {
	v, _ := b.queue.Get(b.queue.Size() - 1 - i)
	return v
}

// Len returns the amount of buckets.
func (b *TimeBuckets) Len() int {
	return b.queue.Capacity()
}

// Duration returns the duration of a single bucket.
func (b *TimeBuckets) Duration() time.Duration {
	return time.Duration(b.duration) * time.Millisecond
}

// Window returns the duration covered by all buckets.
func (b *TimeBuckets) Window() time.Duration {
	return b.Duration() * time.Duration(b.Len())
}

// Score returns the sum of all buckets, bucket i weighted by factor^i.
func (b *TimeBuckets) Score(factor float64) float64 {
	return b.SliceScore(0, b.Len(), factor)
}

// SliceScore returns the weighted sum of buckets [from, to), bucket i weighted by factor^(i-from).
func (b *TimeBuckets) SliceScore(from, to int, factor float64) float64 {
	from, to = max(from, 0), min(to, b.Len())
	var score float64
	// The queue yields oldest first, so bucket indices count down.
	i := b.queue.Size()
	for v := range b.queue.Iter() {
		i--
		if i >= from && i < to {
			score += v * math.Pow(factor, float64(i-from))
		}
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}
