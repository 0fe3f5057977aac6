// Package window derives UTC bucket boundaries from a single reference instant.
package window

import (
	"time"
)

const (
	MonthLabelLayout = "Jan 2006"
	DayLabelLayout   = "2006-01-02"

	DefaultMonths = 6
	DefaultDays   = 31
)

// Reference is the "now" of one aggregation run. Every boundary in the run
// is derived from it; nothing in this package reads the clock.
type Reference struct {
	Now time.Time
}

func NewReference(now time.Time) Reference {
	return Reference{Now: now.UTC()}
}

// Bucket is the half-open interval [Start, End).
type Bucket struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

func (b Bucket) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(b.Start) && t.Before(b.End)
}

// Windows holds the two adjacent rolling windows used for trend figures.
type Windows struct {
	Current  Bucket `json:"current"`
	Previous Bucket `json:"previous"`
}

// MonthlyBuckets returns n calendar-month buckets, oldest first. The last
// bucket is the current month and ends at the start of next month.
func MonthlyBuckets(ref Reference, n int) []Bucket {
	if n <= 0 {
		n = DefaultMonths
	}
	now := ref.Now.UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	buckets := make([]Bucket, n)
	for i := 0; i < n; i++ {
		start := current.AddDate(0, -(n - 1 - i), 0)
		buckets[i] = Bucket{
			Start: start,
			End:   start.AddDate(0, 1, 0),
			Label: start.Format(MonthLabelLayout),
		}
	}
	return buckets
}

// RollingWindows returns Current=[now-days, now) and Previous=[now-2*days, now-days).
func RollingWindows(ref Reference, days int) Windows {
	if days <= 0 {
		days = DefaultDays
	}
	now := ref.Now.UTC()
	span := time.Duration(days) * 24 * time.Hour
	currentStart := now.Add(-span)
	previousStart := currentStart.Add(-span)
	return Windows{
		Current: Bucket{
			Start: currentStart,
			End:   now,
			Label: currentStart.Format(DayLabelLayout),
		},
		Previous: Bucket{
			Start: previousStart,
			End:   currentStart,
			Label: previousStart.Format(DayLabelLayout),
		},
	}
}

// Locate returns the index of the bucket containing t, or -1.
func Locate(buckets []Bucket, t time.Time) int {
	t = t.UTC()
	for i, b := range buckets {
		if b.Contains(t) {
			return i
		}
	}
	return -1
}

// Outer returns the interval covered by contiguous buckets.
func Outer(buckets []Bucket) Bucket {
	if len(buckets) == 0 {
		return Bucket{}
	}
	return Bucket{Start: buckets[0].Start, End: buckets[len(buckets)-1].End}
}

// Span returns the smallest interval covering every bucket given.
func Span(buckets ...Bucket) Bucket {
	var out Bucket
	for i, b := range buckets {
		if i == 0 || b.Start.Before(out.Start) {
			out.Start = b.Start
		}
		if i == 0 || b.End.After(out.End) {
			out.End = b.End
		}
	}
	return out
}
