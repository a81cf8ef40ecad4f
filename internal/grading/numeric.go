package grading

import "math"

// Percentage returns round(value/total*100), or 0 when total is 0.
// Halves round up.
func Percentage(value, total int) int {
	if total <= 0 {
		return 0
	}
	return (value*200 + total) / (2 * total)
}

// ScoreDifference is post minus pre, in percentage points.
func ScoreDifference(pre, post int) int {
	return post - pre
}

// Improvement is the change from pre to post relative to pre, in percent.
// It is undefined (ok=false) when pre is 0.
func Improvement(pre, post int) (pct int, ok bool) {
	if pre <= 0 {
		return 0, false
	}
	return roundHalfUp(float64(post-pre) / float64(pre) * 100), true
}

// Fraction is a raw score out of a maximum.
type Fraction struct {
	Score int
	Max   int
}

// MeanPercentage averages score/max*100 over fs and rounds once at the end.
// Entries with a zero max count as 0%.
func MeanPercentage(fs []Fraction) int {
	if len(fs) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range fs {
		if f.Max > 0 {
			sum += float64(f.Score) / float64(f.Max) * 100
		}
	}
	return roundHalfUp(sum / float64(len(fs)))
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
