// Package metrics derives display values (cost, budget headroom, session
// duration) from running token totals. Everything here is a pure function of
// its inputs.
package metrics

import (
	"fmt"
	"math"
	"time"
)

// Tier classifies budget usage for coloring.
type Tier int

const (
	TierLow    Tier = iota // < 25% used
	TierMedium             // 25–74%
	TierHigh               // >= 75%
)

// Pricing is USD per 1K tokens. Cache tokens are tracked but not priced,
// matching the pricing model's treatment of primary tokens only.
type Pricing struct {
	PerKInput  float64
	PerKOutput float64
}

// TotalTokens is the primary total: input + output. Cache counters are
// deliberately excluded.
func TotalTokens(input, output int64) int64 {
	return input + output
}

// Cost estimates USD spend. Each term is rounded to 4 decimals before the sum
// is rounded to 2; the two-stage rounding keeps displayed costs reproducible
// against the per-term values.
func Cost(input, output int64, p Pricing) float64 {
	inCost := round(float64(input)/1000*p.PerKInput, 4)
	outCost := round(float64(output)/1000*p.PerKOutput, 4)
	return round(inCost+outCost, 2)
}

// Remaining is the unused part of the budget, floored at zero.
func Remaining(budget, used int64) int64 {
	if used >= budget {
		return 0
	}
	return budget - used
}

// UsagePercent is truncating integer division: 0 when the budget is zero.
func UsagePercent(used, budget int64) int {
	if budget == 0 {
		return 0
	}
	return int(used * 100 / budget)
}

// UsageTier buckets a usage percentage for coloring.
func UsageTier(percent int) Tier {
	switch {
	case percent < 25:
		return TierLow
	case percent < 75:
		return TierMedium
	default:
		return TierHigh
	}
}

// DurationSeconds is the elapsed whole seconds since the session start
// timestamp, or 0 when the timestamp is absent or unparsable.
func DurationSeconds(sessionStart string, now time.Time) int64 {
	if sessionStart == "" {
		return 0
	}
	start, err := time.Parse(time.RFC3339, sessionStart)
	if err != nil {
		return 0
	}
	secs := int64(now.Sub(start).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

// FormatDuration renders seconds as HH:MM:SS. Hours do not roll over into
// days: 86400 seconds is "24:00:00".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
