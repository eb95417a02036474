package draw

import (
	"math"
	"strings"

	"github.com/go-drift/widgetkit/pkg/element"
)

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// ProgressFraction maps value/total into [0, 1]. A non-positive total maps
// to 0.
func ProgressFraction(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return clamp01(value / total)
}

// GaugeFraction maps value within [min, max] into [0, 1].
func GaugeFraction(value, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return clamp01((value - lo) / (hi - lo))
}

// FractionOf returns the fill fraction of a progress or gauge element.
func FractionOf(e element.Element) float64 {
	switch n := e.(type) {
	case *element.Progress:
		return ProgressFraction(n.Value, element.Or(n.Total, 1))
	case *element.Gauge:
		return GaugeFraction(n.Value, element.Or(n.Min, 0), element.Or(n.Max, 1))
	default:
		return 0
	}
}

// IsCircular reports whether a progress or gauge renders as a ring.
// Progress defaults to linear and gauges default to circular.
func IsCircular(e element.Element) bool {
	switch n := e.(type) {
	case *element.Progress:
		return strings.EqualFold(n.BarStyle, "circular")
	case *element.Gauge:
		return !strings.EqualFold(n.GaugeStyle, "linear")
	default:
		return false
	}
}

// SweepDegrees returns the ring sweep for a fraction.
func SweepDegrees(fraction float64) float64 { return 360 * clamp01(fraction) }

// ProgressBar renders a ten-cell text progress bar, e.g. "[#####-----] 50%".
func ProgressBar(percent int) string {
	percent = max(0, min(100, percent))
	blocks := percent / 10
	return "[" + strings.Repeat("#", blocks) + strings.Repeat("-", 10-blocks) + "] " + itoa(percent) + "%"
}

// Percent rounds a fraction to a whole percentage.
func Percent(fraction float64) int {
	return int(math.Round(clamp01(fraction) * 100))
}

var sparkTicks = []rune("_.-~*+x%#")

// Sparkline renders up to the first 24 values as a row of tick characters.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	if len(values) > 24 {
		values = values[:24]
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span <= 0.00001 {
		span = 1
	}
	var b strings.Builder
	top := len(sparkTicks) - 1
	for _, v := range values {
		idx := int((v - lo) / span * float64(top))
		b.WriteRune(sparkTicks[max(0, min(top, idx))])
	}
	return b.String()
}
