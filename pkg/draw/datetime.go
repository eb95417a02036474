package draw

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RFC 3339 parsing also accepts fractional seconds.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses ISO-8601 timestamps with or without fractional seconds,
// minute-precision timestamps, bare dates (UTC) and epoch milliseconds.
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

// FormatDuration renders d as [-]HH:MM:SS, truncated to whole seconds.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	sec := int64(d / time.Second)
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, sec/3600, (sec%3600)/60, sec%60)
}

// FormatDate renders a date value in one of the date styles: time, date,
// relative, offset or timer. Unparseable input is returned unchanged. Times
// are shown in now's location.
func FormatDate(raw, style string, now time.Time) string {
	t, ok := ParseTime(raw)
	if !ok {
		return raw
	}
	local := t.In(now.Location())
	switch strings.ToLower(style) {
	case "date":
		return local.Format("2006-01-02")
	case "relative":
		return Relative(t, now)
	case "offset", "timer":
		return FormatDuration(t.Sub(now))
	default:
		return local.Format("15:04")
	}
}

// FormatTimer renders the time until target, or since it when counting up.
func FormatTimer(target, counting string, now time.Time) string {
	t, ok := ParseTime(target)
	if !ok {
		return target
	}
	if strings.EqualFold(counting, "up") {
		return FormatDuration(now.Sub(t))
	}
	return FormatDuration(t.Sub(now))
}

// Relative renders t relative to now at minute resolution, e.g. "in 5 min"
// or "2 hr ago".
func Relative(t, now time.Time) string {
	d := t.Sub(now)
	future := d > 0
	if d < 0 {
		d = -d
	}
	var span string
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		span = fmt.Sprintf("%d min", int(d/time.Minute))
	case d < 24*time.Hour:
		span = fmt.Sprintf("%d hr", int(d/time.Hour))
	default:
		n := int(d / (24 * time.Hour))
		unit := "days"
		if n == 1 {
			unit = "day"
		}
		span = fmt.Sprintf("%d %s", n, unit)
	}
	if future {
		return "in " + span
	}
	return span + " ago"
}

func itoa(n int) string { return strconv.Itoa(n) }
