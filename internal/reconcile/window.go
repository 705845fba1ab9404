package reconcile

import (
	"strings"
	"time"
)

const dayFormat = "2006-01-02"

// DefaultPreset is substituted when the caller supplies no usable date
// selection at all. The silent fallback mirrors how the dashboard always
// behaved; see DESIGN.md for the trade-off.
const DefaultPreset = "last_7d"

// presetSpans maps the last_Nd presets to their lookback in days. The
// window spans [today-N, today] inclusive, which is N+1 calendar days:
// one day wider than the label suggests, but downstream chart widths
// depend on exactly this span.
var presetSpans = map[string]int{
	"last_3d":  3,
	"last_7d":  7,
	"last_14d": 14,
	"last_28d": 28,
	"last_30d": 30,
	"last_90d": 90,
}

// Window is an inclusive range of whole calendar days.
type Window struct {
	Start time.Time
	End   time.Time
	// Preset is the effective preset the window was resolved from:
	// the requested one, "custom" for explicit dates, or DefaultPreset
	// after a fallback.
	Preset string
}

// StartKey returns the canonical YYYY-MM-DD form of the window start.
func (w Window) StartKey() string { return w.Start.Format(dayFormat) }

// EndKey returns the canonical YYYY-MM-DD form of the window end.
func (w Window) EndKey() string { return w.End.Format(dayFormat) }

// Days enumerates every calendar day in the window in ascending order.
// The result always has (End-Start in days)+1 entries.
func (w Window) Days() []string {
	var days []string
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dayFormat))
	}
	return days
}

// ResolveWindow turns a named preset, or an explicit start/end pair when
// the preset is absent or "custom", into a concrete Window evaluated
// against now. It never fails: an unrecognized preset or unparseable
// custom dates fall back to the default 7-day window.
func ResolveWindow(preset, start, end string, now time.Time) Window {
	today := startOfDay(now)

	switch preset {
	case "", "custom":
		// fall through to explicit dates
	case "today":
		return Window{Start: today, End: today, Preset: preset}
	case "yesterday":
		y := today.AddDate(0, 0, -1)
		return Window{Start: y, End: y, Preset: preset}
	default:
		if n, ok := presetSpans[preset]; ok {
			return Window{Start: today.AddDate(0, 0, -n), End: today, Preset: preset}
		}
		return defaultWindow(today)
	}

	s, sErr := time.ParseInLocation(dayFormat, strings.TrimSpace(start), now.Location())
	e, eErr := time.ParseInLocation(dayFormat, strings.TrimSpace(end), now.Location())
	if sErr != nil || eErr != nil {
		return defaultWindow(today)
	}
	if e.Before(s) {
		s, e = e, s
	}
	return Window{Start: s, End: e, Preset: "custom"}
}

func defaultWindow(today time.Time) Window {
	n := presetSpans[DefaultPreset]
	return Window{Start: today.AddDate(0, 0, -n), End: today, Preset: DefaultPreset}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
