package engine

import "time"

// DailySummary counts the acknowledgments recorded on one local calendar day.
type DailySummary struct {
	Day     time.Time
	Taken   int
	Skipped int
}

// Total is Taken + Skipped.
func (s DailySummary) Total() int { return s.Taken + s.Skipped }

// Summarize tallies the logs whose timestamp falls on day's local date.
func Summarize(history []HistoryLog, day time.Time) DailySummary {
	y, m, d := day.Date()
	out := DailySummary{Day: time.Date(y, m, d, 0, 0, 0, 0, day.Location())}

	for _, h := range history {
		hy, hm, hd := time.UnixMilli(h.Timestamp).In(day.Location()).Date()
		if hy != y || hm != m || hd != d {
			continue
		}
		switch h.Status {
		case StatusTaken:
			out.Taken++
		case StatusSkipped:
			out.Skipped++
		}
	}
	return out
}
