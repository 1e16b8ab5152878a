package domain

import (
	"fmt"
	"time"
)

// DateWindow is the resolved scan window. Since is inclusive from 00:00;
// To, when set, is inclusive through 23:59. Dates are ISO YYYY-MM-DD.
type DateWindow struct {
	Mode  ScanMode
	Since string
	To    string
}

// ResolveWindow turns a scan mode into a concrete date window relative to now.
// Custom mode uses the caller-supplied dates; a missing custom since falls
// back to today.
func ResolveWindow(mode ScanMode, since, to string, now time.Time) DateWindow {
	w := DateWindow{Mode: mode, To: to}
	switch mode {
	case ModeToday:
		w.Since = now.Format("2006-01-02")
	case ModeWeekly:
		w.Since = now.AddDate(0, 0, -7).Format("2006-01-02")
	case ModeMonthly:
		w.Since = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
	case ModeCustom:
		if since != "" {
			w.Since = since
		} else {
			w.Since = now.Format("2006-01-02")
		}
	default:
		w.Since = now.Format("2006-01-02")
	}
	return w
}

// Phrase renders the window as the human-readable phrase passed to the model,
// e.g. "In the last 7 days".
func (w DateWindow) Phrase() string {
	switch w.Mode {
	case ModeToday:
		return "Today"
	case ModeWeekly:
		return "In the last 7 days"
	case ModeMonthly:
		return "In the last month"
	case ModeCustom:
		if w.Since != "" && w.To != "" {
			return fmt.Sprintf("From %s to %s", w.Since, w.To)
		}
		if w.Since != "" {
			return fmt.Sprintf("Since %s", w.Since)
		}
	}
	if w.Since != "" {
		return fmt.Sprintf("Since %s", w.Since)
	}
	return "Recently"
}
