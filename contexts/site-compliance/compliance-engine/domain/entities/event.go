package entities

import "time"

// EventRecord grants a temporary site-equivalent credit over a calendar-day window.
type EventRecord struct {
	EventID        string
	MunicipalityID string
	Description    string
	Credit         int
	ValidFrom      time.Time
	ValidTo        time.Time
	CreatedAt      time.Time
}

// StatusAt compares calendar days in UTC; both window ends are inclusive.
func (e EventRecord) StatusAt(t time.Time) LedgerStatus {
	day := DayOf(t)
	switch {
	case day.Before(DayOf(e.ValidFrom)):
		return LedgerStatusPending
	case day.After(DayOf(e.ValidTo)):
		return LedgerStatusExpired
	default:
		return LedgerStatusActive
	}
}

func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
