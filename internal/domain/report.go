package domain

import "time"

// DateWindow is an inclusive [Start, End] range. The zero value covers all
// time.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// Unbounded reports whether neither bound is set.
func (w DateWindow) Unbounded() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether t falls inside the window.
func (w DateWindow) Contains(t time.Time) bool {
	if w.Unbounded() {
		return true
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// ProfessionEarnings is the summed paid price for one contractor profession.
type ProfessionEarnings struct {
	Profession string `json:"profession"`
	Total      Money  `json:"total_earned"`
}

// ClientPayments is the summed paid price for one client.
type ClientPayments struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Paid     Money  `json:"paid"`
}
