package models

import "time"

// Booking is a single exclusive reservation of a (date, time) slot.
// Date and Time are stored in their canonical text forms because the
// whole pipeline (dialogue validation, uniqueness, API) operates on them.
type Booking struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"owner"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time"` // HH:MM
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slot returns the booking's slot key.
func (b *Booking) Slot() string {
	return b.Date + " " + b.Time
}
