package domain

import "time"

// Attendee is the join record of one user registered at one event.
// At most one exists per (UserID, EventID).
type Attendee struct {
	ID        string
	UserID    string
	EventID   string
	UserName  string // resolved on reads, not persisted
	CreatedAt time.Time
	UpdatedAt time.Time
}
