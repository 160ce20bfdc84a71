package ports

import (
	"context"
	"time"

	"github.com/eventhub/events-api/internal/core/domain"
)

// ListEventsFilter carries the query parameters of the event listing.
type ListEventsFilter struct {
	Title    string    // optional: case-insensitive substring
	Location string    // optional: exact match
	Category string    // optional: exact match on the canonical category
	MinPrice *float64  // optional: price >= MinPrice
	MaxPrice *float64  // optional: price <= MaxPrice
	MinDate  time.Time // optional: date >= MinDate
	MaxDate  time.Time // optional: date <= MaxDate
	Page     int       // 1-based
	Limit    int
}

// EventPatch holds the whitelisted mutable fields; nil means unchanged.
type EventPatch struct {
	Title       *string
	Category    *domain.Category
	Date        *time.Time
	Location    *string
	Description *string
	Price       *float64
	Img         *string
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Category == nil && p.Date == nil && p.Location == nil &&
		p.Description == nil && p.Price == nil && p.Img == nil
}

// EventRepository defines persistence operations for events.
type EventRepository interface {
	// Create inserts the event, keeping e.ID when set. A case-insensitive
	// title clash returns ErrDuplicateTitle.
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Event, error)
	// FindByTitle matches the whole title case-insensitively.
	FindByTitle(ctx context.Context, title string) (*domain.Event, error)
	List(ctx context.Context, filter ListEventsFilter) ([]*domain.Event, error)
	Count(ctx context.Context, filter ListEventsFilter) (int64, error)
	SearchTitle(ctx context.Context, term string) ([]*domain.Event, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*domain.Event, error)
	Update(ctx context.Context, id string, patch EventPatch) (*domain.Event, error)
	Delete(ctx context.Context, id string) error

	// AddAttendee adds userID to the event's attendee set (add-if-absent).
	// Returns ErrEventNotFound when no event matched.
	AddAttendee(ctx context.Context, eventID, userID string) error
	RemoveAttendee(ctx context.Context, eventID, userID string) error
	// SetAttendees replaces the attendee set wholesale.
	SetAttendees(ctx context.Context, eventID string, userIDs []string) error
}
