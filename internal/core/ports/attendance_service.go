package ports

import (
	"context"

	"github.com/eventhub/events-api/internal/core/domain"
)

// ReconcileResult counts the membership links repaired for one event.
type ReconcileResult struct {
	EventID           string
	Attendees         int
	EventLinksAdded   int
	EventLinksRemoved int
	UserLinksAdded    int
	UserLinksRemoved  int
}

// AttendanceService is the attendance registry: it keeps attendee records,
// event attendee sets and user membership sets consistent.
type AttendanceService interface {
	ListForEvent(ctx context.Context, eventID string) ([]*domain.Attendee, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Attendee, error)
	// Register signs userID up for eventID. An empty userID means the caller.
	Register(ctx context.Context, eventID, userID string, caller *domain.User) (*domain.Attendee, error)
	// Cancel removes the caller's registration and returns the event's
	// remaining attendee ids.
	Cancel(ctx context.Context, eventID string, caller *domain.User) ([]string, error)
	Reconcile(ctx context.Context, eventID string) (*ReconcileResult, error)
}
