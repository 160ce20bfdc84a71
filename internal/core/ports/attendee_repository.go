package ports

import (
	"context"

	"github.com/eventhub/events-api/internal/core/domain"
)

// AttendeeRepository persists the user/event join records. The store holds
// a uniqueness constraint on (userId, eventId).
type AttendeeRepository interface {
	// Create inserts a, keeping a.ID when set. A second record for the same
	// pair returns ErrAlreadyRegistered.
	Create(ctx context.Context, a *domain.Attendee) (*domain.Attendee, error)
	FindByPair(ctx context.Context, eventID, userID string) (*domain.Attendee, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Attendee, error)
	// ListByEvent returns the event's attendees oldest first with UserName set.
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Attendee, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Attendee, error)
	// Delete returns ErrAttendeeNotFound when nothing was removed.
	Delete(ctx context.Context, id string) error
	// DeleteByEvent removes every record of the event and returns their ids.
	DeleteByEvent(ctx context.Context, eventID string) ([]string, error)
}
