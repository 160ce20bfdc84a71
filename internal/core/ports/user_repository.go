package ports

import (
	"context"

	"github.com/eventhub/events-api/internal/core/domain"
)

// UserRepository defines persistence operations for users, including the
// membership sets mutated by the attendance registry and favorites.
type UserRepository interface {
	AuthRepository

	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateEmail(ctx context.Context, id, email string) (*domain.User, error)

	// AddAttendance adds eventID to the user's events and attendeeID to its
	// attendees (add-if-absent). Returns ErrUserNotFound when no user matched.
	AddAttendance(ctx context.Context, userID, eventID, attendeeID string) error
	// RemoveAttendance pulls eventID and attendeeID from the user's sets.
	RemoveAttendance(ctx context.Context, userID, eventID, attendeeID string) error
	// PullEventRefs removes every reference to a deleted event from all users.
	PullEventRefs(ctx context.Context, eventID string, attendeeIDs []string) error

	// ToggleFavorite removes eventID from favorites when present, adds it
	// otherwise, and returns whether it was added plus the resulting set.
	ToggleFavorite(ctx context.Context, userID, eventID string) (bool, []string, error)
}
