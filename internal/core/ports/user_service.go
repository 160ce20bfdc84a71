package ports

import (
	"context"
	"time"

	"github.com/eventhub/events-api/internal/core/domain"
)

// FavoriteEvent is the projection of an event in a user's favorites.
type FavoriteEvent struct {
	ID       string
	Title    string
	Date     time.Time
	Img      string
	Location string
}

// AttendanceView is an attendee record joined with its event.
type AttendanceView struct {
	ID         string
	EventID    string
	EventTitle string
	EventDate  time.Time
	CreatedAt  time.Time
}

// UserProfile is a user with favorites and attendances populated.
type UserProfile struct {
	ID          string
	UserName    string
	Email       string
	Roles       []string
	Favorites   []FavoriteEvent
	Attendances []AttendanceView
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type UserService interface {
	List(ctx context.Context) ([]UserProfile, error)
	Get(ctx context.Context, id string) (*UserProfile, error)
	// UpdateEmail changes the email of targetID, which must be the caller.
	UpdateEmail(ctx context.Context, targetID string, caller *domain.User, email string) (*domain.User, error)
	Favorites(ctx context.Context, caller *domain.User) ([]FavoriteEvent, error)
	// ToggleFavorite returns whether the event was added and the new set.
	ToggleFavorite(ctx context.Context, caller *domain.User, eventID string) (bool, []string, error)
}
