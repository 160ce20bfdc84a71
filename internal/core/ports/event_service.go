package ports

import (
	"context"
	"io"
	"time"

	"github.com/eventhub/events-api/internal/core/domain"
)

// UserRef is the public projection of a user embedded in other resources.
type UserRef struct {
	ID       string
	UserName string
}

// EventView is an event with its creator and attendees resolved.
type EventView struct {
	ID          string
	Title       string
	Category    domain.Category
	Date        time.Time
	Location    string
	Description string
	Price       float64
	Creator     UserRef
	Attendees   []UserRef
	Img         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListEventsInput carries the raw query parameters of GET /events. The
// service parses and sanitizes them.
type ListEventsInput struct {
	Title    string
	Location string
	Category string
	MinPrice string
	MaxPrice string
	MinDate  string
	MaxDate  string
	Page     string
	Limit    string
}

// EventList is one page of the event listing.
type EventList struct {
	Items      []EventView
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ImageUpload is a file received from the client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreateEventInput carries the fields of a new event. Price and Date arrive
// as text because multipart forms carry no types.
type CreateEventInput struct {
	Title       string
	Category    string
	Date        string
	Location    string
	Description string
	Price       string
	ImgURL      string
	Image       *ImageUpload
	Caller      *domain.User
}

// UpdateEventInput carries a partial update; nil fields are left untouched.
type UpdateEventInput struct {
	ID          string
	Title       *string
	Category    *string
	Date        *string
	Location    *string
	Description *string
	Price       *string
	ImgURL      *string
	Image       *ImageUpload
	Caller      *domain.User
}

// EventService defines use-case operations on events.
type EventService interface {
	List(ctx context.Context, in ListEventsInput) (*EventList, error)
	Get(ctx context.Context, id string) (*EventView, error)
	SearchByTitle(ctx context.Context, term string) ([]EventView, error)
	SearchByDate(ctx context.Context, date string) ([]EventView, error)
	Create(ctx context.Context, in CreateEventInput) (*EventView, error)
	Update(ctx context.Context, in UpdateEventInput) (*EventView, error)
	Delete(ctx context.Context, id string, caller *domain.User) error
}

// ImageService stores event images and schedules their removal.
type ImageService interface {
	Upload(ctx context.Context, img ImageUpload) (string, error)
	// Release queues deletion of an image previously returned by Upload.
	Release(url string)
}
