package handler

import (
	"encoding/json"
	"time"
)

// errorResponse documents the error envelope for swag.
type errorResponse struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Users ---

type registerRequest struct {
	UserName string `json:"userName" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type userResponse struct {
	ID        string    `json:"_id"`
	UserName  string    `json:"userName"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	Attendees []string  `json:"attendees"`
	Events    []string  `json:"events"`
	Favorites []string  `json:"favorites"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type loginUserResponse struct {
	ID        string   `json:"_id"`
	UserName  string   `json:"userName"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	Favorites []string `json:"favorites"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
	Token   string       `json:"token"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  loginUserResponse `json:"user"`
}

type favoriteEventResponse struct {
	ID       string    `json:"_id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Img      string    `json:"img,omitempty"`
	Location string    `json:"location"`
}

type attendanceEventResponse struct {
	ID    string    `json:"_id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

type profileAttendanceResponse struct {
	ID        string                  `json:"_id"`
	Event     attendanceEventResponse `json:"eventId"`
	CreatedAt time.Time               `json:"createdAt"`
}

type profileResponse struct {
	ID          string                      `json:"_id"`
	UserName    string                      `json:"userName"`
	Email       string                      `json:"email"`
	Roles       []string                    `json:"roles"`
	Favorites   []favoriteEventResponse     `json:"favorites"`
	Attendances []profileAttendanceResponse `json:"attendances"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

type favoritesResponse struct {
	Favorites []favoriteEventResponse `json:"favorites"`
}

type toggleFavoriteResponse struct {
	Message   string   `json:"message"`
	Favorites []string `json:"favorites"`
}

// --- Events ---

// eventRequest is accepted both as JSON and as multipart form fields.
// Price stays textual so either encoding reaches the service unchanged.
type eventRequest struct {
	Title       *string      `json:"title"`
	Category    *string      `json:"category"`
	Date        *string      `json:"date"`
	Location    *string      `json:"location"`
	Description *string      `json:"description"`
	Price       *json.Number `json:"price"`
	Img         *string      `json:"img"`
}

type userRefResponse struct {
	ID       string `json:"_id"`
	UserName string `json:"userName"`
}

type eventBase struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Creator     userRefResponse `json:"creator"`
	Img         string          `json:"img,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type eventResponse struct {
	eventBase
	Attendees []userRefResponse `json:"attendees"`
}

// eventCountResponse hides who attends; only the count is shown.
type eventCountResponse struct {
	eventBase
	AttendeeCount int `json:"attendeeCount"`
}

type eventListResponse struct {
	Events     []eventResponse `json:"events"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

type createEventResponse struct {
	Message string        `json:"message"`
	Event   eventResponse `json:"event"`
}

type updateEventResponse struct {
	Message      string `json:"message"`
	UpdatedEvent any    `json:"updatedEvent" swaggertype:"object"`
}

// --- Attendees ---

type registerAttendeeRequest struct {
	UserID string `json:"userId"`
}

type attendeeResponse struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	EventID   string    `json:"eventId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type eventAttendeeResponse struct {
	ID        string          `json:"_id"`
	User      userRefResponse `json:"userId"`
	EventID   string          `json:"eventId"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type attendancesResponse struct {
	Attendances []attendeeResponse `json:"attendances"`
}

type registerAttendeeResponse struct {
	Message  string           `json:"message"`
	Attendee attendeeResponse `json:"attendee"`
}

type cancelAttendanceResponse struct {
	Message   string   `json:"message"`
	Attendees []string `json:"attendees"`
}

type reconcileResponse struct {
	Message           string `json:"message"`
	EventID           string `json:"eventId"`
	Attendees         int    `json:"attendees"`
	EventLinksAdded   int    `json:"eventLinksAdded"`
	EventLinksRemoved int    `json:"eventLinksRemoved"`
	UserLinksAdded    int    `json:"userLinksAdded"`
	UserLinksRemoved  int    `json:"userLinksRemoved"`
}

// --- Uploads ---

type uploadResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}
