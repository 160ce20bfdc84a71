package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/core/ports"
	"github.com/eventhub/events-api/internal/core/service"
)

// memStore backs the user, event and attendee repositories with maps so the
// real services can run behind the router.
type memStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*domain.User
	events    map[string]*domain.Event
	attendees map[string]*domain.Attendee
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]*domain.User{},
		events:    map[string]*domain.Event{},
		attendees: map[string]*domain.Attendee{},
	}
}

func (s *memStore) id(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

type directTx struct{}

func (directTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (directTx) Atomic() bool { return true }

// --- users ---

type memUserRepo struct{ *memStore }

func (r memUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	c := *u
	c.ID = r.id("u")
	r.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r memUserRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memUserRepo) List(context.Context) ([]*domain.User, error) { return nil, nil }

func (r memUserRepo) UpdateEmail(context.Context, string, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r memUserRepo) AddAttendance(_ context.Context, userID, eventID, attendeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if !slices.Contains(u.Events, eventID) {
		u.Events = append(u.Events, eventID)
	}
	if !slices.Contains(u.Attendees, attendeeID) {
		u.Attendees = append(u.Attendees, attendeeID)
	}
	return nil
}

func (r memUserRepo) RemoveAttendance(context.Context, string, string, string) error { return nil }

func (r memUserRepo) PullEventRefs(context.Context, string, []string) error { return nil }

func (r memUserRepo) ToggleFavorite(context.Context, string, string) (bool, []string, error) {
	return false, nil, nil
}

// --- events ---

type memEventRepo struct{ *memStore }

func (r memEventRepo) Create(_ context.Context, e *domain.Event) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.events {
		if strings.EqualFold(existing.Title, e.Title) {
			return nil, domain.ErrDuplicateTitle
		}
	}
	c := *e
	c.ID = r.id("e")
	r.events[c.ID] = &c
	out := c
	return &out, nil
}

func (r memEventRepo) FindByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok {
		c := *e
		c.Attendees = slices.Clone(e.Attendees)
		return &c, nil
	}
	return nil, domain.ErrEventNotFound
}

func (r memEventRepo) FindByTitle(_ context.Context, title string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if strings.EqualFold(e.Title, title) {
			c := *e
			return &c, nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (r memEventRepo) FindByIDs(context.Context, []string) ([]*domain.Event, error) { return nil, nil }

func (r memEventRepo) List(context.Context, ports.ListEventsFilter) ([]*domain.Event, error) {
	return nil, nil
}

func (r memEventRepo) Count(context.Context, ports.ListEventsFilter) (int64, error) { return 0, nil }

func (r memEventRepo) SearchTitle(context.Context, string) ([]*domain.Event, error) { return nil, nil }

func (r memEventRepo) FindByDateRange(context.Context, time.Time, time.Time) ([]*domain.Event, error) {
	return nil, nil
}

func (r memEventRepo) Update(context.Context, string, ports.EventPatch) (*domain.Event, error) {
	return nil, domain.ErrEventNotFound
}

func (r memEventRepo) Delete(context.Context, string) error { return domain.ErrEventNotFound }

func (r memEventRepo) AddAttendee(_ context.Context, eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	if !slices.Contains(e.Attendees, userID) {
		e.Attendees = append(e.Attendees, userID)
	}
	return nil
}

func (r memEventRepo) RemoveAttendee(context.Context, string, string) error { return nil }

func (r memEventRepo) SetAttendees(context.Context, string, []string) error { return nil }

// --- attendees ---

type memAttendeeRepo struct{ *memStore }

func (r memAttendeeRepo) Create(_ context.Context, a *domain.Attendee) (*domain.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.attendees {
		if existing.UserID == a.UserID && existing.EventID == a.EventID {
			return nil, domain.ErrAlreadyRegistered
		}
	}
	c := *a
	if c.ID == "" {
		c.ID = r.id("a")
	}
	r.attendees[c.ID] = &c
	out := c
	return &out, nil
}

func (r memAttendeeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attendees[id]; !ok {
		return domain.ErrAttendeeNotFound
	}
	delete(r.attendees, id)
	return nil
}

func (r memAttendeeRepo) FindByPair(context.Context, string, string) (*domain.Attendee, error) {
	return nil, domain.ErrAttendeeNotFound
}

func (r memAttendeeRepo) FindByIDs(context.Context, []string) ([]*domain.Attendee, error) {
	return nil, nil
}

func (r memAttendeeRepo) ListByEvent(context.Context, string) ([]*domain.Attendee, error) {
	return nil, nil
}

func (r memAttendeeRepo) ListByUser(context.Context, string) ([]*domain.Attendee, error) {
	return nil, nil
}

func (r memAttendeeRepo) DeleteByEvent(context.Context, string) ([]string, error) { return nil, nil }

func (s *memStore) attendeeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attendees)
}

func TestRouter_RegisterCreateAttendFlow(t *testing.T) {
	store := newMemStore()
	users := memUserRepo{store}
	events := memEventRepo{store}
	attendees := memAttendeeRepo{store}
	log := zerolog.Nop()

	images := service.NewImageService(nil, nil, 0, log)
	e := NewRouter(Dependencies{
		Log:               log,
		JWTSecret:         testSecret,
		Users:             users,
		Auth:              service.NewAuthService(users, testSecret, time.Hour),
		Events:            service.NewEventService(events, users, attendees, directTx{}, nil, images, log),
		Attendance:        service.NewAttendanceService(attendees, events, users, directTx{}, nil, time.Second, log),
		UserSvc:           service.NewUserService(users, events, attendees, log),
		Images:            images,
		MetricsRegisterer: prometheus.NewRegistry(),
	})

	rec := doRequest(e, http.MethodPost, "/users/register",
		`{"userName":"a","email":"a@x.com","password":"p"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"password"`) {
		t.Fatalf("register response leaks the password: %s", rec.Body.String())
	}
	var registered struct {
		User struct {
			ID string `json:"_id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatal(err)
	}
	if registered.Token == "" || registered.User.ID == "" {
		t.Fatalf("register response missing token or user: %s", rec.Body.String())
	}

	rec = doRequest(e, http.MethodPost, "/events/create",
		`{"title":"Go Meetup","category":"tech","date":"2030-05-01","location":"Madrid","description":"talks","price":0}`,
		registered.Token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create event: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Event struct {
			ID string `json:"_id"`
		} `json:"event"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	target := "/attendees/" + created.Event.ID
	body := `{"userId":"` + registered.User.ID + `"}`
	rec = doRequest(e, http.MethodPost, target, body, registered.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("register attendee: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var attended struct {
		Attendee struct {
			ID      string `json:"_id"`
			UserID  string `json:"userId"`
			EventID string `json:"eventId"`
		} `json:"attendee"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &attended); err != nil {
		t.Fatal(err)
	}
	if attended.Attendee.UserID != registered.User.ID || attended.Attendee.EventID != created.Event.ID {
		t.Fatalf("unexpected attendee: %s", rec.Body.String())
	}

	rec = doRequest(e, http.MethodPost, target, body, registered.Token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("repeat register: expected 400, got %d %s", rec.Code, rec.Body.String())
	}
	if got := message(t, rec); got != "Attendee already registered for this event" {
		t.Fatalf("repeat register: unexpected message %q", got)
	}
	if n := store.attendeeCount(); n != 1 {
		t.Fatalf("expected one attendee record, got %d", n)
	}
}
