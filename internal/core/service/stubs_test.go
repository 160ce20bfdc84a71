package service

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store shared by the user, event and attendee stubs.
// ---------------------------------------------------------------------------

type memDB struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*domain.User
	events    map[string]*domain.Event
	attendees map[string]*domain.Attendee
	failures  map[string]error
}

func newMemDB() *memDB {
	return &memDB{
		users:     make(map[string]*domain.User),
		events:    make(map[string]*domain.Event),
		attendees: make(map[string]*domain.Attendee),
		failures:  make(map[string]error),
	}
}

// failOn makes the named operation (e.g. "users.AddAttendance") return err.
func (db *memDB) failOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures[op] = err
}

func (db *memDB) injected(op string) error { return db.failures[op] }

func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s%04d", prefix, db.seq)
}

type memSnapshot struct {
	users     map[string]*domain.User
	events    map[string]*domain.Event
	attendees map[string]*domain.Attendee
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := memSnapshot{
		users:     make(map[string]*domain.User, len(db.users)),
		events:    make(map[string]*domain.Event, len(db.events)),
		attendees: make(map[string]*domain.Attendee, len(db.attendees)),
	}
	for k, v := range db.users {
		s.users[k] = cloneUser(v)
	}
	for k, v := range db.events {
		s.events[k] = cloneEvent(v)
	}
	for k, v := range db.attendees {
		s.attendees[k] = cloneAttendee(v)
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users, db.events, db.attendees = s.users, s.events, s.attendees
}

func (db *memDB) user(id string) *domain.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	return cloneUser(db.users[id])
}

func (db *memDB) event(id string) *domain.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	return cloneEvent(db.events[id])
}

func (db *memDB) attendeeCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.attendees)
}

func (db *memDB) seedUser(name string, roles ...string) *domain.User {
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}
	u, err := (&memUsers{db}).Create(context.Background(), &domain.User{
		UserName: name,
		Email:    strings.ToLower(name) + "@example.com",
		Roles:    roles,
	})
	if err != nil {
		panic(err)
	}
	return u
}

func (db *memDB) seedEvent(title string, creator *domain.User) *domain.Event {
	e, err := (&memEvents{db}).Create(context.Background(), &domain.Event{
		Title:       title,
		Category:    domain.CategoryMusic,
		Date:        time.Date(2030, 5, 10, 20, 0, 0, 0, time.UTC),
		Location:    "Madrid",
		Description: "desc",
		Price:       10,
		CreatorID:   creator.ID,
		Attendees:   []string{},
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		panic(err)
	}
	return e
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	c.Attendees = slices.Clone(u.Attendees)
	c.Events = slices.Clone(u.Events)
	c.Favorites = slices.Clone(u.Favorites)
	return &c
}

func cloneEvent(e *domain.Event) *domain.Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Attendees = slices.Clone(e.Attendees)
	return &c
}

func cloneAttendee(a *domain.Attendee) *domain.Attendee {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func addToSet(set []string, v string) []string {
	if v == "" || slices.Contains(set, v) {
		return set
	}
	return append(set, v)
}

func pull(set []string, values ...string) []string {
	return slices.DeleteFunc(set, func(s string) bool { return slices.Contains(values, s) })
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type memUsers struct{ db *memDB }

func (r *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	c := cloneUser(u)
	c.ID = r.db.nextID("u")
	r.db.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.injected("users.FindByID"); err != nil {
		return nil, err
	}
	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *memUsers) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *memUsers) List(_ context.Context) ([]*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*domain.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUsers) UpdateEmail(_ context.Context, id, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	for _, other := range r.db.users {
		if other.ID != id && other.Email == email {
			return nil, domain.ErrUserExists
		}
	}
	u.Email = email
	return cloneUser(u), nil
}

func (r *memUsers) AddAttendance(_ context.Context, userID, eventID, attendeeID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.injected("users.AddAttendance"); err != nil {
		return err
	}
	u, ok := r.db.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Events = addToSet(u.Events, eventID)
	u.Attendees = addToSet(u.Attendees, attendeeID)
	return nil
}

func (r *memUsers) RemoveAttendance(_ context.Context, userID, eventID, attendeeID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.injected("users.RemoveAttendance"); err != nil {
		return err
	}
	u, ok := r.db.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Events = pull(u.Events, eventID)
	u.Attendees = pull(u.Attendees, attendeeID)
	return nil
}

func (r *memUsers) PullEventRefs(_ context.Context, eventID string, attendeeIDs []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.injected("users.PullEventRefs"); err != nil {
		return err
	}
	for _, u := range r.db.users {
		u.Events = pull(u.Events, eventID)
		u.Favorites = pull(u.Favorites, eventID)
		u.Attendees = pull(u.Attendees, attendeeIDs...)
	}
	return nil
}

func (r *memUsers) ToggleFavorite(_ context.Context, userID, eventID string) (bool, []string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[userID]
	if !ok {
		return false, nil, domain.ErrUserNotFound
	}
	if slices.Contains(u.Favorites, eventID) {
		u.Favorites = pull(u.Favorites, eventID)
		return false, slices.Clone(u.Favorites), nil
	}
	u.Favorites = addToSet(u.Favorites, eventID)
	return true, slices.Clone(u.Favorites), nil
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

type memEvents struct{ db *memDB }

func (r *memEvents) Create(_ context.Context, e *domain.Event) (*domain.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.injected("events.Create"); err != nil {
		return nil, err
	}
	for _, existing := range r.db.events {
		if strings.EqualFold(existing.Title, e.Title) {
			return nil, domain.ErrDuplicateTitle
		}
	}
	c := cloneEvent(e)
	if c.ID == "" {
		c.ID = r.db.nextID("e")
	}
	r.db.events[c.ID] = c
	return cloneEvent(c), nil
}

func (r *memEvents) FindByID(_ context.Context, id string) (*domain.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e, ok := r.db.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

func (r *memEvents) FindByIDs(_ context.Context, ids []string) ([]*domain.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Event
	for _, id := range ids {
		if e, ok := r.db.events[id]; ok {
			out = append(out, cloneEvent(e))
		}
	}
	return out, nil
}

func (r *memEvents) FindByTitle(_ context.Context, title string) (*domain.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, e := range r.db.events {
		if strings.EqualFold(e.Title, title) {
			return cloneEvent(e), nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (r *memEvents) matching(f ports.ListEventsFilter) []*domain.Event {
	var out []*domain.Event
	for _, e := range r.db.events {
		switch {
		case f.Title != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(f.Title)):
		case f.Location != "" && e.Location != f.Location:
		case f.Category != "" && string(e.Category) != f.Category:
		case f.MinPrice != nil && e.Price < *f.MinPrice:
		case f.MaxPrice != nil && e.Price > *f.MaxPrice:
		case !f.MinDate.IsZero() && e.Date.Before(f.MinDate):
		case !f.MaxDate.IsZero() && e.Date.After(f.MaxDate):
		default:
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *memEvents) List(_ context.Context, f ports.ListEventsFilter) ([]*domain.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := r.matching(f)
	start := min((f.Page-1)*f.Limit, len(all))
	end := min(start+f.Limit, len(all))
	return all[start:end], nil
}

func (r *memEvents) Count(_ context.Context, f ports.ListEventsFilter) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(r.matching(f))), nil
}

func (r *memEvents) SearchTitle(_ context.Context, term string) ([]*domain.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.matching(ports.ListEventsFilter{Title: term}), nil
}

func (r *memEvents) FindByDateRange(_ context.Context, from, to time.Time) ([]*domain.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Event
	for _, e := range r.matching(ports.ListEventsFilter{}) {
		if !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEvents) Update(_ context.Context, id string, p ports.EventPatch) (*domain.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e, ok := r.db.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if p.Title != nil {
		for _, other := range r.db.events {
			if other.ID != id && strings.EqualFold(other.Title, *p.Title) {
				return nil, domain.ErrDuplicateTitle
			}
		}
		e.Title = *p.Title
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.Img != nil {
		e.Img = *p.Img
	}
	return cloneEvent(e), nil
}

func (r *memEvents) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.injected("events.Delete"); err != nil {
		return err
	}
	if _, ok := r.db.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(r.db.events, id)
	return nil
}

func (r *memEvents) AddAttendee(_ context.Context, eventID, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.injected("events.AddAttendee"); err != nil {
		return err
	}
	e, ok := r.db.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.Attendees = addToSet(e.Attendees, userID)
	return nil
}

func (r *memEvents) RemoveAttendee(_ context.Context, eventID, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.injected("events.RemoveAttendee"); err != nil {
		return err
	}
	e, ok := r.db.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.Attendees = pull(e.Attendees, userID)
	return nil
}

func (r *memEvents) SetAttendees(_ context.Context, eventID string, userIDs []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e, ok := r.db.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.Attendees = slices.Clone(userIDs)
	return nil
}

// ---------------------------------------------------------------------------
// Attendees
// ---------------------------------------------------------------------------

type memAttendees struct{ db *memDB }

func (r *memAttendees) Create(_ context.Context, a *domain.Attendee) (*domain.Attendee, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.injected("attendees.Create"); err != nil {
		return nil, err
	}
	for _, existing := range r.db.attendees {
		if existing.UserID == a.UserID && existing.EventID == a.EventID {
			return nil, domain.ErrAlreadyRegistered
		}
	}
	c := cloneAttendee(a)
	if c.ID == "" {
		c.ID = r.db.nextID("a")
	}
	c.UserName = ""
	r.db.attendees[c.ID] = c
	return cloneAttendee(c), nil
}

func (r *memAttendees) FindByPair(_ context.Context, eventID, userID string) (*domain.Attendee, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.attendees {
		if a.UserID == userID && a.EventID == eventID {
			return cloneAttendee(a), nil
		}
	}
	return nil, domain.ErrAttendeeNotFound
}

func (r *memAttendees) FindByIDs(_ context.Context, ids []string) ([]*domain.Attendee, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Attendee
	for _, id := range ids {
		if a, ok := r.db.attendees[id]; ok {
			out = append(out, cloneAttendee(a))
		}
	}
	return out, nil
}

func (r *memAttendees) sorted(keep func(*domain.Attendee) bool, newestFirst bool) []*domain.Attendee {
	var out []*domain.Attendee
	for _, a := range r.db.attendees {
		if keep(a) {
			c := cloneAttendee(a)
			if u, ok := r.db.users[a.UserID]; ok {
				c.UserName = u.UserName
			}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *memAttendees) ListByEvent(_ context.Context, eventID string) ([]*domain.Attendee, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.sorted(func(a *domain.Attendee) bool { return a.EventID == eventID }, false), nil
}

func (r *memAttendees) ListByUser(_ context.Context, userID string) ([]*domain.Attendee, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.sorted(func(a *domain.Attendee) bool { return a.UserID == userID }, true), nil
}

func (r *memAttendees) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.injected("attendees.Delete"); err != nil {
		return err
	}
	if _, ok := r.db.attendees[id]; !ok {
		return domain.ErrAttendeeNotFound
	}
	delete(r.db.attendees, id)
	return nil
}

func (r *memAttendees) DeleteByEvent(_ context.Context, eventID string) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var ids []string
	for id, a := range r.db.attendees {
		if a.EventID == eventID {
			ids = append(ids, id)
			delete(r.db.attendees, id)
		}
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Transactor, cache, images
// ---------------------------------------------------------------------------

// memTx rolls back to a snapshot when atomic, mimicking a transaction.
type memTx struct {
	db     *memDB
	atomic bool
}

func (t memTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.atomic {
		return fn(ctx)
	}
	snap := t.db.snapshot()
	if err := fn(ctx); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

func (t memTx) Atomic() bool { return t.atomic }

type memCache struct {
	mu          sync.Mutex
	views       map[string]ports.EventView
	invalidated []string
	getErr      error
}

func newMemCache() *memCache { return &memCache{views: make(map[string]ports.EventView)} }

func (c *memCache) Get(_ context.Context, id string) (*ports.EventView, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.views[id]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (c *memCache) Set(_ context.Context, v *ports.EventView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[v.ID] = *v
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type stubImages struct {
	uploadURL string
	uploadErr error
	uploads   int
	released  []string
}

func (s *stubImages) Upload(_ context.Context, img ports.ImageUpload) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads++
	return s.uploadURL, nil
}

func (s *stubImages) Release(url string) { s.released = append(s.released, url) }

type stubBlobStore struct {
	prefix  string
	putErr  error
	keys    []string
	types   []string
	payload []string
}

func (s *stubBlobStore) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	s.types = append(s.types, contentType)
	s.payload = append(s.payload, string(b))
	return s.prefix + key, nil
}

func (s *stubBlobStore) Delete(context.Context, string) error { return nil }

func (s *stubBlobStore) Owns(url string) bool { return strings.HasPrefix(url, s.prefix) }

type stubCleaner struct {
	accept bool
	urls   []string
}

func (c *stubCleaner) Enqueue(url string) bool {
	c.urls = append(c.urls, url)
	return c.accept
}
