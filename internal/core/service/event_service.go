package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eventhub/events-api/internal/api/metrics"
	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/core/ports"
	"github.com/eventhub/events-api/internal/sanitize"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
	maxPage      = 1_000_000
)

// EventCache abstracts the read-through store of resolved events (Redis).
// Implementations report a miss as (nil, false, nil).
type EventCache interface {
	Get(ctx context.Context, id string) (*ports.EventView, bool, error)
	Set(ctx context.Context, view *ports.EventView) error
	Invalidate(ctx context.Context, id string) error
}

type eventService struct {
	events    ports.EventRepository
	users     ports.UserRepository
	attendees ports.AttendeeRepository
	tx        ports.Transactor
	cache     EventCache
	images    ports.ImageService
	log       zerolog.Logger
}

// NewEventService returns an EventService implementation. cache may be nil.
func NewEventService(
	events ports.EventRepository,
	users ports.UserRepository,
	attendees ports.AttendeeRepository,
	tx ports.Transactor,
	cache EventCache,
	images ports.ImageService,
	log zerolog.Logger,
) ports.EventService {
	return &eventService{
		events:    events,
		users:     users,
		attendees: attendees,
		tx:        tx,
		cache:     cache,
		images:    images,
		log:       log,
	}
}

func (s *eventService) List(ctx context.Context, in ports.ListEventsInput) (*ports.EventList, error) {
	filter, err := parseListFilter(in)
	if err != nil {
		return nil, err
	}

	var (
		total int64
		items []*domain.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.events.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.events.List(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	views, err := s.resolve(ctx, items)
	if err != nil {
		return nil, err
	}

	return &ports.EventList{
		Items:      views,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*ports.EventView, error) {
	if s.cache != nil {
		view, ok, err := s.cache.Get(ctx, id)
		switch {
		case err != nil:
			metrics.EventCacheTotal.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Str("event_id", id).Msg("event cache read failed")
		case ok:
			metrics.EventCacheTotal.WithLabelValues("hit").Inc()
			return view, nil
		default:
			metrics.EventCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	e, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.resolve(ctx, []*domain.Event{e})
	if err != nil {
		return nil, err
	}
	view := &views[0]

	if s.cache != nil {
		if err := s.cache.Set(ctx, view); err != nil {
			s.log.Warn().Err(err).Str("event_id", id).Msg("event cache write failed")
		}
	}
	return view, nil
}

func (s *eventService) SearchByTitle(ctx context.Context, term string) ([]ports.EventView, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.NewValidationError("title", "title is required")
	}
	items, err := s.events.SearchTitle(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search by title: %w", err)
	}
	return s.resolve(ctx, items)
}

func (s *eventService) SearchByDate(ctx context.Context, date string) ([]ports.EventView, error) {
	day, err := domain.ParseEventDate(date)
	if err != nil {
		return nil, err
	}
	from, to := domain.DayBounds(day)
	items, err := s.events.FindByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("search by date: %w", err)
	}
	return s.resolve(ctx, items)
}

func (s *eventService) Create(ctx context.Context, in ports.CreateEventInput) (*ports.EventView, error) {
	if in.Caller == nil {
		return nil, domain.ErrUnauthorized
	}

	title := sanitize.Text(in.Title)
	location := sanitize.Text(in.Location)
	description := sanitize.HTML(in.Description)
	switch {
	case title == "":
		return nil, domain.NewValidationError("title", "title is required")
	case location == "":
		return nil, domain.NewValidationError("location", "location is required")
	case description == "":
		return nil, domain.NewValidationError("description", "description is required")
	case strings.TrimSpace(in.Date) == "":
		return nil, domain.NewValidationError("date", "date is required")
	}
	category, err := parseCategory(in.Category)
	if err != nil {
		return nil, err
	}
	date, err := domain.ParseEventDate(in.Date)
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	if err := s.ensureTitleFree(ctx, title, ""); err != nil {
		return nil, err
	}

	img := strings.TrimSpace(in.ImgURL)
	uploaded := false
	if in.Image != nil {
		if img, err = s.images.Upload(ctx, *in.Image); err != nil {
			return nil, err
		}
		uploaded = true
	}

	now := time.Now().UTC()
	created, err := s.events.Create(ctx, &domain.Event{
		Title:       title,
		Category:    category,
		Date:        date,
		Location:    location,
		Description: description,
		Price:       price,
		CreatorID:   in.Caller.ID,
		Attendees:   []string{},
		Img:         img,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if uploaded {
			s.images.Release(img)
		}
		return nil, err
	}

	metrics.EventsCreatedTotal.WithLabelValues(string(created.Category)).Inc()
	s.log.Info().Str("event_id", created.ID).Str("creator_id", in.Caller.ID).Msg("event created")

	view := toEventView(created, map[string]string{in.Caller.ID: in.Caller.UserName})
	return &view, nil
}

func (s *eventService) Update(ctx context.Context, in ports.UpdateEventInput) (*ports.EventView, error) {
	if in.Caller == nil {
		return nil, domain.ErrUnauthorized
	}
	current, err := s.events.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if !current.CanBeManagedBy(in.Caller) {
		return nil, domain.ErrForbidden
	}

	patch, err := s.buildPatch(ctx, current, in)
	if err != nil {
		return nil, err
	}

	uploaded := ""
	if in.Image != nil {
		if uploaded, err = s.images.Upload(ctx, *in.Image); err != nil {
			return nil, err
		}
		patch.Img = &uploaded
	}

	if patch.IsEmpty() {
		return s.view(ctx, current)
	}

	updated, err := s.events.Update(ctx, in.ID, patch)
	if err != nil {
		if uploaded != "" {
			s.images.Release(uploaded)
		}
		return nil, err
	}

	if patch.Img != nil && current.Img != "" && current.Img != updated.Img {
		s.images.Release(current.Img)
	}
	s.invalidate(ctx, in.ID)
	s.log.Info().Str("event_id", in.ID).Str("user_id", in.Caller.ID).Msg("event updated")

	return s.view(ctx, updated)
}

func (s *eventService) buildPatch(ctx context.Context, current *domain.Event, in ports.UpdateEventInput) (ports.EventPatch, error) {
	var patch ports.EventPatch

	if in.Title != nil {
		title := sanitize.Text(*in.Title)
		if title == "" {
			return patch, domain.NewValidationError("title", "title cannot be empty")
		}
		if !strings.EqualFold(title, current.Title) {
			if err := s.ensureTitleFree(ctx, title, current.ID); err != nil {
				return patch, err
			}
		}
		patch.Title = &title
	}
	if in.Category != nil {
		category, err := parseCategory(*in.Category)
		if err != nil {
			return patch, err
		}
		patch.Category = &category
	}
	if in.Date != nil {
		date, err := domain.ParseEventDate(*in.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &date
	}
	if in.Location != nil {
		location := sanitize.Text(*in.Location)
		if location == "" {
			return patch, domain.NewValidationError("location", "location cannot be empty")
		}
		patch.Location = &location
	}
	if in.Description != nil {
		description := sanitize.HTML(*in.Description)
		if description == "" {
			return patch, domain.NewValidationError("description", "description cannot be empty")
		}
		patch.Description = &description
	}
	if in.Price != nil {
		price, err := parsePrice(*in.Price)
		if err != nil {
			return patch, err
		}
		patch.Price = &price
	}
	if in.ImgURL != nil && in.Image == nil {
		img := strings.TrimSpace(*in.ImgURL)
		patch.Img = &img
	}
	return patch, nil
}

// Delete removes the event together with its attendee records and every
// reference users hold to either.
func (s *eventService) Delete(ctx context.Context, id string, caller *domain.User) error {
	if caller == nil {
		return domain.ErrUnauthorized
	}
	e, err := s.events.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !e.CanBeManagedBy(caller) {
		return domain.ErrForbidden
	}

	err = unitOfWork(ctx, s.tx, "delete_event", s.log, func(ctx context.Context, undo *undoStack) error {
		records, err := s.attendees.ListByEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("list attendees: %w", err)
		}

		// The event goes first so a concurrent registration fails its
		// AddAttendee step instead of leaving an orphan record.
		if err := s.events.Delete(ctx, id); err != nil {
			return err
		}
		undo.push("restore event", func(ctx context.Context) error {
			_, err := s.events.Create(ctx, e)
			return err
		})

		undo.push("restore attendees", func(ctx context.Context) error {
			for _, a := range records {
				if _, err := s.attendees.Create(ctx, a); err != nil && !errors.Is(err, domain.ErrAlreadyRegistered) {
					return err
				}
			}
			return nil
		})
		attendeeIDs, err := s.attendees.DeleteByEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("delete attendees: %w", err)
		}

		undo.push("restore user links", func(ctx context.Context) error {
			for _, a := range records {
				err := s.users.AddAttendance(ctx, a.UserID, id, a.ID)
				if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
					return err
				}
			}
			return nil
		})
		if err := s.users.PullEventRefs(ctx, id, attendeeIDs); err != nil {
			return fmt.Errorf("pull user refs: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	if e.Img != "" {
		s.images.Release(e.Img)
	}
	s.invalidate(ctx, id)
	s.log.Info().Str("event_id", id).Str("user_id", caller.ID).Msg("event deleted")
	return nil
}

func (s *eventService) ensureTitleFree(ctx context.Context, title, selfID string) error {
	existing, err := s.events.FindByTitle(ctx, title)
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check title: %w", err)
	case existing.ID != selfID:
		return domain.ErrDuplicateTitle
	}
	return nil
}

func (s *eventService) view(ctx context.Context, e *domain.Event) (*ports.EventView, error) {
	views, err := s.resolve(ctx, []*domain.Event{e})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// resolve loads the creators and attendees of events in one batch.
func (s *eventService) resolve(ctx context.Context, events []*domain.Event) ([]ports.EventView, error) {
	names, err := userNames(ctx, s.users, events)
	if err != nil {
		return nil, err
	}
	views := make([]ports.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, toEventView(e, names))
	}
	return views, nil
}

func (s *eventService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("event_id", id).Msg("event cache invalidation failed")
	}
}

func userNames(ctx context.Context, users ports.UserRepository, events []*domain.Event) (map[string]string, error) {
	var ids []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, ok := seen[id]; ok || id == "" {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, e := range events {
		add(e.CreatorID)
		for _, id := range e.Attendees {
			add(id)
		}
	}

	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	for _, u := range found {
		names[u.ID] = u.UserName
	}
	return names, nil
}

func toEventView(e *domain.Event, names map[string]string) ports.EventView {
	attendees := make([]ports.UserRef, 0, len(e.Attendees))
	for _, id := range e.Attendees {
		attendees = append(attendees, ports.UserRef{ID: id, UserName: names[id]})
	}
	return ports.EventView{
		ID:          e.ID,
		Title:       e.Title,
		Category:    e.Category,
		Date:        e.Date,
		Location:    e.Location,
		Description: e.Description,
		Price:       e.Price,
		Creator:     ports.UserRef{ID: e.CreatorID, UserName: names[e.CreatorID]},
		Attendees:   attendees,
		Img:         e.Img,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func parseListFilter(in ports.ListEventsInput) (ports.ListEventsFilter, error) {
	f := ports.ListEventsFilter{
		Title:    strings.TrimSpace(in.Title),
		Location: strings.TrimSpace(in.Location),
		Page:     min(positiveOr(in.Page, defaultPage), maxPage),
		Limit:    min(positiveOr(in.Limit, defaultLimit), maxLimit),
	}
	if c := strings.TrimSpace(in.Category); c != "" {
		if canonical, ok := domain.ParseCategory(c); ok {
			f.Category = string(canonical)
		} else {
			f.Category = c
		}
	}

	var err error
	if f.MinPrice, err = optionalFloat("minPrice", in.MinPrice); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optionalFloat("maxPrice", in.MaxPrice); err != nil {
		return f, err
	}
	if s := strings.TrimSpace(in.MinDate); s != "" {
		if f.MinDate, err = domain.ParseEventDate(s); err != nil {
			return f, domain.NewValidationError("minDate", "minDate must be a valid date")
		}
	}
	if s := strings.TrimSpace(in.MaxDate); s != "" {
		if f.MaxDate, err = domain.ParseEventDate(s); err != nil {
			return f, domain.NewValidationError("maxDate", "maxDate must be a valid date")
		}
		// A bare calendar date includes the whole day.
		if len(s) == len(time.DateOnly) {
			_, end := domain.DayBounds(f.MaxDate)
			f.MaxDate = end.Add(-time.Millisecond)
		}
	}
	return f, nil
}

func positiveOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func optionalFloat(field, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domain.NewValidationError(field, field+" must be a number")
	}
	return &v, nil
}

func parseCategory(s string) (domain.Category, error) {
	if strings.TrimSpace(s) == "" {
		return "", domain.NewValidationError("category", "category is required")
	}
	c, ok := domain.ParseCategory(s)
	if !ok {
		names := make([]string, len(domain.Categories))
		for i, c := range domain.Categories {
			names[i] = string(c)
		}
		return "", domain.NewValidationError("category", "category must be one of: "+strings.Join(names, ", "))
	}
	return c, nil
}

func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, domain.NewValidationError("price", "price is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.NewValidationError("price", "price must be a number")
	}
	if v < 0 {
		return 0, domain.NewValidationError("price", "price must be greater than or equal to 0")
	}
	return v, nil
}
