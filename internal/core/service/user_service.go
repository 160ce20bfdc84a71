package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/core/ports"
)

type UserService struct {
	users     ports.UserRepository
	events    ports.EventRepository
	attendees ports.AttendeeRepository
	log       zerolog.Logger
}

func NewUserService(users ports.UserRepository, events ports.EventRepository, attendees ports.AttendeeRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, events: events, attendees: attendees, log: log}
}

func (s *UserService) List(ctx context.Context) ([]ports.UserProfile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return s.profiles(ctx, users)
}

func (s *UserService) Get(ctx context.Context, id string) (*ports.UserProfile, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles(ctx, []*domain.User{u})
	if err != nil {
		return nil, err
	}
	return &profiles[0], nil
}

// UpdateEmail lets a user change their own email only.
func (s *UserService) UpdateEmail(ctx context.Context, targetID string, caller *domain.User, email string) (*domain.User, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if targetID == "" {
		targetID = caller.ID
	}
	if targetID != caller.ID {
		return nil, domain.ErrForbidden
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}

	u, err := s.users.UpdateEmail(ctx, targetID, email)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", targetID).Msg("user email updated")
	return u, nil
}

func (s *UserService) Favorites(ctx context.Context, caller *domain.User) ([]ports.FavoriteEvent, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	u, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	events, err := s.eventsByID(ctx, u.Favorites)
	if err != nil {
		return nil, err
	}
	return favoriteViews(u.Favorites, events), nil
}

// ToggleFavorite adds the event to the caller's favorites or removes it
// when already present. Only existing events can be added.
func (s *UserService) ToggleFavorite(ctx context.Context, caller *domain.User, eventID string) (bool, []string, error) {
	if caller == nil {
		return false, nil, domain.ErrUnauthorized
	}
	u, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return false, nil, err
	}
	if !slices.Contains(u.Favorites, eventID) {
		if _, err := s.events.FindByID(ctx, eventID); err != nil {
			return false, nil, err
		}
	}

	added, favorites, err := s.users.ToggleFavorite(ctx, caller.ID, eventID)
	if err != nil {
		return false, nil, fmt.Errorf("toggle favorite: %w", err)
	}
	if favorites == nil {
		favorites = []string{}
	}
	return added, favorites, nil
}

// profiles populates favorites and attendances for a batch of users with
// a fixed number of queries.
func (s *UserService) profiles(ctx context.Context, users []*domain.User) ([]ports.UserProfile, error) {
	var favoriteIDs, attendeeIDs []string
	for _, u := range users {
		favoriteIDs = append(favoriteIDs, u.Favorites...)
		attendeeIDs = append(attendeeIDs, u.Attendees...)
	}

	var (
		favorites map[string]*domain.Event
		records   []*domain.Attendee
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		favorites, err = s.eventsByID(gctx, favoriteIDs)
		return err
	})
	g.Go(func() error {
		if len(attendeeIDs) == 0 {
			return nil
		}
		var err error
		records, err = s.attendees.FindByIDs(gctx, compact(attendeeIDs))
		if err != nil {
			return fmt.Errorf("load attendances: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byAttendee := make(map[string]*domain.Attendee, len(records))
	var missing []string
	for _, a := range records {
		byAttendee[a.ID] = a
		if _, ok := favorites[a.EventID]; !ok {
			missing = append(missing, a.EventID)
		}
	}
	attended, err := s.eventsByID(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, e := range favorites {
		attended[id] = e
	}

	out := make([]ports.UserProfile, 0, len(users))
	for _, u := range users {
		p := ports.UserProfile{
			ID:          u.ID,
			UserName:    u.UserName,
			Email:       u.Email,
			Roles:       u.Roles,
			Favorites:   favoriteViews(u.Favorites, favorites),
			Attendances: []ports.AttendanceView{},
			CreatedAt:   u.CreatedAt,
			UpdatedAt:   u.UpdatedAt,
		}
		for _, id := range u.Attendees {
			a, ok := byAttendee[id]
			if !ok {
				continue
			}
			v := ports.AttendanceView{ID: a.ID, EventID: a.EventID, CreatedAt: a.CreatedAt}
			if e, ok := attended[a.EventID]; ok {
				v.EventTitle = e.Title
				v.EventDate = e.Date
			}
			p.Attendances = append(p.Attendances, v)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *UserService) eventsByID(ctx context.Context, ids []string) (map[string]*domain.Event, error) {
	out := make(map[string]*domain.Event)
	if len(ids) == 0 {
		return out, nil
	}
	events, err := s.events.FindByIDs(ctx, compact(ids))
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	for _, e := range events {
		out[e.ID] = e
	}
	return out, nil
}

// favoriteViews keeps the user's favorite order and skips deleted events.
func favoriteViews(ids []string, events map[string]*domain.Event) []ports.FavoriteEvent {
	out := make([]ports.FavoriteEvent, 0, len(ids))
	for _, id := range ids {
		e, ok := events[id]
		if !ok {
			continue
		}
		out = append(out, ports.FavoriteEvent{
			ID:       e.ID,
			Title:    e.Title,
			Date:     e.Date,
			Img:      e.Img,
			Location: e.Location,
		})
	}
	return out
}

// compact returns ids without duplicates, keeping first occurrences.
func compact(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
