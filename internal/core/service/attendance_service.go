package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventhub/events-api/internal/api/metrics"
	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/core/ports"
)

const defaultOperationTimeout = 15 * time.Second

// AttendanceService is the attendance registry. Every mutation touches the
// attendee record, the event's attendee set and the user's membership sets
// as one unit of work.
type AttendanceService struct {
	attendees ports.AttendeeRepository
	events    ports.EventRepository
	users     ports.UserRepository
	tx        ports.Transactor
	cache     EventCache
	timeout   time.Duration
	log       zerolog.Logger
}

// NewAttendanceService wires the registry. cache may be nil.
func NewAttendanceService(
	attendees ports.AttendeeRepository,
	events ports.EventRepository,
	users ports.UserRepository,
	tx ports.Transactor,
	cache EventCache,
	timeout time.Duration,
	log zerolog.Logger,
) *AttendanceService {
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return &AttendanceService{
		attendees: attendees,
		events:    events,
		users:     users,
		tx:        tx,
		cache:     cache,
		timeout:   timeout,
		log:       log,
	}
}

// ListForEvent returns the event's attendees oldest first.
func (s *AttendanceService) ListForEvent(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	list, err := s.attendees.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return list, nil
}

// ListForUser returns the user's attendee records newest first. The user is
// not required to exist.
func (s *AttendanceService) ListForUser(ctx context.Context, userID string) ([]*domain.Attendee, error) {
	list, err := s.attendees.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}
	return list, nil
}

// Register signs userID (the caller when empty) up for the event.
func (s *AttendanceService) Register(ctx context.Context, eventID, userID string, caller *domain.User) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	a, err := s.register(ctx, eventID, userID, caller)
	metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, eventID)
	s.log.Info().Str("event_id", eventID).Str("user_id", a.UserID).Str("attendee_id", a.ID).Msg("attendee registered")
	return a, nil
}

func (s *AttendanceService) register(ctx context.Context, eventID, userID string, caller *domain.User) (*domain.Attendee, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	if userID == "" {
		userID = caller.ID
	}
	if userID != caller.ID && !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	var created *domain.Attendee
	err := unitOfWork(ctx, s.tx, "register", s.log, func(ctx context.Context, undo *undoStack) error {
		now := time.Now().UTC()
		a, err := s.attendees.Create(ctx, &domain.Attendee{
			UserID:    userID,
			EventID:   eventID,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		undo.push("delete attendee", func(ctx context.Context) error {
			return s.attendees.Delete(ctx, a.ID)
		})

		if err := s.events.AddAttendee(ctx, eventID, userID); err != nil {
			return err
		}
		undo.push("remove event attendee", func(ctx context.Context) error {
			return s.events.RemoveAttendee(ctx, eventID, userID)
		})

		if err := s.users.AddAttendance(ctx, userID, eventID, a.ID); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Cancel drops the caller's registration and returns the event's remaining user ids.
func (s *AttendanceService) Cancel(ctx context.Context, eventID string, caller *domain.User) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	remaining, err := s.cancel(ctx, eventID, caller)
	metrics.CancellationsTotal.WithLabelValues(cancellationResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, eventID)
	s.log.Info().Str("event_id", eventID).Str("user_id", caller.ID).Msg("attendance cancelled")
	return remaining, nil
}

func (s *AttendanceService) cancel(ctx context.Context, eventID string, caller *domain.User) ([]string, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	a, err := s.attendees.FindByPair(ctx, eventID, caller.ID)
	if err != nil {
		return nil, err
	}

	err = unitOfWork(ctx, s.tx, "cancel", s.log, func(ctx context.Context, undo *undoStack) error {
		if err := s.attendees.Delete(ctx, a.ID); err != nil {
			return err
		}
		undo.push("restore attendee", func(ctx context.Context) error {
			_, err := s.attendees.Create(ctx, a)
			return err
		})

		// The event may have been deleted concurrently.
		err := s.events.RemoveAttendee(ctx, eventID, caller.ID)
		switch {
		case err == nil:
			undo.push("restore event attendee", func(ctx context.Context) error {
				return s.events.AddAttendee(ctx, eventID, caller.ID)
			})
		case !errors.Is(err, domain.ErrEventNotFound):
			return err
		}

		return s.users.RemoveAttendance(ctx, caller.ID, eventID, a.ID)
	})
	if err != nil {
		return nil, err
	}

	e, err := s.events.FindByID(ctx, eventID)
	if errors.Is(err, domain.ErrEventNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cancel: reload event: %w", err)
	}
	if e.Attendees == nil {
		return []string{}, nil
	}
	return e.Attendees, nil
}

// Reconcile rebuilds the event's attendee set from its attendee records
// and restores missing references on the users. It repairs drift left by
// failed compensations on stores without transactions.
func (s *AttendanceService) Reconcile(ctx context.Context, eventID string) (*ports.ReconcileResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	e, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	records, err := s.attendees.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("reconcile: list attendees: %w", err)
	}

	res := &ports.ReconcileResult{EventID: eventID, Attendees: len(records)}

	want := make([]string, 0, len(records))
	for _, a := range records {
		if !slices.Contains(want, a.UserID) {
			want = append(want, a.UserID)
		}
	}
	var stale []string
	for _, id := range want {
		if !slices.Contains(e.Attendees, id) {
			res.EventLinksAdded++
		}
	}
	for _, id := range e.Attendees {
		if !slices.Contains(want, id) {
			res.EventLinksRemoved++
			stale = append(stale, id)
		}
	}
	if res.EventLinksAdded > 0 || res.EventLinksRemoved > 0 {
		if err := s.events.SetAttendees(ctx, eventID, want); err != nil {
			return nil, fmt.Errorf("reconcile: set attendees: %w", err)
		}
	}

	users, err := s.users.FindByIDs(ctx, want)
	if err != nil {
		return nil, fmt.Errorf("reconcile: load users: %w", err)
	}
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, a := range records {
		u, ok := byID[a.UserID]
		if !ok {
			s.log.Warn().Str("event_id", eventID).Str("user_id", a.UserID).Msg("attendee record references missing user")
			continue
		}
		if slices.Contains(u.Events, eventID) && slices.Contains(u.Attendees, a.ID) {
			continue
		}
		if err := s.users.AddAttendance(ctx, a.UserID, eventID, a.ID); err != nil {
			return nil, fmt.Errorf("reconcile: restore user links: %w", err)
		}
		res.UserLinksAdded++
	}
	for _, userID := range stale {
		err := s.users.RemoveAttendance(ctx, userID, eventID, "")
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("reconcile: drop user links: %w", err)
		}
		res.UserLinksRemoved++
	}

	metrics.ReconciledLinksTotal.WithLabelValues("event").Add(float64(res.EventLinksAdded + res.EventLinksRemoved))
	metrics.ReconciledLinksTotal.WithLabelValues("user").Add(float64(res.UserLinksAdded + res.UserLinksRemoved))
	s.invalidate(ctx, eventID)

	s.log.Info().
		Str("event_id", eventID).
		Int("event_links_added", res.EventLinksAdded).
		Int("event_links_removed", res.EventLinksRemoved).
		Int("user_links_added", res.UserLinksAdded).
		Int("user_links_removed", res.UserLinksRemoved).
		Msg("attendance reconciled")
	return res, nil
}

func (s *AttendanceService) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("event cache invalidation failed")
	}
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "conflict"
	case errors.Is(err, domain.ErrEventNotFound), errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthorized):
		return "forbidden"
	default:
		return "error"
	}
}

func cancellationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrAttendeeNotFound):
		return "not_found"
	default:
		return "error"
	}
}
