// Package seed imports users and events from CSV exports.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/sanitize"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// UserStore is the user persistence the seeder writes to.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// EventStore is the event persistence the seeder writes to.
type EventStore interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	DeleteAll(ctx context.Context) error
}

// Report summarizes one import.
type Report struct {
	Inserted int
	Skipped  int
}

type Seeder struct {
	users    UserStore
	events   EventStore
	hashCost int
	log      zerolog.Logger
	now      func() time.Time
}

func NewSeeder(users UserStore, events EventStore, log zerolog.Logger) *Seeder {
	return &Seeder{users: users, events: events, hashCost: bcrypt.DefaultCost, log: log, now: time.Now}
}

// Users imports a comma separated file with the header
// userName,email,password,rol. Rows whose email already exists are skipped.
func (s *Seeder) Users(ctx context.Context, r io.Reader) (Report, error) {
	var rep Report
	err := readRows(r, ',', func(line int, row map[string]string) error {
		name := sanitize.Text(row["userName"])
		email := strings.ToLower(strings.TrimSpace(row["email"]))
		password := strings.TrimSpace(row["password"])
		if name == "" || email == "" || password == "" || len(password) > maxPasswordBytes {
			s.log.Warn().Int("line", line).Msg("user row incomplete or invalid, skipped")
			rep.Skipped++
			return nil
		}

		role := strings.ToLower(strings.TrimSpace(row["rol"]))
		if !domain.ValidRole(role) {
			role = domain.RoleUser
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
		if err != nil {
			return fmt.Errorf("line %d: hash password: %w", line, err)
		}

		now := s.now().UTC()
		_, err = s.users.Create(ctx, &domain.User{
			UserName:     name,
			Email:        email,
			PasswordHash: string(hash),
			Roles:        []string{role},
			Attendees:    []string{},
			Events:       []string{},
			Favorites:    []string{},
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		switch {
		case errors.Is(err, domain.ErrUserExists):
			s.log.Info().Str("email", email).Msg("user exists, skipped")
			rep.Skipped++
		case err != nil:
			return fmt.Errorf("line %d: %w", line, err)
		default:
			rep.Inserted++
		}
		return nil
	})
	return rep, err
}

// Events replaces every event with the rows of a semicolon separated file
// with the header title;category;image;date;location;description;price;creator.
// Rows with an unknown creator or invalid fields are skipped.
func (s *Seeder) Events(ctx context.Context, r io.Reader) (Report, error) {
	if err := s.events.DeleteAll(ctx); err != nil {
		return Report{}, err
	}
	s.log.Info().Msg("events removed")

	var rep Report
	err := readRows(r, ';', func(line int, row map[string]string) error {
		e, err := s.eventFromRow(ctx, row)
		if err != nil {
			if isSkippable(err) {
				s.log.Warn().Err(err).Int("line", line).Msg("event row skipped")
				rep.Skipped++
				return nil
			}
			return fmt.Errorf("line %d: %w", line, err)
		}

		if _, err := s.events.Create(ctx, e); err != nil {
			if errors.Is(err, domain.ErrDuplicateTitle) {
				s.log.Warn().Str("title", e.Title).Int("line", line).Msg("duplicate title, skipped")
				rep.Skipped++
				return nil
			}
			return fmt.Errorf("line %d: %w", line, err)
		}
		rep.Inserted++
		return nil
	})
	return rep, err
}

func (s *Seeder) eventFromRow(ctx context.Context, row map[string]string) (*domain.Event, error) {
	creatorID := strings.TrimSpace(row["creator"])
	if creatorID == "" {
		return nil, domain.NewValidationError("creator", "creator is empty")
	}
	creator, err := s.users.FindByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	title := sanitize.Text(row["title"])
	if title == "" {
		return nil, domain.NewValidationError("title", "title is empty")
	}
	category, ok := domain.ParseCategory(row["category"])
	if !ok {
		return nil, domain.NewValidationError("category", "Invalid category")
	}
	date, err := domain.ParseEventDate(row["date"])
	if err != nil {
		return nil, err
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(row["price"]), 64)
	if err != nil || price < 0 {
		return nil, domain.NewValidationError("price", "price must be a non-negative number")
	}

	now := s.now().UTC()
	return &domain.Event{
		Title:       title,
		Category:    category,
		Date:        date,
		Location:    sanitize.Text(row["location"]),
		Description: sanitize.HTML(row["description"]),
		Price:       price,
		CreatorID:   creator.ID,
		Attendees:   []string{},
		Img:         strings.TrimSpace(row["image"]),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func isSkippable(err error) bool {
	return domain.IsValidation(err) ||
		errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrInvalidID)
}

// readRows calls fn for each data row keyed by the trimmed header names.
// line is the 1-based line number of the row in the file.
func readRows(r io.Reader, sep rune, fn func(line int, row map[string]string) error) error {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		if err := fn(line, row); err != nil {
			return err
		}
	}
}
