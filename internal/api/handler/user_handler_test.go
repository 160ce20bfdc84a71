package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eventhub/events-api/internal/api/middleware"
	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/core/ports"
)

type stubUserService struct {
	updateEmailFn func(ctx context.Context, targetID string, caller *domain.User, email string) (*domain.User, error)
	toggleFn      func(ctx context.Context, caller *domain.User, eventID string) (bool, []string, error)
}

func (s *stubUserService) List(ctx context.Context) ([]ports.UserProfile, error) {
	return []ports.UserProfile{{
		ID:        "u1",
		UserName:  "alice",
		Favorites: []ports.FavoriteEvent{{ID: "e1", Title: "Go Conf"}},
		Attendances: []ports.AttendanceView{
			{ID: "a1", EventID: "e1", EventTitle: "Go Conf", EventDate: time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)},
		},
	}}, nil
}

func (s *stubUserService) Get(ctx context.Context, id string) (*ports.UserProfile, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) UpdateEmail(ctx context.Context, targetID string, caller *domain.User, email string) (*domain.User, error) {
	return s.updateEmailFn(ctx, targetID, caller, email)
}

func (s *stubUserService) Favorites(ctx context.Context, caller *domain.User) ([]ports.FavoriteEvent, error) {
	return nil, nil
}

func (s *stubUserService) ToggleFavorite(ctx context.Context, caller *domain.User, eventID string) (bool, []string, error) {
	return s.toggleFn(ctx, caller, eventID)
}

func TestUserHandler_List_PopulatesProfiles(t *testing.T) {
	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users", nil), rec)

	if err := NewUserHandler(&stubUserService{}).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{`"favorites":[{"_id":"e1","title":"Go Conf"`, `"eventId":{"_id":"e1","title":"Go Conf"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users/x", nil), httptest.NewRecorder())

	if err := NewUserHandler(&stubUserService{}).Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_UpdateEmail_DefaultsToCaller(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		updateEmailFn: func(ctx context.Context, targetID string, caller *domain.User, email string) (*domain.User, error) {
			if targetID != "u1" || email != "new@example.com" {
				t.Fatalf("unexpected args: %s %s", targetID, email)
			}
			return &domain.User{ID: "u1", Email: email}, nil
		},
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/users", `{"email":"new@example.com"}`), rec)
	c.Set(middleware.ContextUser, testUser)

	if err := NewUserHandler(stub).UpdateEmail(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if decode(t, rec)["email"] != "new@example.com" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUserHandler_UpdateEmail_OtherUser(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		updateEmailFn: func(ctx context.Context, targetID string, caller *domain.User, email string) (*domain.User, error) {
			if targetID != "u9" {
				t.Fatalf("expected path id, got %s", targetID)
			}
			return nil, domain.ErrForbidden
		},
	}
	c := e.NewContext(jsonRequest(http.MethodPut, "/users/u9", `{"email":"new@example.com"}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("u9")
	c.Set(middleware.ContextUser, testUser)

	if err := NewUserHandler(stub).UpdateEmail(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserHandler_UpdateEmail_Invalid(t *testing.T) {
	e := newTestEcho()
	c := e.NewContext(jsonRequest(http.MethodPut, "/users", `{"email":"nope"}`), httptest.NewRecorder())
	c.Set(middleware.ContextUser, testUser)

	if err := NewUserHandler(&stubUserService{}).UpdateEmail(c); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserHandler_ToggleFavorite(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		toggleFn: func(ctx context.Context, caller *domain.User, eventID string) (bool, []string, error) {
			return true, []string{eventID}, nil
		},
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPatch, "/users/favorites/e1", nil), rec)
	c.SetParamNames("eventId")
	c.SetParamValues("e1")
	c.Set(middleware.ContextUser, testUser)

	if err := NewUserHandler(stub).ToggleFavorite(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["message"] != "Event added to favorites" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestUserHandler_Favorites_RequiresAuth(t *testing.T) {
	e := newTestEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users/favorites", nil), httptest.NewRecorder())

	if err := NewUserHandler(&stubUserService{}).Favorites(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
