package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/events-api/internal/core/domain"
)

func newUserSvc(db *memDB) *UserService {
	return NewUserService(&memUsers{db}, &memEvents{db}, &memAttendees{db}, zerolog.Nop())
}

func TestUserService_Get_PopulatesProfile(t *testing.T) {
	db := newMemDB()
	owner := db.seedUser("owner")
	alice := db.seedUser("alice")
	jazz := db.seedEvent("Jazz Night", owner)
	rock := db.seedEvent("Rock Night", owner)

	registry, _ := newRegistry(db, true)
	_, err := registry.Register(context.Background(), rock.ID, "", alice)
	require.NoError(t, err)
	db.mu.Lock()
	db.users[alice.ID].Favorites = []string{jazz.ID, "deleted-event"}
	db.mu.Unlock()

	p, err := newUserSvc(db).Get(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.UserName)
	require.Len(t, p.Favorites, 1)
	assert.Equal(t, "Jazz Night", p.Favorites[0].Title)
	require.Len(t, p.Attendances, 1)
	assert.Equal(t, rock.ID, p.Attendances[0].EventID)
	assert.Equal(t, "Rock Night", p.Attendances[0].EventTitle)

	_, err = newUserSvc(db).Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_List(t *testing.T) {
	db := newMemDB()
	db.seedUser("alice")
	db.seedUser("bob")

	list, err := newUserSvc(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, p := range list {
		assert.NotNil(t, p.Favorites)
		assert.NotNil(t, p.Attendances)
	}

	list, err = newUserSvc(newMemDB()).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUserService_UpdateEmail(t *testing.T) {
	db := newMemDB()
	alice := db.seedUser("alice")
	bob := db.seedUser("bob")
	svc := newUserSvc(db)

	u, err := svc.UpdateEmail(context.Background(), "", alice, " New@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)

	_, err = svc.UpdateEmail(context.Background(), bob.ID, alice, "x@example.com")
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.UpdateEmail(context.Background(), alice.ID, alice, bob.Email)
	require.ErrorIs(t, err, domain.ErrUserExists)

	_, err = svc.UpdateEmail(context.Background(), alice.ID, alice, "")
	assert.True(t, domain.IsValidation(err))
}

func TestUserService_ToggleFavorite(t *testing.T) {
	db := newMemDB()
	owner := db.seedUser("owner")
	alice := db.seedUser("alice")
	e := db.seedEvent("Jazz Night", owner)
	svc := newUserSvc(db)

	added, favs, err := svc.ToggleFavorite(context.Background(), alice, e.ID)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{e.ID}, favs)

	got, err := svc.Favorites(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Jazz Night", got[0].Title)

	added, favs, err = svc.ToggleFavorite(context.Background(), alice, e.ID)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, favs)

	_, _, err = svc.ToggleFavorite(context.Background(), alice, "missing")
	require.ErrorIs(t, err, domain.ErrEventNotFound)

	_, _, err = svc.ToggleFavorite(context.Background(), nil, e.ID)
	require.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestUserService_ToggleFavorite_RemovesDeletedEvent(t *testing.T) {
	db := newMemDB()
	alice := db.seedUser("alice")
	db.mu.Lock()
	db.users[alice.ID].Favorites = []string{"gone"}
	db.mu.Unlock()

	added, favs, err := newUserSvc(db).ToggleFavorite(context.Background(), alice, "gone")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, favs)
}
