package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventhub/events-api/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}  profileResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	profiles, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  profileResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	profile, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(*profile))
}

// UpdateEmail handles PUT /users and PUT /users/:id. Users may only change
// their own email.
//
// @Summary      Update own email
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              false  "User id (must be the caller)"
// @Param        body  body      updateEmailRequest  true   "New email"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) UpdateEmail(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	target := c.Param("id")
	if target == "" {
		target = caller.ID
	}

	user, err := h.service.UpdateEmail(c.Request().Context(), target, caller, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Favorites handles GET /users/favorites.
//
// @Summary      List own favorite events
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  favoritesResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/favorites [get]
func (h *UserHandler) Favorites(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	favs, err := h.service.Favorites(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, favoritesResponse{Favorites: toFavoriteResponses(favs)})
}

// ToggleFavorite handles PATCH /users/favorites/:eventId.
//
// @Summary      Add or remove a favorite event
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        eventId  path      string  true  "Event id"
// @Success      200      {object}  toggleFavoriteResponse
// @Failure      404      {object}  errorResponse
// @Router       /users/favorites/{eventId} [patch]
func (h *UserHandler) ToggleFavorite(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	added, favorites, err := h.service.ToggleFavorite(c.Request().Context(), caller, c.Param("eventId"))
	if err != nil {
		return err
	}

	msg := "Event removed from favorites"
	if added {
		msg = "Event added to favorites"
	}
	return c.JSON(http.StatusOK, toggleFavoriteResponse{Message: msg, Favorites: orEmpty(favorites)})
}
