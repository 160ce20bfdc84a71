package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/eventhub/events-api/internal/api/middleware"
	"github.com/eventhub/events-api/internal/core/domain"
)

// currentUser returns the account injected by the Auth middleware. Routes
// mounted without Auth get ErrUnauthorized.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.ContextUser).(*domain.User)
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
