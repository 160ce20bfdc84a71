package ports

import (
	"context"

	"github.com/eventhub/events-api/internal/core/domain"
)

type AuthService interface {
	// Register creates an account and returns it with a signed credential.
	Register(ctx context.Context, userName, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
