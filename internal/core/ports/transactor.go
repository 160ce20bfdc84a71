package ports

import "context"

// Transactor runs fn as one unit of work against the persistence layer.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Atomic reports whether WithTransaction really rolls back on error.
	// When false, callers must compensate partial writes themselves.
	Atomic() bool
}
