package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventhub/events-api/internal/api/metrics"
	"github.com/eventhub/events-api/internal/core/ports"
)

const compensationTimeout = 10 * time.Second

type undoStep struct {
	name string
	fn   func(ctx context.Context) error
}

// undoStack records how to revert each applied write of a multi-step
// operation. Steps run last-in first-out.
type undoStack struct {
	steps []undoStep
}

func (u *undoStack) push(name string, fn func(ctx context.Context) error) {
	u.steps = append(u.steps, undoStep{name: name, fn: fn})
}

func (u *undoStack) reset() { u.steps = u.steps[:0] }

// run executes every step even when some fail and returns the number of
// failed steps. ctx must not be the cancelled request context.
func (u *undoStack) run(ctx context.Context, log zerolog.Logger) int {
	failed := 0
	for i := len(u.steps) - 1; i >= 0; i-- {
		step := u.steps[i]
		if err := step.fn(ctx); err != nil {
			failed++
			log.Error().Err(err).Str("step", step.name).Msg("compensation step failed")
		}
	}
	return failed
}

// unitOfWork runs fn through tx. On stores without transactions a failed fn
// is followed by its recorded undo steps on a detached, bounded context, so
// a cancelled request still gets cleaned up.
func unitOfWork(
	ctx context.Context,
	tx ports.Transactor,
	op string,
	log zerolog.Logger,
	fn func(ctx context.Context, undo *undoStack) error,
) error {
	undo := &undoStack{}
	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		undo.reset()
		return fn(ctx, undo)
	})
	if err == nil || tx.Atomic() || len(undo.steps) == 0 {
		return err
	}

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	outcome := "ok"
	if failed := undo.run(cctx, log); failed > 0 {
		outcome = "failed"
		log.Error().Err(err).Str("operation", op).Int("failed_steps", failed).
			Msg("compensation incomplete, membership may have drifted")
	} else {
		log.Warn().Err(err).Str("operation", op).Int("steps", len(undo.steps)).Msg("operation compensated")
	}
	metrics.CompensationsTotal.WithLabelValues(op, outcome).Inc()
	return err
}
