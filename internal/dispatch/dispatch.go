package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of background work.
type Task func(ctx context.Context) error

// Dispatcher runs fire-and-forget tasks in their own goroutines. Callers
// never wait on a task; failures are only visible in the log. There is no
// limit on the number of tasks in flight.
type Dispatcher struct {
	base   context.Context
	group  errgroup.Group
	logger zerolog.Logger
}

// New creates a Dispatcher. Task contexts inherit values from base but are
// never cancelled by it.
func New(base context.Context) *Dispatcher {
	return &Dispatcher{
		base:   context.WithoutCancel(base),
		logger: log.Logger.With().Str("component", "dispatch").Logger(),
	}
}

// Go starts task in the background and returns the id attached to its log
// lines as event_id.
func (d *Dispatcher) Go(name string, task Task) string {
	id := uuid.NewString()
	logger := d.logger.With().Str("event_id", id).Str("task", name).Logger()
	ctx := logger.WithContext(d.base)

	d.group.Go(func() (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
			if err != nil {
				logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("task failed")
				err = nil
				return
			}
			logger.Debug().Dur("elapsed", time.Since(start)).Msg("task done")
		}()
		return task(ctx)
	})
	return id
}

// Wait blocks until every started task has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.group.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}
