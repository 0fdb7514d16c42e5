package serverapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"relay-graphql/internal/logging"
)

// cleanupStack releases resources in reverse order of acquisition.
type cleanupStack []cleanupStep

type cleanupStep struct {
	name    string
	release func(context.Context) error
}

func (s *cleanupStack) push(name string, release func(context.Context) error) {
	*s = append(*s, cleanupStep{name: name, release: release})
}

// run empties the stack. A failing step does not stop the ones below it.
func (s *cleanupStack) run(ctx context.Context, logger *logging.Logger) error {
	steps := *s
	*s = nil

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.release(ctx); err != nil {
			logger.Warn("failed to release "+step.name, slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		logger.Debug("released " + step.name)
	}
	return errors.Join(errs...)
}

// Shutdown releases everything Init acquired. Later calls return the result
// of the first.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		a.stateMu.Lock()
		steps := a.cleanup
		a.cleanup = nil
		a.started = false
		a.stateMu.Unlock()

		a.shutdownErr = steps.run(ctx, a.logger)
	})
	return a.shutdownErr
}
