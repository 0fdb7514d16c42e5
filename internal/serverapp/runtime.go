package serverapp

import (
	"errors"
	"log/slog"
	"os"
)

// Reasons returned by WaitForStop.
const (
	StopReasonSignal      = "signal"
	StopReasonServerError = "server_error"
)

// Start serves HTTP in the background. The returned channel reports why the
// server exited; calling Start again returns the same channel.
func (a *App) Start() (<-chan error, error) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	switch {
	case !a.initialized:
		return nil, errors.New("start called before Init")
	case !a.started:
		a.serverErrors = startServer(a.cfg, a.logger, a.srv, a.serverAddr)
		a.started = true
	}
	return a.serverErrors, nil
}

// WaitForStop blocks until stop delivers a signal or the server exits.
// Either channel may be nil, but not both.
func (a *App) WaitForStop(stop <-chan os.Signal, serverErrors <-chan error) (string, error) {
	if stop == nil && serverErrors == nil {
		return "", errors.New("nothing to wait on: stop and serverErrors are both nil")
	}

	select {
	case sig := <-stop:
		a.logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		return StopReasonSignal, nil
	case err := <-serverErrors:
		if err == nil {
			err = errors.New("server stopped unexpectedly")
		}
		return StopReasonServerError, err
	}
}
