package testutil

import (
	"log/slog"
)

// DiscardLogger returns a logger whose output goes nowhere. Tests inject
// it wherever a component wants a *slog.Logger but the test asserts on
// behavior, not log output.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
