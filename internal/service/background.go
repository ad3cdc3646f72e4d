package service

import (
	"log/slog"
	"runtime/debug"
)

// detach runs fn on its own goroutine; a panic is logged instead of crashing the process
func detach(logger *slog.Logger, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("background task panicked", "task", name, "panic", r, "stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}
