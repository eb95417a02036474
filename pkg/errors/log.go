package errors

import (
	"github.com/rs/zerolog/log"
)

// LogHandler is an ErrorHandler that writes through the global zerolog logger.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

// HandleError logs a WidgetError at error level.
func (h *LogHandler) HandleError(err *WidgetError) {
	if err == nil {
		return
	}
	ev := log.Error().Err(err.Err).Str("op", err.Op).Stringer("kind", err.Kind)
	if err.Group != "" {
		ev = ev.Str("group", err.Group)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("widget error")
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	ev := log.Error().Interface("panic", err.Value)
	if err.Op != "" {
		ev = ev.Str("op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("recovered panic")
}
