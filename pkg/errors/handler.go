package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

type handlerBox struct{ h ErrorHandler }

var current atomic.Pointer[handlerBox]

func init() { SetHandler(nil) }

// SetHandler installs the process-wide error handler. Nil restores a
// quiet LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	current.Store(&handlerBox{h: h})
}

// Handler returns the installed error handler.
func Handler() ErrorHandler {
	return current.Load().h
}

// Report hands err to the installed handler, stamping it if needed.
func Report(err *WidgetError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleError(err)
}

// ReportPanic hands a recovered panic to the installed handler.
func ReportPanic(err *PanicError) {
	if err != nil {
		Handler().HandlePanic(err)
	}
}

// Recover reports a panic in progress. Defer it directly:
//
//	defer errors.Recover("host.Reload")
func Recover(op string) {
	if r := recover(); r != nil {
		reportRecovered(op, r)
	}
}

// RecoverWithCallback is Recover followed by callback(r), so the deferring
// function can turn the panic into a return value.
func RecoverWithCallback(op string, callback func(r any)) {
	if r := recover(); r != nil {
		reportRecovered(op, r)
		if callback != nil {
			callback(r)
		}
	}
}

func reportRecovered(op string, r any) {
	ReportPanic(&PanicError{
		Op:         op,
		Value:      r,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	})
}

// CaptureStack formats up to 32 frames of the caller's stack, one
// "function\n\tfile:line" entry per frame.
func CaptureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for more := true; more; {
		var f runtime.Frame
		f, more = frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
	}
	return sb.String()
}
