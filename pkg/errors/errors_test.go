package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestWidgetErrorString(t *testing.T) {
	err := &WidgetError{
		Op:   "store.File.Set",
		Kind: KindStorage,
		Err:  fmt.Errorf("disk full"),
	}
	got := err.Error()
	want := "store.File.Set [storage]: disk full"
	if got != want {
		t.Errorf("WidgetError.Error() = %q, want %q", got, want)
	}
}

func TestWidgetErrorWithGroup(t *testing.T) {
	err := New("actions.Enqueue", KindAction, "group.com.example", ErrEmptyAction)
	got := err.Error()
	want := "group=group.com.example"
	if !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
	if !Is(err, ErrEmptyAction) {
		t.Error("expected wrapped sentinel to match")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindParsing, "parsing"},
		{KindStorage, "storage"},
		{KindNetwork, "network"},
		{KindRender, "render"},
		{KindAction, "action"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "surface.Render"
	if got, want := err.Error(), "panic in surface.Render: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestParseErrorString(t *testing.T) {
	err := &ParseError{Source: "__widget_config__", DataType: "WidgetConfig", Got: 123}
	if got, want := err.Error(), "failed to parse WidgetConfig from __widget_config__: got int"; got != want {
		t.Errorf("ParseError.Error() = %q, want %q", got, want)
	}

	inner := fmt.Errorf("unexpected EOF")
	wrapped := &ParseError{Source: "queue", DataType: "[]Action", Err: inner}
	if !Is(wrapped, inner) {
		t.Error("ParseError should unwrap to the decoder error")
	}
}

func TestReport(t *testing.T) {
	var captured *WidgetError
	handler := &testHandler{onError: func(err *WidgetError) { captured = err }}

	oldHandler := Handler()
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(&WidgetError{Op: "test.op", Kind: KindRender, Err: ErrInvalidConfig})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	handler := &testHandler{onPanic: func(err *PanicError) { captured = err }}

	oldHandler := Handler()
	SetHandler(handler)
	defer SetHandler(oldHandler)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	oldHandler := Handler()
	SetHandler(&testHandler{})
	defer SetHandler(oldHandler)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(42)
	}()
	if got != 42 {
		t.Errorf("callback value = %v, want 42", got)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if _, ok := Handler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", Handler())
	}
}

func TestLogHandlerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	old := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = old }()

	h := &LogHandler{}
	h.HandleError(New("store.Redis.Update", KindStorage, "g1", fmt.Errorf("conn refused")))
	out := buf.String()
	for _, want := range []string{`"op":"store.Redis.Update"`, `"kind":"storage"`, `"group":"g1"`, `"error":"conn refused"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %s", out, want)
		}
	}
}

type testHandler struct {
	onError func(*WidgetError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *WidgetError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
