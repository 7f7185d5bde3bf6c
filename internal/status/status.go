// Package status reports delivery progress and outcomes to whoever is watching,
// and keeps a second action on the same target from starting while one runs.
package status

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Kind string

const (
	// KindProgress notices are transient and never terminal.
	KindProgress Kind = "progress"
	KindToast    Kind = "toast"
	// KindModal notices stay up until the user dismisses them.
	KindModal Kind = "modal"
)

type Notice struct {
	Kind          Kind      `json:"kind"`
	Level         Level     `json:"level"`
	Channel       string    `json:"channel"`
	TransactionID string    `json:"transactionId"`
	Stage         string    `json:"stage,omitempty"`
	Title         string    `json:"title,omitempty"`
	Message       string    `json:"message"`
	At            time.Time `json:"at"`
}

// Terminal reports whether the notice closes an attempt.
func (n Notice) Terminal() bool {
	return n.Kind == KindToast
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) {
	f(ctx, n)
}

// Reporter fans notices out to every registered notifier.
type Reporter struct {
	notifiers []Notifier
	now       func() time.Time
}

func NewReporter(notifiers ...Notifier) *Reporter {
	return &Reporter{notifiers: notifiers, now: time.Now}
}

type notifierKey struct{}

// WithNotifier returns a context whose notices also reach n, on top of the
// reporter's own notifiers.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

func (r *Reporter) emit(ctx context.Context, n Notice) {
	n.At = r.now()

	for _, notifier := range r.notifiers {
		notifier.Notify(ctx, n)
	}

	if scoped, ok := ctx.Value(notifierKey{}).(Notifier); ok {
		scoped.Notify(ctx, n)
	}
}

func (r *Reporter) Progress(ctx context.Context, channel, txID, stage string) {
	r.emit(ctx, Notice{
		Kind:          KindProgress,
		Level:         LevelInfo,
		Channel:       channel,
		TransactionID: txID,
		Stage:         stage,
		Message:       stage,
	})
}

func (r *Reporter) Success(ctx context.Context, channel, txID, message string) {
	r.emit(ctx, Notice{
		Kind:          KindToast,
		Level:         LevelSuccess,
		Channel:       channel,
		TransactionID: txID,
		Message:       message,
	})
}

func (r *Reporter) Cancelled(ctx context.Context, channel, txID, message string) {
	r.emit(ctx, Notice{
		Kind:          KindToast,
		Level:         LevelWarning,
		Channel:       channel,
		TransactionID: txID,
		Message:       message,
	})
}

// Failure emits the terminal toast and, when modal is set, a persistent dialog
// carrying the same message.
func (r *Reporter) Failure(ctx context.Context, channel, txID, title, message string, modal bool) {
	r.emit(ctx, Notice{
		Kind:          KindToast,
		Level:         LevelError,
		Channel:       channel,
		TransactionID: txID,
		Title:         title,
		Message:       message,
	})

	if !modal {
		return
	}

	r.emit(ctx, Notice{
		Kind:          KindModal,
		Level:         LevelError,
		Channel:       channel,
		TransactionID: txID,
		Title:         title,
		Message:       message,
	})
}

// LogNotifier writes notices to slog.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notice) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	level := slog.LevelInfo

	switch {
	case n.Kind == KindProgress:
		level = slog.LevelDebug
	case n.Level == LevelError:
		level = slog.LevelError
	case n.Level == LevelWarning:
		level = slog.LevelWarn
	}

	logger.Log(ctx, level, n.Message,
		"kind", n.Kind,
		"channel", n.Channel,
		"transaction_id", n.TransactionID,
	)
}

// Recorder keeps every notice it receives. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = append(r.notices, n)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Notice, len(r.notices))
	copy(out, r.notices)

	return out
}

// Terminal returns the notices that closed an attempt.
func (r *Recorder) Terminal() []Notice {
	var out []Notice

	for _, n := range r.Notices() {
		if n.Terminal() {
			out = append(out, n)
		}
	}

	return out
}

// Modals returns the persistent dialogs raised so far.
func (r *Recorder) Modals() []Notice {
	var out []Notice

	for _, n := range r.Notices() {
		if n.Kind == KindModal {
			out = append(out, n)
		}
	}

	return out
}
