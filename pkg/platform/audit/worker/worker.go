package worker

import (
	"context"
	"log/slog"
	"time"

	audit "domainfactor/pkg/platform/audit"
)

const defaultBufferSize = 1024

// Worker is an audit.Publisher that buffers events in memory and persists
// them from a background loop, so a slow sink never delays a factor check.
// Events are dropped (and logged) when the buffer is full.
type Worker struct {
	store  audit.Store
	inbox  chan audit.Event
	logger *slog.Logger
}

// Option configures the Worker.
type Option func(*Worker)

// WithLogger sets a logger for dropped events and sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithBufferSize sets the inbox capacity.
func WithBufferSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.inbox = make(chan audit.Event, size)
		}
	}
}

func NewWorker(store audit.Store, opts ...Option) *Worker {
	w := &Worker{
		store:  store,
		inbox:  make(chan audit.Event, defaultBufferSize),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Emit enqueues event without blocking.
func (w *Worker) Emit(ctx context.Context, event audit.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case w.inbox <- event:
	default:
		w.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"request_id", event.RequestID,
		)
	}
}

// Run persists events until ctx is cancelled, then drains what is already
// buffered using a short grace period.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.persist(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.persist(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) persist(ctx context.Context, event audit.Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}
