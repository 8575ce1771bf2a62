package event

import (
	"context"
	"log/slog"
)

type Handler func(ctx context.Context, e Event) error

var events = make(chan Event, 32)

// Send publishes an event to the process-wide stream. It never blocks the
// supervisor: if the listener is saturated the event is dropped.
func Send(e Event) {
	select {
	case events <- e:
	default:
	}
}

// Listener fans events out to the registered handlers on a single goroutine.
type Listener struct {
	handlers []Handler
	logger   *slog.Logger
}

func NewListener(logger *slog.Logger) *Listener {
	return &Listener{logger: logger}
}

func (l *Listener) Register(h Handler) {
	l.handlers = append(l.handlers, h)
}

func (l *Listener) Listen(ctx context.Context) error {
	for {
		select {
		case e := <-events:
			for _, h := range l.handlers {
				if err := h(ctx, e); err != nil {
					l.logger.Error("Error running event handler", slog.Any("error", err))
				}
			}
		case <-ctx.Done():
			return nil
		}
	}
}
