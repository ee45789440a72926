package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueFull = errors.New("notification queue is full")
	ErrClosed    = errors.New("notifier is closed")
)

// Async ставит события в очередь и доставляет их в фоне одним воркером,
// поэтому медленные каналы (SMTP, Telegram, Sheets) не задерживают HTTP-ответ.
// Порядок событий сохраняется. Ошибки доставки только логируются.
type Async struct {
	next    Notifier
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

func NewAsync(next Notifier, buffer int, timeout time.Duration, logger *slog.Logger) *Async {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Async{
		next:    next,
		timeout: timeout,
		logger:  logger,
		queue:   make(chan Event, buffer),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Notify не блокируется: при переполненной очереди событие отбрасывается.
func (a *Async) Notify(_ context.Context, e Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close перестает принимать события и ждет доставки уже поставленных,
// но не дольше, чем живет ctx.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) run() {
	defer close(a.done)
	for e := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Notify(ctx, e); err != nil {
			a.logger.Warn("registration event delivery failed",
				slog.String("event", string(e.Type)), slog.String("registration_id", e.RegistrationID), slog.Any("error", err))
		}
		cancel()
	}
}
