package rate

import (
	"context"
	"fmt"
	"time"
)

// Limiter gates outbound sends so we respect the chat service's
// throughput limits.
type Limiter interface {
	Wait(ctx context.Context) error
}

// TokenBucket releases one token per interval.
type TokenBucket struct {
	ticker   *time.Ticker
	tokens   chan struct{}
	stop     chan struct{}
	stopDone chan struct{}
}

// NewTokenBucket returns a limiter that spaces calls by interval.
func NewTokenBucket(interval time.Duration) *TokenBucket {
	if interval <= 0 {
		interval = time.Second
	}
	tb := &TokenBucket{
		ticker:   time.NewTicker(interval),
		tokens:   make(chan struct{}, 1),
		stop:     make(chan struct{}),
		stopDone: make(chan struct{}),
	}
	// allow the first call to proceed immediately
	tb.tokens <- struct{}{}
	go tb.run()
	return tb
}

func (t *TokenBucket) run() {
	defer close(t.stopDone)
	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C:
			select {
			case t.tokens <- struct{}{}:
			default:
			}
		}
	}
}

// Wait blocks until a token is available or the context is canceled.
func (t *TokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate wait canceled: %w", ctx.Err())
	case <-t.tokens:
		return nil
	}
}

// Stop releases resources held by the limiter.
func (t *TokenBucket) Stop() {
	t.ticker.Stop()
	close(t.stop)
	<-t.stopDone
}

var _ Limiter = (*TokenBucket)(nil)
