// Package signal ties command contexts to SIGINT and SIGTERM.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	// mu protects the fields below.
	mu sync.Mutex
	// blockCount tracks nested Critical sections.
	blockCount int
	// pending holds cancellations deferred by a Critical section.
	pending []context.CancelFunc
)

// WithSignalCancel returns a context that is cancelled when SIGINT or SIGTERM
// is received. The returned cancel function releases the signal handler.
func WithSignalCancel(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			mu.Lock()
			if blockCount > 0 {
				pending = append(pending, cancel)
				mu.Unlock()
				return
			}
			mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// Critical runs fn with signal cancellation deferred until it returns, so
// files are never left half written. Calls may be nested.
func Critical(fn func() error) error {
	mu.Lock()
	blockCount++
	mu.Unlock()

	defer func() {
		mu.Lock()
		blockCount--
		var run []context.CancelFunc
		if blockCount == 0 {
			run, pending = pending, nil
		}
		mu.Unlock()
		for _, cancel := range run {
			cancel()
		}
	}()

	return fn()
}
