package boardstore

import (
	"context"
	"sync"
)

// Pending is the handle returned by commands that touch the remote store.
// The local state is already mutated when a Pending is handed out; the handle
// reports whether the remote write stuck or was rolled back.
type Pending struct {
	mu   sync.Mutex
	err  error
	done chan struct{}
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// resolve completes the handle. Called exactly once.
func (p *Pending) resolve(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	close(p.done)
}

// Done is closed once the remote write has been applied or rolled back
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the outcome. Only valid after Done is closed.
func (p *Pending) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Wait blocks until the command completes or the context is cancelled
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
