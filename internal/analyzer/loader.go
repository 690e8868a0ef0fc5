package analyzer

import (
	"context"
	"errors"
	"sync"
)

// ErrNotReady is returned while the model is still loading.
var ErrNotReady = errors.New("model is still loading")

// Status is the readiness of a Loader.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "loading"
	}
}

// LoadFunc builds the Analyzer, typically by loading the model from disk.
type LoadFunc func(ctx context.Context) (*Analyzer, error)

// Loader runs a LoadFunc once in the background and publishes exactly one
// outcome: a ready Analyzer or a load error.
type Loader struct {
	mu       sync.RWMutex
	status   Status
	analyzer *Analyzer
	err      error
	once     sync.Once
	done     chan struct{}
}

// NewLoader returns a Loader in the loading state.
func NewLoader() *Loader {
	return &Loader{done: make(chan struct{})}
}

// Preloaded returns a Loader that is already ready with a.
func Preloaded(a *Analyzer) *Loader {
	l := NewLoader()
	l.finish(a, nil)
	return l
}

// Start runs fn in a new goroutine. Only the first call has any effect.
func (l *Loader) Start(ctx context.Context, fn LoadFunc) {
	l.once.Do(func() {
		go func() {
			a, err := fn(ctx)
			l.finish(a, err)
		}()
	})
}

func (l *Loader) finish(a *Analyzer, err error) {
	l.mu.Lock()
	if err != nil {
		l.status, l.err = StatusFailed, err
	} else {
		l.status, l.analyzer = StatusReady, a
	}
	l.mu.Unlock()
	l.once.Do(func() {})
	close(l.done)
}

// Done is closed once loading has finished, successfully or not.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until loading finishes or ctx ends.
func (l *Loader) Wait(ctx context.Context) (*Analyzer, error) {
	select {
	case <-l.done:
		return l.Analyzer()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Status reports the current readiness.
func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Analyzer returns the loaded Analyzer, ErrNotReady while loading, or the
// load error after a failure.
func (l *Loader) Analyzer() (*Analyzer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch l.status {
	case StatusReady:
		return l.analyzer, nil
	case StatusFailed:
		return nil, l.err
	default:
		return nil, ErrNotReady
	}
}
