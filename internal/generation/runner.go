package generation

import (
	"context"
	"sync"

	"github.com/jensroland/git-solentry/internal/exercise"
	"github.com/jensroland/git-solentry/internal/record"
)

// Runner serializes generation runs per exercise. Runs for different
// exercises proceed in parallel.
type Runner struct {
	svc *Service

	mu    sync.Mutex
	locks map[int64]*exerciseLock
}

type exerciseLock struct {
	mu   sync.Mutex
	refs int
}

// NewRunner wraps svc.
func NewRunner(svc *Service) *Runner {
	return &Runner{svc: svc, locks: make(map[int64]*exerciseLock)}
}

// Generate waits for any running generation of the same exercise, then
// runs one.
func (r *Runner) Generate(ctx context.Context, ex *exercise.Exercise) ([]record.SolutionEntry, error) {
	l := r.acquire(ex.ID)
	defer r.release(ex.ID, l)
	return r.svc.Generate(ctx, ex)
}

func (r *Runner) acquire(id int64) *exerciseLock {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &exerciseLock{}
		r.locks[id] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return l
}

func (r *Runner) release(id int64, l *exerciseLock) {
	l.mu.Unlock()

	r.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(r.locks, id)
	}
	r.mu.Unlock()
}
