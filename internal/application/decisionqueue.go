package application

import (
	"slices"
	"sync"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
)

// DecisionQueue holds mismatches waiting for the user. The reconciliation
// engine publishes to it; whichever UI is attached consumes from it. There is
// at most one pending decision per repository.
type DecisionQueue struct {
	mu      sync.Mutex
	pending []model.Decision
	notify  chan struct{}
}

// NewDecisionQueue creates an empty queue.
func NewDecisionQueue() *DecisionQueue {
	return &DecisionQueue{notify: make(chan struct{}, 1)}
}

// Publish adds d, replacing any pending decision for the same repository.
func (q *DecisionQueue) Publish(d model.Decision) {
	q.mu.Lock()
	if i := q.indexLocked(d.RepoPath); i >= 0 {
		q.pending[i] = d
	} else {
		q.pending = append(q.pending, d)
	}
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pending returns a copy of the queued decisions in publish order.
func (q *DecisionQueue) Pending() []model.Decision {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.pending)
}

// Take removes and returns the pending decision for repoPath.
func (q *DecisionQueue) Take(repoPath string) (model.Decision, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexLocked(repoPath)
	if i < 0 {
		return model.Decision{}, false
	}
	d := q.pending[i]
	q.pending = slices.Delete(q.pending, i, i+1)
	return d, true
}

// Len returns the number of pending decisions.
func (q *DecisionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Notify returns a channel that receives a value after one or more publishes.
func (q *DecisionQueue) Notify() <-chan struct{} {
	return q.notify
}

func (q *DecisionQueue) indexLocked(repoPath string) int {
	return slices.IndexFunc(q.pending, func(d model.Decision) bool { return d.RepoPath == repoPath })
}
