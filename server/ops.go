package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/naivary/pixst/models"
)

// opRegistry tracks server-side operations by id. Duplications run
// in the background, clients poll until the op is done or failed.
type opRegistry struct {
	mu  sync.RWMutex
	ops map[string]*models.Op
}

func newOpRegistry() *opRegistry {
	return &opRegistry{ops: make(map[string]*models.Op)}
}

func (r *opRegistry) submit() models.Op {
	op := &models.Op{
		ID:        uuid.NewString(),
		Status:    models.OpQueued,
		Submitted: time.Now(),
	}
	r.mu.Lock()
	r.ops[op.ID] = op
	r.mu.Unlock()
	return *op
}

func (r *opRegistry) setRunning(id string) {
	r.mu.Lock()
	if op, ok := r.ops[id]; ok {
		op.Status = models.OpRunning
	}
	r.mu.Unlock()
}

func (r *opRegistry) finish(id string, resp *models.DuplicateResponse) {
	r.mu.Lock()
	if op, ok := r.ops[id]; ok {
		op.Status = models.OpDone
		op.Response = resp
		op.Finished = time.Now()
	}
	r.mu.Unlock()
}

func (r *opRegistry) fail(id string, err error) {
	r.mu.Lock()
	if op, ok := r.ops[id]; ok {
		op.Status = models.OpFailed
		op.Error = err.Error()
		op.Finished = time.Now()
	}
	r.mu.Unlock()
}

// get returns a copy so callers cannot race with the background run.
func (r *opRegistry) get(id string) (models.Op, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[id]
	if !ok {
		return models.Op{}, false
	}
	return *op, true
}
