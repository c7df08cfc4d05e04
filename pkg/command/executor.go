package command

import (
	"context"
	"sync"
)

// Executor performs commands: audio, UI updates, scene changes. The engine
// never depends on an implementation; sessions hand batches to one.
type Executor interface {
	Execute(ctx context.Context, cmds []Command) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, cmds []Command) error

func (f ExecutorFunc) Execute(ctx context.Context, cmds []Command) error {
	return f(ctx, cmds)
}

// Recorder is an Executor that keeps every batch it receives.
type Recorder struct {
	mu      sync.Mutex
	batches [][]Command
}

// Ensure Recorder implements Executor
var _ Executor = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Execute(_ context.Context, cmds []Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make([]Command, len(cmds))
	copy(batch, cmds)
	r.batches = append(r.batches, batch)
	return nil
}

// Batches returns a copy of the recorded batches.
func (r *Recorder) Batches() [][]Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]Command, len(r.batches))
	copy(out, r.batches)
	return out
}

// All returns every recorded command in execution order.
func (r *Recorder) All() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Command
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

// Reset drops all recorded batches.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = nil
}

// Multi fans a batch out to several executors, stopping at the first error.
func Multi(executors ...Executor) Executor {
	return ExecutorFunc(func(ctx context.Context, cmds []Command) error {
		for _, e := range executors {
			if e == nil {
				continue
			}
			if err := e.Execute(ctx, cmds); err != nil {
				return err
			}
		}
		return nil
	})
}
