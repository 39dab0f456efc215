package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/tubeclamp/pkg/design"
)

// EvalTimeout is the default limit for one script run.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's limit.
	ErrTimeout = errors.New("script evaluation timed out")
	// ErrSuperseded is returned to a caller whose run finished after a newer
	// Evaluate call on the same engine started.
	ErrSuperseded = errors.New("script evaluation superseded")
)

// outcome is what the interpreter goroutine hands back to Evaluate.
type outcome struct {
	design *design.Design
	errs   []EvalError
	err    error
}

func (e *Engine) latest(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation == gen
}

// await blocks until run gen reports or the limit passes. A run that
// overstays keeps its goroutine; ch is buffered so its late send is dropped.
func (e *Engine) await(ch <-chan outcome, gen uint64) (*design.Design, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case o := <-ch:
		if !e.latest(gen) {
			return nil, nil, fmt.Errorf("run %d: %w", gen, ErrSuperseded)
		}
		return o.design, o.errs, o.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}
