package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/shellgen/pkg/shell"
)

// EvalTimeout bounds one call to Evaluate.
const EvalTimeout = 5 * time.Second

// errSuperseded is returned to a caller whose request was overtaken by a
// later Evaluate on the same Engine.
var errSuperseded = errors.New("evaluation superseded by newer request")

type evalResult struct {
	spec   *shell.BuildingShellSpec
	errors []EvalError
	err    error
}

// await blocks until ch delivers or limit elapses. A result that arrives
// after latest() has moved past gen belongs to a stale request.
func await(ch <-chan evalResult, gen uint64, limit time.Duration, latest func() uint64) evalResult {
	select {
	case res := <-ch:
		if latest() != gen {
			return evalResult{err: errSuperseded}
		}
		return res
	case <-time.After(limit):
		return evalResult{err: fmt.Errorf("evaluation timed out after %s", limit)}
	}
}
