package interpreter

import (
	"errors"
	"fmt"

	"whileplus/interpreter-go/pkg/runtime"
)

// ErrStepLimit is returned when a run exceeds the configured step budget.
var ErrStepLimit = errors.New("step limit exceeded")

// raiseSignal carries a WHILE+ exception up the evaluator. It is the only
// error that a Try statement intercepts.
type raiseSignal struct {
	value runtime.Value
}

func (r raiseSignal) Error() string {
	return fmt.Sprintf("uncaught exception: %s", runtime.Show(r.value))
}

func raise(v runtime.Value) error {
	return raiseSignal{value: v}
}

// AsRaise extracts the raised value from an evaluator error.
func AsRaise(err error) (runtime.Value, bool) {
	var rs raiseSignal
	if errors.As(err, &rs) {
		return rs.value, true
	}
	return nil, false
}
