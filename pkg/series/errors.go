package series

import (
	"fmt"

	"github.com/leapstack-labs/genseries/pkg/core"
)

// Messages carried by RangeError.
const (
	MsgStartNotBeforeStop = "start must be smaller than stop"
	MsgStepNotPositive    = "step must be positive"
)

// RangeError reports bounds that do not describe a non-empty ascending
// series.
type RangeError struct {
	Kind    core.Kind
	Message string
}

func (e *RangeError) Error() string { return e.Message }

// TypeError reports a bound or step that cannot be coerced into the kind's
// scalar domain.
type TypeError struct {
	// Field is "start", "stop", "step", or "params" for a malformed triple.
	Field string
	Kind  core.Kind
	Value any
	Err   error
}

func (e *TypeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s for %s series: %v (%T): %v", e.Field, e.Kind, e.Value, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s for %s series: %v (%T)", e.Field, e.Kind, e.Value, e.Value)
}

func (e *TypeError) Unwrap() error { return e.Err }
