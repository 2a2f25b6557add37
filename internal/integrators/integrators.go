package integrators

import (
	"fmt"

	"github.com/san-kum/massspring/internal/dynamo"
)

// New returns a fresh stepper for kind.
func New(kind dynamo.IntegratorKind) (dynamo.Stepper, error) {
	switch kind {
	case dynamo.Euler:
		return NewEuler(), nil
	case dynamo.Leapfrog:
		return NewLeapfrog(), nil
	case dynamo.Midpoint:
		return NewMidpoint(), nil
	}
	return nil, fmt.Errorf("%w: %d", dynamo.ErrUnknownIntegrator, int(kind))
}
