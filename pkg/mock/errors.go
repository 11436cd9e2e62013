package mock

import (
	"errors"
	"fmt"

	"github.com/getmockd/mockwire/internal/matching"
)

var (
	// ErrInvalidArgument is matched by errors for unknown or badly typed
	// configuration options.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidExpectation is returned when a matcher is given an empty
	// or malformed expectation.
	ErrInvalidExpectation = matching.ErrInvalidExpectation

	// ErrNilRequest is returned when a mapper returns no request.
	ErrNilRequest = errors.New("mapper returned a nil request")
)

// InvalidArgumentError reports a configuration option that could not be
// applied.
type InvalidArgumentError struct {
	Key string
	Err error
}

func (e *InvalidArgumentError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unsupported argument: %s", e.Key)
	}
	return fmt.Sprintf("invalid argument %s: %v", e.Key, e.Err)
}

// Is reports ErrInvalidArgument as a match.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func (e *InvalidArgumentError) Unwrap() error { return e.Err }

// SimulatedError is returned by Match when a mock configured with Error
// matches. The match has already been recorded.
type SimulatedError struct {
	Mock *Mock
	Err  error
}

func (e *SimulatedError) Error() string {
	return fmt.Sprintf("simulated error: %v", e.Err)
}

func (e *SimulatedError) Unwrap() error { return e.Err }
