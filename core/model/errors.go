package model

import (
	"errors"
	"fmt"
)

// ErrSpecification is matched by every *SpecificationError through errors.Is.
var ErrSpecification = errors.New("invalid scenario specification")

// SpecificationError reports malformed or incomplete scenario input. It is
// fatal to the scenario, not to the run.
type SpecificationError struct {
	Scenario string
	Reason   string
}

// Specf builds a SpecificationError with a formatted reason.
func Specf(scenario, format string, args ...any) *SpecificationError {
	return &SpecificationError{Scenario: scenario, Reason: fmt.Sprintf(format, args...)}
}

func (e *SpecificationError) Error() string {
	if e.Scenario == "" {
		return "specification: " + e.Reason
	}
	return fmt.Sprintf("specification %s: %s", e.Scenario, e.Reason)
}

// Is makes errors.Is(err, ErrSpecification) true.
func (e *SpecificationError) Is(target error) bool { return target == ErrSpecification }
