package submission

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOperationInFlight = errors.New("another operation is in progress for this draft")
	ErrUnknownField      = errors.New("unknown draft field")
	ErrMediaIndex        = errors.New("media index out of range")
	ErrUnitTypeIndex     = errors.New("unit type index out of range")
	ErrUnknownAmenity    = errors.New("unknown amenity")
	ErrAddressIncomplete = errors.New("city and locality are required for a coordinate lookup")
	ErrWrongKind         = errors.New("listing kind does not match the pipeline")
)

// StepValidationError lists every missing or invalid field of one step.
type StepValidationError struct {
	Step     int
	StepName string
	Fields   []string
}

func (e *StepValidationError) Error() string {
	return fmt.Sprintf("step %d (%s): missing or invalid %s", e.Step, e.StepName, strings.Join(e.Fields, ", "))
}

// GeocodeWarning is returned when coordinates could not be fetched.
// It never blocks the pipeline by itself; the location step stays
// incomplete until a lookup succeeds.
type GeocodeWarning struct {
	Query string
	Err   error
}

func (w *GeocodeWarning) Error() string {
	return fmt.Sprintf("could not fetch coordinates for %q: %v", w.Query, w.Err)
}

func (w *GeocodeWarning) Unwrap() error { return w.Err }
