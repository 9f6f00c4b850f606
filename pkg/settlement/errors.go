package settlement

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStructure is matched by every StructureError
	ErrStructure = errors.New("unexpected settlement table structure")

	// ErrParse is matched by every ParseError
	ErrParse = errors.New("settlement cell parse failed")

	// ErrUnknownLocation is returned when the requested hub or load zone is not a table column
	ErrUnknownLocation = errors.New("unknown location; call Locations first")

	// ErrInvalidCutoff is returned for a zero cutoff timestamp
	ErrInvalidCutoff = errors.New("invalid cutoff timestamp")
)

// StructureError means the page no longer has the markup the extractor expects.
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string {
	return "settlement table: " + e.Reason
}

func (e *StructureError) Unwrap() error {
	return ErrStructure
}

// InvalidArgumentError is returned before any row is read.
type InvalidArgumentError struct {
	Arg   string
	Value string
	Err   error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s=%q: %v", e.Arg, e.Value, e.Err)
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.Err
}

func invalidCutoff(cutoff time.Time) *InvalidArgumentError {
	return &InvalidArgumentError{Arg: "cutoff", Value: cutoff.Format(time.RFC3339), Err: ErrInvalidCutoff}
}

// ParseError carries the offending cell text and the format it was parsed with.
type ParseError struct {
	Field  string
	Value  string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s %q with format %q: %v", e.Field, e.Value, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
