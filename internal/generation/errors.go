package generation

import (
	"errors"
	"fmt"
)

// Kind identifies why a generation run failed.
type Kind string

const (
	FeatureDisabled       Kind = "feature_disabled"
	NoTestCases           Kind = "no_test_cases"
	MissingDiffReport     Kind = "missing_diff_report"
	MissingCoverageReport Kind = "missing_coverage_report"
	EmptyResult           Kind = "empty_result"
	Stuck                 Kind = "stuck"
	Repository            Kind = "repository"
	Store                 Kind = "store"
)

// ErrNotFound is returned by report sources when nothing has been produced
// for the exercise yet.
var ErrNotFound = errors.New("not found")

// Error is the single failure type of a generation run. Reason is meant to
// be shown to the user as-is.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can test with
// errors.Is(err, &generation.Error{Kind: generation.Stuck}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of a generation error, or "" if err is not one.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
