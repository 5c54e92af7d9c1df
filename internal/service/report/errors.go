package report

import (
	"errors"
	"fmt"
)

// Step identifies which stage of the pipeline an error came from.
type Step string

const (
	StepConfiguration Step = "configuration"
	StepSelection     Step = "selection"
	StepPersistence   Step = "persistence"
	StepRender        Step = "render"
	StepExport        Step = "export"
	StepArchive       Step = "archive"
)

// Error wraps a failure with the pipeline step that produced it.
type Error struct {
	Step Step
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("report %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stepError(step Step, err error) error {
	return &Error{Step: step, Err: err}
}

// StepOf extracts the failing step from an error returned by Generate.
func StepOf(err error) (Step, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Step, true
	}
	return "", false
}
