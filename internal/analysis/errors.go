package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned when the job title is empty or only whitespace.
var ErrEmptyInput = errors.New("job title is empty")

// Stage identifies where a remote request failed.
type Stage string

const (
	// StageCall covers transport errors, non-2xx answers, timeouts and empty candidates.
	StageCall Stage = "call"
	// StageParse covers responses that are not JSON.
	StageParse Stage = "parse"
	// StageValidate covers JSON that does not match the analysis shape.
	StageValidate Stage = "validate"
)

// RemoteServiceError represents any failure of the single remote analysis call
type RemoteServiceError struct {
	Stage   Stage
	Message string
	Cause   error
}

func (e *RemoteServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("remote service error (%s): %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("remote service error (%s): %s", e.Stage, e.Message)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Cause
}

// NormalizeTitle trims the title and collapses internal whitespace runs.
// It returns ErrEmptyInput when nothing is left.
func NormalizeTitle(raw string) (string, error) {
	title := strings.Join(strings.Fields(raw), " ")
	if title == "" {
		return "", ErrEmptyInput
	}
	return title, nil
}
