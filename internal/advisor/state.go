// Package advisor holds the per-view state of the career advisor and the
// transitions between welcome, loading, error and result.
package advisor

import (
	"errors"

	"github.com/jonathan/career-advisor/internal/analysis"
	"github.com/jonathan/career-advisor/internal/sharelink"
	"github.com/jonathan/career-advisor/internal/types"
)

// User-facing messages for each error kind.
const (
	MessageEmptyInput       = "Please enter a job title or field."
	MessageRemoteFailure    = "Failed to get analysis. The AI may be busy, or an error occurred. Please try again."
	MessageInvalidShareLink = "The shared analysis link appears to be invalid or corrupted."
)

// Phase is what the rendering surface should show.
type Phase int

const (
	PhaseWelcome Phase = iota
	PhaseLoading
	PhaseError
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseResult:
		return "result"
	default:
		return "welcome"
	}
}

// State is one view's data. Transitions return a new State; the result it
// points to is never modified in place.
type State struct {
	JobTitle string
	Result   *types.AnalysisResult
	Loading  bool
	Err      error
}

// Phase reports which surface to render. An error wins over a result; a
// rejected empty title keeps the previous result visible under the error.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Err != nil:
		return PhaseError
	case s.Result != nil:
		return PhaseResult
	default:
		return PhaseWelcome
	}
}

// ErrorMessage returns the user-facing text for the current error, or "".
func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return Message(s.Err)
}

// StartRequest clears the previous result and error and marks a request in flight.
func (s State) StartRequest(jobTitle string) State {
	return State{JobTitle: jobTitle, Loading: true}
}

// CompleteRequest stores a fresh result.
func (s State) CompleteRequest(result *types.AnalysisResult) State {
	return State{JobTitle: s.JobTitle, Result: result}
}

// FailRequest records a failed request. No result is kept.
func (s State) FailRequest(err error) State {
	return State{JobTitle: s.JobTitle, Err: err}
}

// RejectInput records an input error without touching the current result.
func (s State) RejectInput(err error) State {
	return State{JobTitle: s.JobTitle, Result: s.Result, Err: err}
}

// DecodeFromLink loads a shared result. On success the title is pre-filled
// from the result; on failure the state carries an *sharelink.InvalidShareLinkError.
func (s State) DecodeFromLink(token string, codec *sharelink.Codec) State {
	if codec == nil {
		codec = sharelink.NewCodec()
	}
	result, err := codec.Decode(token)
	if err != nil {
		return State{Err: err}
	}
	return State{JobTitle: result.JobTitle, Result: result}
}

// Message maps an error to the text shown to the user.
func Message(err error) string {
	var linkErr *sharelink.InvalidShareLinkError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, analysis.ErrEmptyInput):
		return MessageEmptyInput
	case errors.As(err, &linkErr):
		return MessageInvalidShareLink
	default:
		return MessageRemoteFailure
	}
}
