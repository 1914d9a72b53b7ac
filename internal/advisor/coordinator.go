package advisor

import (
	"context"
	"errors"
	"net/url"

	"github.com/jonathan/career-advisor/internal/analysis"
	"github.com/jonathan/career-advisor/internal/sharelink"
	"github.com/jonathan/career-advisor/internal/types"
)

// Analyzer produces an analysis for a job title. *analysis.Requester implements it.
type Analyzer interface {
	RequestAnalysis(ctx context.Context, jobTitle string) (*types.AnalysisResult, error)
}

// Coordinator drives State through the analyze and share-link flows.
type Coordinator struct {
	analyzer Analyzer
	codec    *sharelink.Codec
}

// NewCoordinator creates a Coordinator. A nil codec uses sharelink defaults.
func NewCoordinator(analyzer Analyzer, codec *sharelink.Codec) *Coordinator {
	if codec == nil {
		codec = sharelink.NewCodec()
	}
	return &Coordinator{analyzer: analyzer, codec: codec}
}

// Codec returns the share-link codec in use.
func (c *Coordinator) Codec() *sharelink.Codec {
	return c.codec
}

// Analyze runs one analysis request and returns the final state.
func (c *Coordinator) Analyze(ctx context.Context, state State, rawTitle string) State {
	return c.AnalyzeWithProgress(ctx, state, rawTitle, nil)
}

// AnalyzeWithProgress is Analyze with a hook that observes the loading state
// before the remote call starts. A blank title never reaches the hook.
func (c *Coordinator) AnalyzeWithProgress(ctx context.Context, state State, rawTitle string, progress func(State)) State {
	title, err := analysis.NormalizeTitle(rawTitle)
	if err != nil {
		return state.RejectInput(err)
	}

	state = state.StartRequest(title)
	if progress != nil {
		progress(state)
	}

	result, err := c.analyzer.RequestAnalysis(ctx, title)
	if err != nil {
		if errors.Is(err, analysis.ErrEmptyInput) {
			return state.RejectInput(err)
		}
		return state.FailRequest(err)
	}
	return state.CompleteRequest(result)
}

// Load runs the page-load state machine: with no token the state is returned
// unchanged; otherwise exactly one decode is attempted. The boolean reports
// whether a token was consumed, in which case the address should be stripped.
func (c *Coordinator) Load(state State, query url.Values) (State, bool) {
	token, ok := sharelink.TokenFromQuery(query)
	if !ok {
		return state, false
	}
	return state.DecodeFromLink(token, c.codec), true
}

// ShareURL returns the share link for the state's current result.
func (c *Coordinator) ShareURL(base string, state State) (string, error) {
	if state.Result == nil {
		return "", errors.New("no analysis to share")
	}
	return c.codec.ShareURL(base, state.Result)
}
