// Package analysis turns a job title into a validated career analysis by making
// one schema-constrained call to the configured AI provider.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-advisor/internal/llm"
	"github.com/jonathan/career-advisor/internal/logging"
	"github.com/jonathan/career-advisor/internal/prompts"
	"github.com/jonathan/career-advisor/internal/schemas"
	"github.com/jonathan/career-advisor/internal/types"
	rootschemas "github.com/jonathan/career-advisor/schemas"
	"github.com/sirupsen/logrus"
)

// DefaultTemperature matches the sampling temperature the analysis prompt was tuned for.
const DefaultTemperature float32 = 0.7

var (
	responseSchema     *llm.Schema
	responseSchemaErr  error
	responseSchemaOnce sync.Once
)

// ResponseSchema returns the structured-output schema sent with every request.
// It is derived from the same embedded JSON Schema that validates responses.
func ResponseSchema() (*llm.Schema, error) {
	responseSchemaOnce.Do(func() {
		data, err := rootschemas.Read(rootschemas.AnalysisResultFile)
		if err != nil {
			responseSchemaErr = err
			return
		}
		responseSchema, responseSchemaErr = llm.ParseSchema(data)
	})
	return responseSchema, responseSchemaErr
}

// BuildPrompt renders the fixed analysis instructions for a job title.
func BuildPrompt(jobTitle string) string {
	template := prompts.MustGet("analysis.json", "analyze-job-field")
	return prompts.Format(template, map[string]string{
		"JobTitle": jobTitle,
	})
}

// Requester performs analysis requests against an llm.Client.
// It is safe for concurrent use when the client is.
type Requester struct {
	client llm.Client
	schema *llm.Schema
	logger *logrus.Logger

	// Tier selects the provider model. Defaults to llm.TierStandard.
	Tier llm.ModelTier
	// Temperature is sent with every request.
	Temperature float32
	// Timeout bounds a single request. Zero means the caller's context alone applies.
	Timeout time.Duration
}

// Option configures a Requester.
type Option func(*Requester)

// WithLogger sets the logger used for per-request entries.
func WithLogger(logger *logrus.Logger) Option {
	return func(r *Requester) { r.logger = logger }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(r *Requester) { r.Timeout = d }
}

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float32) Option {
	return func(r *Requester) { r.Temperature = t }
}

// WithTier overrides the model tier.
func WithTier(tier llm.ModelTier) Option {
	return func(r *Requester) { r.Tier = tier }
}

// NewRequester creates a Requester for the given client
func NewRequester(client llm.Client, opts ...Option) (*Requester, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}

	schema, err := ResponseSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to load response schema: %w", err)
	}

	r := &Requester{
		client:      client,
		schema:      schema,
		logger:      logging.Discard(),
		Tier:        llm.TierStandard,
		Temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RequestAnalysis asks the remote service for an analysis of jobTitle.
// Blank titles fail with ErrEmptyInput before any remote call. Every other
// failure is a *RemoteServiceError. The returned result carries the
// normalized title as JobTitle.
func (r *Requester) RequestAnalysis(ctx context.Context, jobTitle string) (*types.AnalysisResult, error) {
	title, err := NormalizeTitle(jobTitle)
	if err != nil {
		return nil, err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	entry := r.logger.WithFields(logrus.Fields{
		"analysis_id": uuid.NewString(),
		"job_title":   title,
		"model":       r.client.GetModel(r.Tier),
	})
	start := time.Now()

	result, err := r.request(ctx, title)
	entry = entry.WithField("duration", time.Since(start))
	if err != nil {
		var remoteErr *RemoteServiceError
		if errors.As(err, &remoteErr) {
			entry = entry.WithField("stage", remoteErr.Stage)
		}
		entry.WithError(err).Warn("Analysis request failed")
		return nil, err
	}

	entry.WithFields(logrus.Fields{
		"courses":     len(result.RecommendedCourses),
		"apis":        len(result.RelevantAPIs),
		"communities": len(result.OnlineCommunities),
	}).Info("Analysis request completed")
	return result, nil
}

func (r *Requester) request(ctx context.Context, title string) (*types.AnalysisResult, error) {
	temperature := r.Temperature
	text, err := r.client.GenerateJSON(ctx, llm.JSONRequest{
		Prompt:      BuildPrompt(title),
		Schema:      r.schema,
		Temperature: &temperature,
		Tier:        r.Tier,
	})
	if err != nil {
		message := "failed to generate analysis"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			message = "analysis request timed out"
		}
		return nil, &RemoteServiceError{Stage: StageCall, Message: message, Cause: err}
	}

	return ParseResponse(text, title)
}

// ParseResponse validates raw response text and converts it into a result whose
// JobTitle is set to title.
func ParseResponse(text, title string) (*types.AnalysisResult, error) {
	document := []byte(text)
	if !json.Valid(document) {
		return nil, &RemoteServiceError{Stage: StageParse, Message: "response is not valid JSON"}
	}

	if err := schemas.ValidateAnalysisResult(document); err != nil {
		return nil, &RemoteServiceError{Stage: StageValidate, Message: "response does not match the analysis schema", Cause: err}
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(document, &result); err != nil {
		return nil, &RemoteServiceError{Stage: StageParse, Message: "failed to decode response", Cause: err}
	}

	result.JobTitle = title
	if err := result.Validate(); err != nil {
		return nil, &RemoteServiceError{Stage: StageValidate, Message: "response failed validation", Cause: err}
	}

	return &result, nil
}
