package analysis

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/career-advisor/internal/llm"
	"github.com/jonathan/career-advisor/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient records requests and answers with a canned response.
type mockClient struct {
	mu       sync.Mutex
	response string
	err      error
	delay    time.Duration
	requests []llm.JSONRequest
}

func (m *mockClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return m.GenerateJSON(ctx, llm.JSONRequest{Prompt: prompt, Tier: tier})
}

func (m *mockClient) GenerateJSON(ctx context.Context, req llm.JSONRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.response, m.err
}

func (m *mockClient) GetModel(tier llm.ModelTier) string { return "mock-" + string(tier) }

func (m *mockClient) Close() error { return nil }

func (m *mockClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

const validResponse = `{
	"jobTitle": "Graphic Designer",
	"aiImpact": "Generative tools speed up ideation.",
	"skillHistory": "From print layout to design systems.",
	"currentAiDevelopments": "Diffusion models and layout assistants.",
	"recommendedCourses": [
		{"name": "Design Basics", "platform": "Coursera", "url": "https://example.com/c", "isFree": true},
		{"name": "AI for Designers", "platform": "Udemy", "url": "https://example.com/u", "isFree": false}
	],
	"relevantApis": [
		{"name": "Color API", "description": "Palettes on demand.", "url": "https://example.com/a"}
	],
	"onlineCommunities": [
		{"name": "r/graphic_design", "platform": "Reddit", "url": "https://reddit.com/r/graphic_design"}
	]
}`

func TestRequestAnalysis_Success(t *testing.T) {
	client := &mockClient{response: validResponse}
	requester, err := NewRequester(client)
	require.NoError(t, err)

	result, err := requester.RequestAnalysis(context.Background(), "  Graphic   Designer ")
	require.NoError(t, err)

	assert.Equal(t, "Graphic Designer", result.JobTitle)
	assert.Equal(t, "Generative tools speed up ideation.", result.AIImpact)
	require.Len(t, result.RecommendedCourses, 2)
	assert.True(t, result.RecommendedCourses[0].IsFree)
	assert.False(t, result.RecommendedCourses[1].IsFree)
	assert.Equal(t, "Reddit", result.OnlineCommunities[0].Platform)

	require.Equal(t, 1, client.calls())
	req := client.requests[0]
	assert.Contains(t, req.Prompt, `"Graphic Designer"`)
	assert.Equal(t, llm.TierStandard, req.Tier)
	require.NotNil(t, req.Temperature)
	assert.Equal(t, DefaultTemperature, *req.Temperature)
	require.NotNil(t, req.Schema)
	assert.Equal(t, llm.TypeObject, req.Schema.Type)
	assert.Len(t, req.Schema.Required, 7)
}

func TestRequestAnalysis_JobTitleFollowsRequest(t *testing.T) {
	response := strings.Replace(validResponse, `"Graphic Designer"`, `"Designer (graphic)"`, 1)
	client := &mockClient{response: response}
	requester, err := NewRequester(client)
	require.NoError(t, err)

	result, err := requester.RequestAnalysis(context.Background(), "Développeur 👩‍💻")
	require.NoError(t, err)
	assert.Equal(t, "Développeur 👩‍💻", result.JobTitle)
}

func TestRequestAnalysis_EmptyInput(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		client := &mockClient{response: validResponse}
		requester, err := NewRequester(client)
		require.NoError(t, err)

		_, err = requester.RequestAnalysis(context.Background(), title)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Equal(t, 0, client.calls(), "no remote call for %q", title)
	}
}

func TestRequestAnalysis_RemoteFailures(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		err       error
		wantStage Stage
	}{
		{
			name:      "transport error",
			err:       errors.New("503 service unavailable"),
			wantStage: StageCall,
		},
		{
			name:      "empty candidate",
			err:       llm.ErrEmptyResponse,
			wantStage: StageCall,
		},
		{
			name:      "not json",
			response:  "The AI is busy right now.",
			wantStage: StageParse,
		},
		{
			name:      "missing field",
			response:  strings.Replace(validResponse, `"skillHistory": "From print layout to design systems.",`, "", 1),
			wantStage: StageValidate,
		},
		{
			name:      "wrong type",
			response:  strings.Replace(validResponse, `"isFree": true`, `"isFree": "true"`, 1),
			wantStage: StageValidate,
		},
		{
			name:      "empty string field",
			response:  strings.Replace(validResponse, `"Generative tools speed up ideation."`, `""`, 1),
			wantStage: StageValidate,
		},
		{
			name:      "array instead of object",
			response:  `[` + validResponse + `]`,
			wantStage: StageValidate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{response: tt.response, err: tt.err}
			requester, err := NewRequester(client)
			require.NoError(t, err)

			result, err := requester.RequestAnalysis(context.Background(), "Nurse")
			require.Error(t, err)
			assert.Nil(t, result)

			var remoteErr *RemoteServiceError
			require.ErrorAs(t, err, &remoteErr)
			assert.Equal(t, tt.wantStage, remoteErr.Stage)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
			assert.Equal(t, 1, client.calls(), "exactly one attempt")
		})
	}
}

func TestRequestAnalysis_Timeout(t *testing.T) {
	client := &mockClient{response: validResponse, delay: time.Second}
	requester, err := NewRequester(client, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = requester.RequestAnalysis(context.Background(), "Pilot")
	require.Error(t, err)

	var remoteErr *RemoteServiceError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, StageCall, remoteErr.Stage)
	assert.Contains(t, remoteErr.Message, "timed out")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestAnalysis_Options(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "info"}, &buf)
	require.NoError(t, err)

	client := &mockClient{response: validResponse}
	requester, err := NewRequester(client,
		WithLogger(logger),
		WithTemperature(0.2),
		WithTier(llm.TierAdvanced),
	)
	require.NoError(t, err)

	_, err = requester.RequestAnalysis(context.Background(), "Chef")
	require.NoError(t, err)

	req := client.requests[0]
	assert.Equal(t, float32(0.2), *req.Temperature)
	assert.Equal(t, llm.TierAdvanced, req.Tier)

	logged := buf.String()
	assert.Contains(t, logged, "Analysis request completed")
	assert.Contains(t, logged, "analysis_id=")
	assert.Contains(t, logged, "job_title=Chef")
	assert.Contains(t, logged, "model=mock-advanced")
}

func TestNewRequester_NilClient(t *testing.T) {
	_, err := NewRequester(nil)
	assert.Error(t, err)
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"Nurse", "Nurse", false},
		{"  data   scientist ", "data scientist", false},
		{"Développeur 👩‍💻", "Développeur 👩‍💻", false},
		{"", "", true},
		{" \t ", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeTitle(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrEmptyInput)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestRemoteServiceError_Error(t *testing.T) {
	err := &RemoteServiceError{Stage: StageCall, Message: "failed", Cause: errors.New("boom")}
	assert.Equal(t, "remote service error (call): failed: boom", err.Error())

	err = &RemoteServiceError{Stage: StageParse, Message: "not json"}
	assert.Equal(t, "remote service error (parse): not json", err.Error())
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Marine Biologist")
	assert.Contains(t, prompt, `"Marine Biologist"`)
	assert.Contains(t, prompt, "Recommended Courses")
	assert.NotContains(t, prompt, "{{.JobTitle}}")
}
