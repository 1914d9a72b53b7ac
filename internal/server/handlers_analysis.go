package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jonathan/career-advisor/internal/advisor"
	"github.com/jonathan/career-advisor/internal/types"
)

// Request body limits.
const (
	maxAnalysisRequestBytes = 16 << 10
	maxShareRequestBytes    = 256 << 10
)

// AnalysisRequest is the body of POST /api/analysis and /api/analysis/stream.
type AnalysisRequest struct {
	JobTitle string `json:"jobTitle"`
}

// AnalysisResponse carries a result and its share link.
type AnalysisResponse struct {
	Result     *types.AnalysisResult `json:"result"`
	ShareURL   string                `json:"shareUrl"`
	ShareToken string                `json:"shareToken"`
}

// StatusEvent is sent on the stream while a request is in flight.
type StatusEvent struct {
	State    string `json:"state"`
	JobTitle string `json:"jobTitle"`
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// handleAnalysis runs one analysis and returns the result with its share link.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := decodeJSON(w, r, &req, maxAnalysisRequestBytes); err != nil {
		s.writeError(w, r, err)
		return
	}

	state := s.coordinator.Analyze(r.Context(), advisor.State{}, req.JobTitle)
	if state.Err != nil {
		s.writeError(w, r, state.Err)
		return
	}

	resp, err := s.shareResponse(r, state.Result)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleAnalysisStream is handleAnalysis over Server-Sent Events: a loading
// status first, then a result or an error, then complete.
func (s *Server) handleAnalysisStream(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := decodeJSON(w, r, &req, maxAnalysisRequestBytes); err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	state := s.coordinator.AnalyzeWithProgress(r.Context(), advisor.State{}, req.JobTitle, func(st advisor.State) {
		sse.WriteEvent(EventStatus, StatusEvent{State: st.Phase().String(), JobTitle: st.JobTitle}) //nolint:errcheck
	})

	phase := state.Phase()
	if state.Err != nil {
		s.logError(r, state.Err)
		sse.WriteError(ErrorCode(state.Err), advisor.Message(state.Err))
	} else if resp, err := s.shareResponse(r, state.Result); err != nil {
		s.logError(r, err)
		sse.WriteError(ErrorCode(err), userMessage(err))
		phase = advisor.PhaseError
	} else {
		sse.WriteEvent(EventResult, resp) //nolint:errcheck
	}
	sse.WriteComplete(phase.String())
}

// handleCreateShare encodes a posted result into a share link.
func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	var result types.AnalysisResult
	if err := decodeJSON(w, r, &result, maxShareRequestBytes); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.shareResponse(r, &result)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"shareToken": resp.ShareToken,
		"shareUrl":   resp.ShareURL,
	})
}

// handleGetShare decodes a share token back into its result.
func (s *Server) handleGetShare(w http.ResponseWriter, r *http.Request) {
	result, err := s.coordinator.Codec().Decode(chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// shareResponse encodes result and builds its share URL.
func (s *Server) shareResponse(r *http.Request, result *types.AnalysisResult) (*AnalysisResponse, error) {
	codec := s.coordinator.Codec()

	token, err := codec.Encode(result)
	if err != nil {
		return nil, err
	}
	shareURL, err := codec.ShareURL(s.baseURL(r), result)
	if err != nil {
		return nil, err
	}
	return &AnalysisResponse{Result: result, ShareURL: shareURL, ShareToken: token}, nil
}
