package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/jonathan/career-advisor/internal/advisor"
	"github.com/jonathan/career-advisor/internal/sharelink"
	"github.com/jonathan/career-advisor/internal/types"
)

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

func parsePages() (*template.Template, error) {
	return template.New("pages").ParseFS(webFS, "web/templates/*.html")
}

func staticFS() fs.FS {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	return sub
}

// PageView is the data behind the single page. Phase picks the welcome
// message; the error banner and the result render independently because a
// rejected empty title keeps the previous result on screen.
type PageView struct {
	Phase        string
	JobTitle     string
	ErrorMessage string
	Result       *types.AnalysisResult
	ShareURL     string
	// ShareToken round-trips the current result through the search form.
	ShareToken string
	// StripURL, when set, replaces the address bar after a share link is consumed.
	StripURL string
}

func (s *Server) newPageView(r *http.Request, state advisor.State) PageView {
	view := PageView{
		Phase:        state.Phase().String(),
		JobTitle:     state.JobTitle,
		ErrorMessage: state.ErrorMessage(),
	}
	if state.Result != nil {
		view.Result = state.Result
		if resp, err := s.shareResponse(r, state.Result); err == nil {
			view.ShareURL = resp.ShareURL
			view.ShareToken = resp.ShareToken
		} else {
			s.logError(r, err)
		}
	}
	return view
}

// handleIndex renders the page, consuming a share link if the query has one.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	state, consumed := s.coordinator.Load(advisor.State{}, r.URL.Query())

	view := s.newPageView(r, state)
	if consumed {
		view.StripURL = sharelink.StripToken(r.URL)
		if state.Err != nil {
			s.logError(r, state.Err)
		}
	}
	s.renderPage(w, http.StatusOK, view)
}

// handleAnalyzeForm handles the no-script form submit. The hidden analysis
// field carries the result on screen so an empty title can keep it.
func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxShareRequestBytes)
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "form", Message: err.Error()})
		return
	}

	previous, _ := s.coordinator.Load(advisor.State{}, url.Values{sharelink.ParamName: {r.PostForm.Get(sharelink.ParamName)}})
	if previous.Err != nil {
		previous = advisor.State{}
	}

	state := s.coordinator.Analyze(r.Context(), previous, r.PostForm.Get("jobTitle"))

	status := http.StatusOK
	if state.Err != nil {
		s.logError(r, state.Err)
		status = HTTPStatus(state.Err)
	}
	s.renderPage(w, status, s.newPageView(r, state))
}

func (s *Server) renderPage(w http.ResponseWriter, status int, view PageView) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "index.html", view); err != nil {
		s.logger.WithError(err).Error("Error rendering page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w) //nolint:errcheck
}
