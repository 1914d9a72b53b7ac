package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-advisor/internal/advisor"
	"github.com/jonathan/career-advisor/internal/config"
	"github.com/jonathan/career-advisor/internal/logging"
	"github.com/jonathan/career-advisor/internal/server/ratelimit"
	"github.com/jonathan/career-advisor/internal/sharelink"
)

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	router          chi.Router
	coordinator     *advisor.Coordinator
	rateLimiter     *ratelimit.Limiter
	logger          *logrus.Logger
	pages           *template.Template
	publicBaseURL   string
	shutdownTimeout time.Duration
}

// Config holds server configuration
type Config struct {
	Settings config.ServerConfig
	// Analyzer performs the remote analysis. Required.
	Analyzer advisor.Analyzer
	// Codec encodes share links. Nil uses the sharelink defaults.
	Codec  *sharelink.Codec
	Logger *logrus.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	shutdownTimeout := cfg.Settings.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = config.DefaultShutdownTimeout
	}

	s := &Server{
		coordinator:     advisor.NewCoordinator(cfg.Analyzer, cfg.Codec),
		rateLimiter:     ratelimit.NewLimiter(ratelimit.FromSettings(cfg.Settings.RateLimit)),
		logger:          logger,
		pages:           pages,
		publicBaseURL:   cfg.Settings.PublicBaseURL,
		shutdownTimeout: shutdownTimeout,
	}
	s.router = s.routes(cfg.Settings.AllowedOrigins)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Settings.Port),
		Handler:           s.router,
		ReadTimeout:       cfg.Settings.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Settings.WriteTimeout, // Must outlast a remote analysis
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.withLogging)
	r.Use(middleware.Recoverer)
	r.Use(withCORS(allowedOrigins))
	r.Use(s.withRateLimit)

	r.Get("/", s.handleIndex)
	r.Post("/analyze", s.handleAnalyzeForm)
	r.Get("/health", s.handleHealth)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS()))))

	r.Route("/api", func(r chi.Router) {
		r.Post("/analysis", s.handleAnalysis)
		r.Post("/analysis/stream", s.handleAnalysisStream)
		r.Post("/share", s.handleCreateShare)
		r.Get("/share/{token}", s.handleGetShare)
	})

	return r
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured port until ctx is cancelled or the process
// receives SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.WithField("addr", ln.Addr().String()).Info("Server starting")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()

	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()
	s.logger.Info("Server stopped")
	return err
}

// withCORS allows cross-origin calls to the JSON API.
func withCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging logs one line per request with the status it finished with.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		entry := s.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"remote_ip":  s.extractClientID(r),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request completed")
		case status >= http.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Error encoding JSON response")
	}
}

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, code, message string) {
	s.jsonResponse(w, status, errorBody{Error: code, Message: message})
}

// writeError maps err to its status and code and writes it as JSON.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.logError(r, err)

	body := errorBody{Error: ErrorCode(err), Message: userMessage(err)}
	var linkErr *sharelink.InvalidShareLinkError
	if errors.As(err, &linkErr) {
		body.Reason = string(linkErr.Reason)
	}
	s.jsonResponse(w, HTTPStatus(err), body)
}

func (s *Server) logError(r *http.Request, err error) {
	entry := s.logger.WithError(err).WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"code":       ErrorCode(err),
	})
	if HTTPStatus(err) >= http.StatusInternalServerError {
		entry.Error("request failed")
		return
	}
	entry.Warn("request rejected")
}

// userMessage returns the text shown to API clients. Internal errors are not echoed.
func userMessage(err error) string {
	switch ErrorCode(err) {
	case CodeEmptyInput, CodeRemoteService, CodeInvalidShareLink:
		return advisor.Message(err)
	case CodeInvalidAnalysis, CodeInvalidRequest:
		return err.Error()
	default:
		return "internal server error"
	}
}

// baseURL returns the address share links are built on.
func (s *Server) baseURL(r *http.Request) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

// extractClientID extracts the client identifier from the request.
// middleware.RealIP has already replaced RemoteAddr with the forwarded address when present.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		retryAfter := int(info.RetryAfter.Round(time.Second).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		response["retry_after"] = retryAfter
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"client":     s.extractClientID(r),
		"path":       r.URL.Path,
		"limit":      info.Limit,
		"reset_at":   info.ResetTime.Format(time.RFC3339),
	}).Warn("Rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
