// Package http wires Ledgerly's handlers, middleware, and templates into a
// single server. Pages are rendered server-side from embedded templates; a
// handful of endpoints speak JSON for the dashboard's calendar, search, and
// suggestion widgets.
package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"ledgerly/internal/auth"
	"ledgerly/internal/events"
	"ledgerly/internal/log"
	"ledgerly/internal/storage"
	"ledgerly/web"
)

// EventPublisher pushes transaction events onto the export bus. A nil
// publisher disables exporting without touching the handlers.
type EventPublisher interface {
	Publish(ctx context.Context, ev *events.TransactionEvent) error
}

type Server struct {
	httpServer *http.Server
	repo       *storage.Repository
	sessions   *auth.Sessions
	publisher  EventPublisher
	templates  *template.Template
	limiter    *rateLimiter
	logger     *log.Logger
}

func NewServer(port string, repo *storage.Repository, sessions *auth.Sessions, publisher EventPublisher, logger *log.Logger) (*Server, error) {
	templates, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		templates: templates,
		limiter:   newRateLimiter(),
		logger:    logger.WithComponent(log.ComponentHTTP),
	}

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.withMiddleware(s.routes()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	requireUser := s.sessions.RequireUser

	mux.HandleFunc("GET /{$}", requireUser(s.handleDashboard))
	mux.HandleFunc("POST /{$}", requireUser(s.handleDashboardPost))

	mux.HandleFunc("GET /transactions", requireUser(s.handleTransactionList))
	mux.HandleFunc("GET /transactions/calendar", requireUser(s.handleCalendarData))
	mux.HandleFunc("GET /transactions/{id}", requireUser(s.handleTransactionDetail))
	mux.HandleFunc("POST /transactions/{id}", requireUser(s.handleTransactionUpdate))
	mux.HandleFunc("GET /transactions/{id}/delete", requireUser(s.handleTransactionDeleteConfirm))
	mux.HandleFunc("POST /transactions/{id}/delete", requireUser(s.handleTransactionDelete))

	mux.HandleFunc("GET /search", requireUser(s.handleSearch))
	mux.HandleFunc("GET /suggestions", requireUser(s.handleSuggestions))

	mux.HandleFunc("GET /settings/currency", requireUser(s.handleCurrencySettings))
	mux.HandleFunc("POST /settings/currency", requireUser(s.handleCurrencyUpdate))
	mux.HandleFunc("GET /account/clear-history", requireUser(s.handleClearHistoryConfirm))
	mux.HandleFunc("POST /account/clear-history", requireUser(s.handleClearHistory))
	mux.HandleFunc("GET /account/delete", requireUser(s.handleDeleteAccountConfirm))
	mux.HandleFunc("POST /account/delete", requireUser(s.handleDeleteAccount))

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /signup", s.handleSignupPage)
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.Handle("GET /static/", http.FileServerFS(web.Static))

	return mux
}

// render executes a template into a buffer first so a template error can
// still produce a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render template", log.FieldError, err, "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderToString executes a template fragment for JSON-embedded HTML.
func (s *Server) renderToString(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// publishEvent fires a transaction event at the export bus. Publish failures
// are logged and swallowed; exporting never fails the originating request.
func (s *Server) publishEvent(ctx context.Context, userID, txnID uint, action string) {
	if s.publisher == nil {
		return
	}
	ev := events.NewTransactionEvent(userID, txnID, action)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Error("publish transaction event",
			log.FieldError, err,
			log.FieldUserID, userID,
			log.FieldTxnID, txnID,
			"action", action,
		)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		s.renderJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.renderJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the full middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
