package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/azenia/website/internal/config"
	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/jobboard"
	"github.com/azenia/website/internal/logger"
	"github.com/azenia/website/internal/metrics"
	"github.com/azenia/website/internal/relay"
	"github.com/azenia/website/internal/server/middleware"
	"github.com/azenia/website/internal/server/ratelimit"
	"github.com/azenia/website/internal/site"
	"github.com/azenia/website/internal/types"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// maxUploadBody bounds multipart bodies carrying a resume or logo.
const maxUploadBody = 10 << 20

// Deps are the collaborators a Server is built from. Store and Config are
// required; the rest have working defaults.
type Deps struct {
	Config   *config.Config
	Store    Store
	Uploader Uploader
	// Mailer may be nil, in which case notification emails are skipped.
	Mailer relay.Mailer
	// RateLimit defaults to ratelimit.LoadConfig().
	RateLimit *ratelimit.Config
	// CacheTTL defaults to jobboard.DefaultTTL.
	CacheTTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	handler       http.Handler
	store         Store
	uploader      Uploader
	buckets       config.StoreConfig
	cache         *jobboard.Cache
	contacts      *relay.ContactRelay
	applicants    *relay.ApplicationRelay
	renderer      *site.Renderer
	rateLimiter   *ratelimit.Limiter
	jwtService    *JWTService
	tokens        middleware.TokenValidator
	adminSvc      *AdminService
	authHandler   *AuthHandler
	formValidator *validator.Validate
}

// New creates a new server instance
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if deps.Store == nil {
		return nil, errors.New("server: store is required")
	}
	cfg := deps.Config

	renderer, err := site.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load page templates: %w", err)
	}

	rlConfig := deps.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}

	mailOpts := relay.Options{From: cfg.Email.From, To: cfg.Email.To, Now: deps.Now}

	s := &Server{
		store:         deps.Store,
		uploader:      deps.Uploader,
		buckets:       cfg.Store,
		cache:         jobboard.NewCache(deps.Store, deps.CacheTTL),
		contacts:      relay.NewContactRelay(deps.Store, deps.Mailer, mailOpts),
		applicants:    relay.NewApplicationRelay(deps.Mailer, mailOpts),
		renderer:      renderer,
		rateLimiter:   ratelimit.NewLimiter(rlConfig),
		jwtService:    NewJWTService(cfg.Auth),
		adminSvc:      NewAdminService(deps.Store, cfg.Auth),
		formValidator: newTagValidator("form"),
	}
	s.tokens = s.jwtService.AsTokenValidator()
	s.authHandler = NewAuthHandler(s.adminSvc, s.jwtService)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.routes())))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /static/", site.StaticHandler())

	// Jobs endpoint. Method dispatch happens in the handler so unsupported
	// methods get the JSON 405 envelope.
	mux.HandleFunc("/api/jobs", s.handleJobs)
	mux.HandleFunc("/functions/v1/manage-jobs", s.handleJobs)

	// Contact/partner relay
	mux.HandleFunc("/api/contact", s.handleContactAPI)
	mux.HandleFunc("/functions/v1/send-contact-email", s.handleContactAPI)

	// Applications
	mux.HandleFunc("/api/applications/notify", s.handleApplicationNotify)
	mux.HandleFunc("/functions/v1/send-application-email", s.handleApplicationNotify)
	mux.HandleFunc("POST /api/applications", s.handleCreateApplication)

	// Client logos
	mux.HandleFunc("/api/logos", s.handleLogos)
	mux.HandleFunc("/api/logos/{id}", s.handleLogo)

	// Auth
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.Handle("GET /api/auth/me", s.requireAdminJSON(http.HandlerFunc(s.authHandler.Me)))

	// Pages
	for _, route := range site.Routes() {
		pattern := "GET " + route.Path
		if route.Path == "/" {
			pattern = "GET /{$}"
		}
		var h http.Handler = s.pageHandler(route)
		if route.RequiresAuth {
			h = s.requireAdminPage(h)
		}
		mux.Handle(pattern, h)
	}
	mux.HandleFunc("/", s.handleNotFound)

	// Form posts behind the pages
	mux.HandleFunc("POST /contact", s.handleSubmissionForm(db.SubmissionTypeContact))
	mux.HandleFunc("POST /partner", s.handleSubmissionForm(db.SubmissionTypePartner))
	mux.HandleFunc("POST /jobs/apply", s.handleApplyForm)
	mux.HandleFunc("POST /login", s.handleLoginForm)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.Handle("POST /admin/jobs", s.requireAdminPage(http.HandlerFunc(s.handleAdminSaveJob)))
	mux.Handle("POST /admin/jobs/delete", s.requireAdminPage(http.HandlerFunc(s.handleAdminDeleteJob)))
	mux.Handle("POST /admin/logos", s.requireAdminPage(http.HandlerFunc(s.handleAdminCreateLogo)))
	mux.Handle("POST /admin/logos/delete", s.requireAdminPage(http.HandlerFunc(s.handleAdminDeleteLogo)))

	return mux
}

// Handler returns the complete middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens until ctx is canceled or the process receives SIGINT or
// SIGTERM, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.httpServer.Addr).Info("Server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.Close()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()

	log.Info("Server stopped")
	return nil
}

// Close releases background resources. The store is owned by the caller.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// withCORS adds CORS headers and answers preflight requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// setCORSHeaders allows any origin to call the JSON endpoints.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Client-Info, Apikey")
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

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.ResponseWriter.Write(b)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// withLogging logs each request and records request metrics.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		// r.Pattern is set by the mux on this same request.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsCounter.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   status,
			"duration": elapsed,
			"remote":   r.RemoteAddr,
		})
		if status >= http.StatusInternalServerError {
			entry.Warn("Request failed")
			return
		}
		entry.Debug("Request completed")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.store.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeEnvelope writes an API envelope.
func writeEnvelope(w http.ResponseWriter, status int, body types.Envelope) {
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("Error encoding JSON response")
	}
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// successResponse writes {success:true, data}.
func (s *Server) successResponse(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, types.OK(data))
}

// messageResponse writes {success:true, message}.
func (s *Server) messageResponse(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, types.Envelope{Success: true, Message: message})
}

// errorResponse writes {success:false, error}.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, types.Fail(message))
}

// methodNotAllowed writes the 405 envelope.
func (s *Server) methodNotAllowed(w http.ResponseWriter) {
	s.errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// sessionAdmin resolves the request's session to an admin account that still
// exists. Tokens outlive deleted accounts, so the row is checked every time.
func (s *Server) sessionAdmin(r *http.Request) (uuid.UUID, error) {
	adminID, err := middleware.Authenticate(r, s.tokens)
	if err != nil {
		return uuid.Nil, &ErrUnauthorized{Err: err}
	}
	if _, err := s.adminSvc.Get(r.Context(), adminID); err != nil {
		var notFound *ErrNotFound
		if errors.As(err, &notFound) {
			return uuid.Nil, &ErrUnauthorized{Err: err}
		}
		return uuid.Nil, err
	}
	return adminID, nil
}

// requireAdminAPI returns the admin behind the request's session, answering
// 401 when there is none and 500 when the account cannot be checked.
func (s *Server) requireAdminAPI(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	adminID, err := s.sessionAdmin(r)
	if err != nil {
		if HTTPStatus(err) == http.StatusInternalServerError {
			s.storeError(w, err, "Failed to verify admin session")
			return uuid.Nil, false
		}
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return adminID, true
}

// requireAdminJSON wraps next so it only runs for a valid admin session.
func (s *Server) requireAdminJSON(next http.Handler) http.Handler {
	unauthorized := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
	})
	return middleware.AuthMiddleware(s.tokens, unauthorized)(next)
}

// requireAdminPage redirects to the login page without a valid admin session.
func (s *Server) requireAdminPage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminID, err := s.sessionAdmin(r)
		if err != nil {
			if HTTPStatus(err) == http.StatusInternalServerError {
				log.WithFields(log.Fields{
					logger.ErrorTypeField: logger.ErrorTypeDB,
				}).WithError(err).Error("Failed to verify admin session")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			target := "/login"
			if r.Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(middleware.WithAdminID(r.Context(), adminID)))
	})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
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
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests envelope.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	// The limiter runs outside the CORS middleware.
	setCORSHeaders(w)
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(info.RetryAfter.Seconds()))))
	}

	log.WithFields(log.Fields{
		"client":   s.extractClientID(r),
		"path":     r.URL.Path,
		"limit":    info.Limit,
		"reset_at": info.ResetTime.Format(time.RFC3339),
	}).Warn("Rate limit exceeded")

	s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}
