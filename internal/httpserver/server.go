// internal/httpserver/server.go
//
// HTTP server wiring for the spelling quiz.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts, access log).
//   - HTML pages: "/" (new round), "/check" (result), "/reset".
//   - JSON API under /api: round, guess, reset, session (get/delete).
//   - Image files from the catalog under /images/.
//   - Diagnostics: /health, /debug/catalog, /openapi.json, /docs.
//
// Notes:
//   - Every request gets a session (signed cookie, see cookie.go). Session
//     state itself lives in the quiz service's store.
//   - CORS is only enabled for /api when an origin is configured.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/spellquiz/internal/quiz"
)

// Options tunes the server; zero values fall back to defaults.
type Options struct {
	Addr           string
	SessionSecret  string
	CookieName     string
	CookieSecure   bool
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	CORSOrigin     string
	Logger         *zerolog.Logger
}

// Server bundles router, quiz service and the underlying http.Server.
type Server struct {
	r       *chi.Mux
	quiz    *quiz.Service
	cookies *cookieCodec
	srv     *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc *quiz.Service, opts Options) (*Server, error) {
	if opts.CookieName == "" {
		opts.CookieName = "spellquiz_session"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = &log.Logger
	}
	cookies, err := newCookieCodec(opts.SessionSecret, opts.CookieName, opts.CookieSecure, opts.SessionTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{r: chi.NewRouter(), quiz: svc, cookies: cookies}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(*opts.Logger))      // request-scoped logger
	s.r.Use(accessLog)                          // one line per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time

	// --- diagnostics ---
	s.r.Get("/health", s.handleHealth)
	s.r.Get("/debug/catalog", s.handleDebugCatalog)
	s.r.Get("/openapi.json", handleOpenAPI())
	s.r.Mount("/docs", handleSwaggerUI())

	// --- images ---
	s.r.Handle("/images/*", http.StripPrefix("/images/", imageServer(svc.Catalog())))

	// --- pages (session required) ---
	s.r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/", s.handleIndex)
		r.Post("/check", s.handleCheck)
		r.Post("/reset", s.handleResetPage)
	})

	// --- JSON API (session required) ---
	s.r.Route("/api", func(r chi.Router) {
		if opts.CORSOrigin != "" {
			r.Use(cors(opts.CORSOrigin))
		}
		r.Use(s.withSession)
		r.Post("/round", s.handleAPIRound)
		r.Post("/guess", s.handleAPIGuess)
		r.Post("/reset", s.handleAPIReset)
		r.Get("/session", s.handleAPISession)
		r.Delete("/session", s.handleAPIEnd)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Run listens and serves until Shutdown is called.
func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits up to 10s for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// ----------------------------- middleware ----------------------------------

// accessLog writes one structured line per request through the hlog logger.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("bytes", size).
		Dur("duration", d).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("http request")
})

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withSession resolves the session cookie into a session id on the context,
// issuing a new session when the cookie is missing or invalid. Cookies past
// half their lifetime are re-issued so active players keep their score.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		refresh := true
		if c, err := r.Cookie(s.cookies.name); err == nil && c.Value != "" {
			id, claims, err := s.cookies.verify(c.Value)
			if err == nil {
				sid = id
				refresh = claims.ExpiresAt.Time.Sub(s.cookies.now()) < s.cookies.ttl/2
			} else {
				hlog.FromRequest(r).Debug().Err(err).Msg("discarding session cookie")
			}
		}
		if sid == "" {
			sid = genID()
		}
		if refresh {
			if err := s.cookies.write(w, sid); err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("sign session cookie")
				writeError(w, http.StatusInternalServerError, "session_failed")
				return
			}
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ------------------------------ diagnostics --------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Images: s.quiz.Catalog().Len()})
}

func (s *Server) handleDebugCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"entries": s.quiz.Catalog().Len()})
}
