package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appinspection "github.com/bryanwahyu/archscope/internal/application/inspection"
	"github.com/bryanwahyu/archscope/internal/application/session"
	"github.com/bryanwahyu/archscope/internal/domain/ai"
	"github.com/bryanwahyu/archscope/internal/domain/inspection"
	"github.com/bryanwahyu/archscope/internal/domain/stages"
	"github.com/bryanwahyu/archscope/internal/middleware"
)

// ErrorHint accompanies every failed analysis.
const ErrorHint = "Please make sure your API key is valid and the image is clear and properly formatted."

var errNotFound = errors.New("not found")

// attemptError marks a failure of an analysis attempt. Every such failure
// is reported with the hint, input problems included.
type attemptError struct{ err error }

func (e attemptError) Error() string { return e.err.Error() }
func (e attemptError) Unwrap() error { return e.err }

type Options struct {
	Sessions       *session.Registry
	Metrics        *middleware.Metrics
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	Logger         *slog.Logger
	Checkers       map[string]middleware.HealthChecker
	AllowedOrigins []string
	MaxUploadBytes int64
	HistoryDisplay int
}

type Router struct {
	svc  *appinspection.Service
	opts Options
}

func NewRouter(svc *appinspection.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = middleware.NewMetrics()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewRegistry(session.DefaultTTL)
	}
	if opts.HistoryDisplay <= 0 {
		opts.HistoryDisplay = session.DefaultDisplay
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Metrics.ActiveSessions == nil {
		opts.Metrics.ActiveSessions = opts.Sessions.Active
	}

	r := &Router{svc: svc, opts: opts}
	mux := chi.NewRouter()

	mux.Use(opts.Metrics.Middleware)
	mux.Use(middleware.Logging(opts.Logger))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.SessionHeader},
		ExposedHeaders:   []string{middleware.SessionHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.HealthHandler(opts.Checkers))
	mux.Get("/metrics", opts.Metrics.Handler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Get("/stages", r.wrap(r.handleStages))
		rt.Get("/stages/{name}", r.wrap(r.handleStage))

		rt.Group(func(sr chi.Router) {
			sr.Use(middleware.Session(opts.Sessions))
			if opts.RateLimiter != nil {
				sr.With(opts.RateLimiter.Middleware).Post("/analyses", r.wrap(r.handleAnalyze))
			} else {
				sr.Post("/analyses", r.wrap(r.handleAnalyze))
			}
			sr.Get("/analyses", r.wrap(r.handleHistory))
			sr.Get("/analyses/{id}", r.wrap(r.handleGet))
			sr.Get("/analyses/{id}/download", r.wrap(r.handleDownload))
			sr.Delete("/session", r.wrap(r.handleEndSession))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// errorBody is the single user-visible failure shape.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Hint  string `json:"hint,omitempty"`
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status, body := errorResponse(err)
			if status >= 500 {
				r.opts.Logger.Error("request failed", "path", req.URL.Path, "kind", body.Kind, "error", err)
			}
			writeJSON(w, status, body)
		}
	}
}

func errorResponse(err error) (int, errorBody) {
	var attempt attemptError
	inAttempt := errors.As(err, &attempt)

	switch {
	case errors.Is(err, errNotFound), errors.Is(err, stages.ErrUnknownStage):
		return http.StatusNotFound, errorBody{Error: err.Error(), Kind: "not_found"}
	case errors.Is(err, inspection.ErrValidation):
		body := errorBody{Error: err.Error(), Kind: "validation"}
		if inAttempt {
			body.Error = "Error during analysis: " + body.Error
			body.Hint = ErrorHint
		}
		return http.StatusBadRequest, body
	}

	body := errorBody{Error: "Error during analysis: " + err.Error(), Kind: ai.KindOf(err), Hint: ErrorHint}
	switch {
	case errors.Is(err, ai.ErrQuotaExceeded):
		return http.StatusTooManyRequests, body
	case errors.Is(err, ai.ErrCredential), errors.Is(err, ai.ErrMalformedResponse):
		return http.StatusBadGateway, body
	case errors.Is(err, ai.ErrServiceRejected):
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, ai.ErrTransport):
		return http.StatusGatewayTimeout, body
	}
	return http.StatusInternalServerError, body
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
