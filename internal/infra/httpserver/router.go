package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	appanalysis "github.com/bryanwahyu/text-analyzer/internal/application/analysis"
	domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/text-analyzer/internal/middleware"
)

// maxBodyBytes caps the JSON body read by the analyze endpoint
const maxBodyBytes = 4 << 20

var errBodyTooLarge = errors.New("request body too large")

// Options configures the outer middleware stack.
type Options struct {
	Logger      zerolog.Logger
	CORSOrigins []string
	APIKeys     []string
	// RateLimiter nil disables rate limiting
	RateLimiter *middleware.RateLimiter
	Health      map[string]middleware.HealthChecker
}

type Router struct {
	svc *appanalysis.Service
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logger(&opts.Logger))
	mux.Use(middleware.MetricsMiddleware)
	if len(opts.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "x-functions-key"},
			MaxAge:         300,
		}))
	}
	if opts.RateLimiter != nil {
		mux.Use(middleware.RateLimit(opts.RateLimiter))
	}
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.Health))
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api", func(rt chi.Router) {
		analyze := r.wrap("Failed to store analysis", r.handleAnalyze)
		rt.Get("/TextAnalyzer", analyze)
		rt.Post("/TextAnalyzer", analyze)
		rt.Get("/GetAnalysisHistory", r.wrap("Failed to retrieve history", r.handleHistory))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type errorResponse struct {
	Error    string           `json:"error"`
	Details  string           `json:"details,omitempty"`
	HowToUse *domain.HowToUse `json:"howToUse,omitempty"`
}

// wrap maps handler errors to responses; failure is the summary sent on server-side errors.
func (r *Router) wrap(failure string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		logger := zerolog.Ctx(req.Context())

		if errors.Is(err, errBodyTooLarge) {
			logger.Debug().Int("limit_bytes", maxBodyBytes).Msg("request body too large")
			writeJSON(w, req, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"})
			return
		}

		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			logger.Debug().Str("reason", ve.Message).Msg("request rejected")
			writeJSON(w, req, http.StatusBadRequest, errorResponse{Error: ve.Message, HowToUse: &ve.HowToUse})
			return
		}

		details := err.Error()
		var pe *domain.PersistenceError
		if errors.As(err, &pe) {
			details = pe.Summary()
		}
		if domain.IsConfiguration(err) {
			logger.Error().Err(err).Msg("persistence is not configured")
		} else {
			logger.Error().Err(err).Msg(failure)
		}
		writeJSON(w, req, http.StatusInternalServerError, errorResponse{Error: failure, Details: details})
	}
}

type analyzeResponse struct {
	Analysis domain.Result   `json:"analysis"`
	Metadata domain.Metadata `json:"metadata"`
	ID       domain.RecordID `json:"id"`
}

// GET|POST /api/TextAnalyzer?text=...  or body {"text": "..."}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	zerolog.Ctx(req.Context()).Info().Msg("Text Analyzer API was called!")

	text, err := textFromRequest(w, req)
	if err != nil {
		return err
	}
	rec, err := r.svc.Submit(req.Context(), text)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			middleware.IncrementAnalysesRejected()
		default:
			middleware.IncrementAnalysesFailed()
		}
		return err
	}
	middleware.IncrementAnalysesStored()

	writeJSON(w, req, http.StatusOK, analyzeResponse{
		Analysis: rec.Analysis,
		Metadata: rec.Metadata,
		ID:       rec.ID,
	})
	return nil
}

type historyResponse struct {
	Count   int              `json:"count"`
	Results []*domain.Record `json:"results"`
}

// GET /api/GetAnalysisHistory?limit=10
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	middleware.IncrementHistoryQueries()
	limit := domain.ParseLimit(req.URL.Query().Get("limit"))

	list, err := r.svc.Recent(req.Context(), limit)
	if err != nil {
		middleware.IncrementHistoryFailed()
		return err
	}

	writeJSON(w, req, http.StatusOK, historyResponse{Count: len(list), Results: list})
	return nil
}

// textFromRequest prefers the query parameter and falls back to the JSON body.
// An unreadable body or a non-string field counts as no text; a body over
// maxBodyBytes fails with errBodyTooLarge.
func textFromRequest(w http.ResponseWriter, req *http.Request) (string, error) {
	if text := req.URL.Query().Get("text"); !domain.IsBlank(text) {
		return text, nil
	}
	if req.Body == nil {
		return "", nil
	}
	var body struct {
		Text json.RawMessage `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes)).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", errBodyTooLarge
		}
		return "", nil
	}
	var text string
	if err := json.Unmarshal(body.Text, &text); err != nil {
		return "", nil
	}
	return text, nil
}

func writeJSON(w http.ResponseWriter, req *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		zerolog.Ctx(req.Context()).Warn().Err(err).Int("status", status).Msg("write response")
	}
}
