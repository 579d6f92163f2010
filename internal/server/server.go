// Package server exposes the scan pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Alcary/QR-Code-Analyzer/internal/analyzer"
	"github.com/Alcary/QR-Code-Analyzer/internal/config"
	"github.com/Alcary/QR-Code-Analyzer/internal/ml"
	"github.com/Alcary/QR-Code-Analyzer/internal/urlinfo"
)

// Server owns the router and the pipeline singletons.
type Server struct {
	cfg       *config.Config
	analyzer  *analyzer.Analyzer
	predictor *ml.Predictor
	log       zerolog.Logger
	startedAt time.Time
}

func New(cfg *config.Config, a *analyzer.Analyzer, p *ml.Predictor, log zerolog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		analyzer:  a,
		predictor: p,
		log:       log.With().Str("component", "server").Logger(),
		startedAt: time.Now(),
	}
}

// Router assembles the chi middleware chain and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(responseTime)
	r.Use(requestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route(s.cfg.APIPrefix, func(api chi.Router) {
		api.Use(apiKeyAuth(s.cfg.APIKey, s.log))
		api.Use(httprate.Limit(
			s.cfg.RateLimitPerMin,
			time.Minute,
			httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
				return clientIP(r, s.cfg.TrustedProxyCount), nil
			}),
			httprate.WithLimitHandler(s.handleRateLimited),
		))
		api.Post("/scan", s.handleScan)
		api.Get("/health", s.handleHealth)
	})

	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Int("port", s.cfg.Port).Str("prefix", s.cfg.APIPrefix).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type scanRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body"})
		return
	}

	if _, err := urlinfo.NormalizeMax(req.URL, s.cfg.MaxURLLength); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"detail": validationDetail(err),
		})
		return
	}

	start := time.Now()
	res := s.analyzer.Analyze(r.Context(), req.URL)
	scanDuration.Observe(time.Since(start).Seconds())
	scansTotal.WithLabelValues(res.Status).Inc()

	writeJSON(w, http.StatusOK, res)
}

func validationDetail(err error) string {
	switch {
	case errors.Is(err, urlinfo.ErrEmptyURL):
		return "empty_url"
	case errors.Is(err, urlinfo.ErrURLTooLong):
		return "url_too_long"
	case errors.Is(err, urlinfo.ErrUnsupportedScheme):
		return "unsupported_scheme"
	default:
		return "invalid_hostname"
	}
}

type healthResponse struct {
	Status        string   `json:"status"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	ML            mlHealth `json:"ml"`
}

type mlHealth struct {
	Status       string   `json:"status"`
	Components   []string `json:"components"`
	FeatureCount int      `json:"feature_count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	mlStatus := "not_loaded"
	if s.predictor.Loaded() {
		mlStatus = "loaded"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		ML: mlHealth{
			Status:       mlStatus,
			Components:   s.predictor.Components(),
			FeatureCount: s.predictor.FeatureCount(),
		},
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	rateLimited.Inc()
	w.Header().Set("Retry-After", "60")
	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"detail":      "rate limit exceeded",
		"retry_after": 60,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
