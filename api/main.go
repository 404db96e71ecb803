package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/voluntra/opportunity-search/internal/analytics"
	"github.com/voluntra/opportunity-search/internal/config"
	"github.com/voluntra/opportunity-search/internal/elasticsearch"
	"github.com/voluntra/opportunity-search/internal/logger"
	"github.com/voluntra/opportunity-search/internal/models"
	"github.com/voluntra/opportunity-search/internal/search"
	"github.com/voluntra/opportunity-search/internal/store"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	kv, err := store.NewRedisKV(startupCtx, cfg.RedisURL)
	startupCancel()
	if err != nil {
		log.Error("init redis", slog.Any("err", err))
		os.Exit(1)
	}
	defer kv.Close()

	recorder := analytics.New(cfg.KafkaBrokers, cfg.AnalyticsTopic, log)
	defer recorder.Close()

	srv := &server{
		log:      log,
		cfg:      cfg,
		fetcher:  esClient,
		health:   esClient,
		engine:   search.New(),
		store:    store.New(kv, log, cfg.HistoryLimit, cfg.CacheEntries, cfg.CacheTTL),
		recorder: recorder,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/opportunities/search", srv.handleSearch)
	r.Get("/opportunities/suggest", srv.handleSuggest)
	r.Get("/search/history", srv.handleHistory)
	r.Delete("/search/history", srv.handleClearHistory)
	r.Post("/search/click", srv.handleClick)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type candidateFetcher interface {
	FetchOpportunities(ctx context.Context, limit int) ([]models.Opportunity, error)
}

type healthChecker interface {
	Health(ctx context.Context) error
}

type server struct {
	log      *slog.Logger
	cfg      *config.API
	fetcher  candidateFetcher
	health   healthChecker
	engine   *search.Engine
	store    *store.Store
	recorder *analytics.Recorder
}

type errorResponse struct {
	Error string `json:"error"`
}

type searchResponse struct {
	Results []models.SearchResult `json:"results"`
	Total   int                   `json:"total"`
	Cached  bool                  `json:"cached"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.health.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := s.parseOptions(r)

	if cached, ok := s.store.Cached(ctx, opts); ok {
		s.store.RecordQuery(ctx, opts.Query)
		s.recorder.Record(opts.Query, len(cached), "")
		writeJSON(w, http.StatusOK, searchResponse{Results: cached, Total: len(cached), Cached: true})
		return
	}

	candidates, err := s.fetcher.FetchOpportunities(ctx, s.cfg.FetchLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	results := s.engine.Search(candidates, opts)

	s.store.PutCached(ctx, opts, results)
	s.store.RecordQuery(ctx, opts.Query)
	s.recorder.Record(opts.Query, len(results), "")

	writeJSON(w, http.StatusOK, searchResponse{Results: results, Total: len(results)})
}

func (s *server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	partial := r.URL.Query().Get("q")
	limit := clampInt(r.URL.Query().Get("limit"), search.DefaultSuggestionLimit, 20)

	candidates, err := s.fetcher.FetchOpportunities(ctx, s.cfg.FetchLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	suggestions := search.Suggest(candidates, partial, limit)
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions})
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	writeJSON(w, http.StatusOK, map[string][]string{"history": s.store.History(ctx)})
}

func (s *server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	s.store.ClearHistory(ctx)
	w.WriteHeader(http.StatusNoContent)
}

type clickRequest struct {
	Query         string `json:"query"`
	OpportunityID string `json:"opportunity_id"`
	ResultCount   int    `json:"result_count"`
}

func (s *server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}
	if req.OpportunityID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "opportunity_id is required"})
		return
	}

	s.recorder.Record(req.Query, req.ResultCount, req.OpportunityID)
	w.WriteHeader(http.StatusAccepted)
}

// parseOptions maps query parameters onto SearchOptions. Offset and limit
// are always populated so the engine paginates every request.
func (s *server) parseOptions(r *http.Request) models.SearchOptions {
	q := r.URL.Query()

	opts := models.SearchOptions{
		Query:     strings.TrimSpace(q.Get("q")),
		Category:  strings.TrimSpace(q.Get("category")),
		DateRange: parseDateRange(q.Get("range")),
		SortBy:    parseSortKey(q.Get("sort")),
	}

	if raw := strings.TrimSpace(q.Get("max_distance")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
			opts.MaxDistanceKm = &v
		}
	}
	if raw := strings.TrimSpace(q.Get("min_spots")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			opts.MinSpots = &v
		}
	}
	if raw := strings.TrimSpace(q.Get("verified")); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			opts.VerifiedOnly = &v
		}
	}

	offset := 0
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}
	limit := clampInt(q.Get("limit"), s.cfg.DefaultLimit, s.cfg.MaxLimit)
	opts.Offset = &offset
	opts.Limit = &limit

	return opts
}

func parseDateRange(raw string) models.DateRange {
	switch models.DateRange(strings.TrimSpace(raw)) {
	case models.DateRangeToday:
		return models.DateRangeToday
	case models.DateRangeThisWeek:
		return models.DateRangeThisWeek
	case models.DateRangeThisMonth:
		return models.DateRangeThisMonth
	case models.DateRangeUpcoming:
		return models.DateRangeUpcoming
	default:
		return models.DateRangeAll
	}
}

func parseSortKey(raw string) models.SortKey {
	switch models.SortKey(strings.TrimSpace(raw)) {
	case models.SortByDistance:
		return models.SortByDistance
	case models.SortByDate:
		return models.SortByDate
	case models.SortBySpots:
		return models.SortBySpots
	default:
		return models.SortByRelevance
	}
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
