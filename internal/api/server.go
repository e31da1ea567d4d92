// Package api serves the facility catalogue over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/poolfinder/pool-cli/internal/facility"
	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/store"
)

const (
	defaultListLimit = 1000
	maxListLimit     = 1000
	maxBodyBytes     = 1 << 20
)

// Options configures the HTTP server.
type Options struct {
	AllowedOrigins []string
}

// Server exposes list, lookup, create, geo search and stats endpoints.
type Server struct {
	store  store.Store
	engine *facility.Engine
	search *facility.Search
	opts   Options
}

// New creates a Server.
func New(st store.Store, engine *facility.Engine, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{store: st, engine: engine, search: facility.NewSearch(st), opts: opts}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/pools", func(r chi.Router) {
		r.Get("/", s.listPools)
		r.Post("/", s.createPool)
		r.Post("/search", s.searchPools)
		r.Get("/stats", s.stats)
		r.Get("/{id}", s.getPool)
	})
	return r
}

func (s *Server) listPools(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil || skip < 0 {
		writeError(w, http.StatusBadRequest, "skip must be a non-negative integer")
		return
	}
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	recs, err := s.store.List(r.Context(), store.ListFilter{Offset: skip, Limit: limit, ActiveOnly: true})
	if err != nil {
		s.internalError(w, r, "list pools", err)
		return
	}
	if recs == nil {
		recs = []model.FacilityRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) getPool(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid pool id")
		return
	}
	rec, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "pool not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "get pool", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// createRequest is the body of POST /pools.
type createRequest struct {
	Name               string      `json:"name"`
	Address            string      `json:"address"`
	Lat                *float64    `json:"lat"`
	Lng                *float64    `json:"lng"`
	Phone              string      `json:"phone"`
	URL                string      `json:"url"`
	Source             string      `json:"source"`
	Lanes              *int        `json:"lanes"`
	PoolSize           string      `json:"pool_size"`
	WaterTemp          string      `json:"water_temp"`
	Facilities         []string    `json:"facilities"`
	Parking            *bool       `json:"parking"`
	DailyPrice         model.Price `json:"daily_price"`
	FreeSwimPrice      model.Price `json:"free_swim_price"`
	MonthlyLessonPrice model.Price `json:"monthly_lesson_price"`
	Description        string      `json:"description"`
	ImageURL           string      `json:"image_url"`
}

func (req createRequest) observation(now time.Time) model.Observation {
	obs := model.Observation{
		Name:               strings.TrimSpace(req.Name),
		Address:            strings.TrimSpace(req.Address),
		Phone:              req.Phone,
		URL:                req.URL,
		Source:             req.Source,
		Lanes:              req.Lanes,
		PoolSize:           req.PoolSize,
		WaterTemp:          req.WaterTemp,
		Facilities:         req.Facilities,
		Parking:            req.Parking,
		DailyPrice:         req.DailyPrice,
		FreeSwimPrice:      req.FreeSwimPrice,
		MonthlyLessonPrice: req.MonthlyLessonPrice,
		Description:        req.Description,
		ImageURL:           req.ImageURL,
		ObservedAt:         now,
	}
	if obs.Source == "" {
		obs.Source = "api"
	}
	if req.Lat != nil && req.Lng != nil {
		obs.Location = &model.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	}
	return obs
}

func (s *Server) createPool(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Address) == "" {
		writeError(w, http.StatusBadRequest, "name and address are required")
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		writeError(w, http.StatusBadRequest, "lat and lng must be given together")
		return
	}

	rec, isNew, err := s.engine.Ingest(r.Context(), req.observation(time.Now().UTC()))
	if err != nil {
		s.internalError(w, r, "create pool", err)
		return
	}
	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	writeJSON(w, status, rec)
}

// searchRequest is the body of POST /pools/search.
type searchRequest struct {
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	RadiusKM    float64  `json:"radius_km"`
	MinPrice    *int     `json:"min_price"`
	MaxPrice    *int     `json:"max_price"`
	HasFreeSwim *bool    `json:"has_free_swim"`
	Limit       int      `json:"limit"`
}

func (s *Server) searchPools(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}
	if req.RadiusKM < 0 {
		writeError(w, http.StatusBadRequest, "radius_km must be positive")
		return
	}

	results, err := s.search.Nearby(r.Context(), facility.NearbyQuery{
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		RadiusKM:    req.RadiusKM,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		HasFreeSwim: req.HasFreeSwim,
		Limit:       req.Limit,
	})
	if err != nil {
		if errors.Is(err, facility.ErrInvalidPoint) {
			writeError(w, http.StatusBadRequest, "lat/lng out of range")
			return
		}
		s.internalError(w, r, "search pools", err)
		return
	}
	if results == nil {
		results = []facility.NearbyResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.search.Stats(r.Context())
	if err != nil {
		s.internalError(w, r, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	zap.L().Error("api: "+op+" failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// ListenAndServe runs the server on addr until ctx is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		zap.L().Info("api: starting server", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		zap.L().Info("api: shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
