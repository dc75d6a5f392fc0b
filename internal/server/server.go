package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"cropsense/internal/api"
	"cropsense/internal/logging"
	"cropsense/internal/models"
	"cropsense/internal/session"
	"cropsense/internal/viewmodel"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxBodySize caps request bodies; every accepted body is a small JSON form
const maxBodySize = 1 << 20

type AnalyzeRequest struct {
	Crop     string `json:"crop"`
	Location string `json:"location"`
}

type MarketRequest struct {
	Crop        string `json:"crop"`
	Location    string `json:"location"`
	StorageType string `json:"storage_type"`
	TransitDays *int   `json:"transit_days"`
}

// HealthChecker reports whether the prediction backend answers
type HealthChecker interface {
	Health(ctx context.Context) (*models.Health, error)
}

// Server exposes the page view-models as a small local JSON API
type Server struct {
	dashboard *viewmodel.Dashboard
	market    *viewmodel.Market
	session   *session.Session
	backend   HealthChecker
	logger    *zap.Logger

	router     *mux.Router
	httpServer *http.Server
}

// NewServer creates a new HTTP server
func NewServer(backend HealthChecker, dashboard *viewmodel.Dashboard, market *viewmodel.Market, sess *session.Session, logger *zap.Logger) *Server {
	s := &Server{
		dashboard: dashboard,
		market:    market,
		session:   sess,
		backend:   backend,
		logger:    logging.OrNop(logger),
		router:    mux.NewRouter(),
	}
	s.RegisterRoutes(s.router)
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// RegisterRoutes wires the handlers onto r
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)
	r.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/market", s.handleMarket).Methods(http.MethodPost)
}

func (s *Server) Handler() http.Handler { return s.router }

// Start listens on addr and blocks until the server stops.
// After Shutdown it returns nil, even when Shutdown ran first.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until the server stops
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("companion server listening", zap.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.dashboard.Cancel()
	s.market.Cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// handleHealth returns the server health status and whether the backend answers
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	backend := "ok"
	if _, err := s.backend.Health(ctx); err != nil {
		s.logger.Warn("backend health check failed", zap.Error(err))
		backend = "unreachable"
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"backend": backend,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"state": s.session.State().String(),
		"user":  s.session.User(),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	st, err := s.dashboard.Analyze(r.Context(), req.Crop, req.Location)
	if err != nil {
		s.respondActionError(w, err, "Failed to fetch insights.")
		return
	}
	respondJSON(w, http.StatusOK, newDashboardResponse(st))
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	var req MarketRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	transit := viewmodel.DefaultTransitDays
	if req.TransitDays != nil {
		transit = *req.TransitDays
	}

	st, err := s.market.Analyze(r.Context(), req.Crop, req.Location, req.StorageType, transit)
	if err != nil {
		s.respondActionError(w, err, "Failed to find a market.")
		return
	}
	respondJSON(w, http.StatusOK, newMarketResponse(st))
}

// respondActionError maps a view-model error onto a status code.
// Backend failures are 502; the body carries the backend's own message.
func (s *Server) respondActionError(w http.ResponseWriter, err error, fallback string) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, viewmodel.ErrSuperseded):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, api.ErrNetwork), errors.Is(err, api.ErrMalformedResponse):
		respondError(w, http.StatusBadGateway, api.UserMessage(err, fallback))
	default:
		var se *api.StatusError
		if errors.As(err, &se) {
			respondError(w, http.StatusBadGateway, api.UserMessage(err, fallback))
			return
		}
		s.logger.Error("action failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
