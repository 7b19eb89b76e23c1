package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ftahirops/xtrend/engine"
	"github.com/ftahirops/xtrend/model"
	"github.com/ftahirops/xtrend/report"
)

// ServiceName identifies this exporter in /health.
const ServiceName = "xtrend metrics exporter"

const (
	defaultRecentAlerts = 20
	maxRecentAlerts     = 1000
	trendHistoryLimit   = 20
)

// Config wires the HTTP surface to the running monitor. Nil fields disable
// the routes that need them.
type Config struct {
	Addr         string
	Store        *engine.MetricsStore
	History      *engine.History
	Stats        func() engine.Stats
	Prometheus   http.Handler
	Hub          *Hub
	AlertLogPath string
	Logger       *slog.Logger
}

// Server exposes the latest tick over HTTP.
type Server struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{cfg: cfg, logger: logger, now: time.Now}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /trends", s.handleTrends)
	mux.HandleFunc("GET /alerts/recent", s.handleRecentAlerts)
	if s.cfg.Prometheus != nil {
		mux.Handle("GET /metrics/traffic", s.cfg.Prometheus)
	}
	if s.cfg.Hub != nil {
		mux.Handle("GET /ws", s.cfg.Hub)
	}
	return withCORS(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.cfg.Hub != nil {
		s.cfg.Hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, what string, err error) {
	s.writeJSON(w, status, errorBody{Error: what, Message: err.Error()})
}

type healthBody struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Service   string        `json:"service"`
	LastTick  string        `json:"lastTick"`
	Stats     *engine.Stats `json:"stats,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := healthBody{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Service:   ServiceName,
		LastTick:  "never",
	}
	if s.cfg.Store != nil {
		if _, ts, err := s.cfg.Store.Latest(); err == nil {
			body.LastTick = humanize.RelTime(ts, s.now(), "ago", "from now")
		}
	}
	if s.cfg.Stats != nil {
		st := s.cfg.Stats()
		body.Stats = &st
	}
	s.writeJSON(w, http.StatusOK, body)
}

type metricsBody struct {
	Timestamp string             `json:"timestamp"`
	Metrics   map[string]string  `json:"metrics"`
	LoadScore float64            `json:"loadScore"`
	Alerts    []report.AlertDoc  `json:"alerts"`
	Averages  map[string]float64 `json:"averages,omitempty"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	if s.cfg.Store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Failed to get metrics", engine.ErrNoData)
		return
	}
	rep, _, err := s.cfg.Store.Latest()
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "Failed to get metrics", err)
		return
	}
	doc := report.NewDocument(rep, s.now())
	body := metricsBody{
		Timestamp: doc.Timestamp,
		Metrics: map[string]string{
			string(model.FieldCPU):         doc.CPU,
			string(model.FieldMemoryUsed):  doc.MemoryUsedGB,
			string(model.FieldMemoryTotal): doc.MemoryTotalGB,
			string(model.FieldDiskUsed):    doc.DiskUsedGB,
			string(model.FieldDiskTotal):   doc.DiskTotalGB,
			string(model.FieldNetRx):       doc.NetRxMBps,
			string(model.FieldNetTx):       doc.NetTxMBps,
		},
		LoadScore: doc.LoadScore,
		Alerts:    doc.Alerts,
	}
	if len(rep.Averages) > 0 {
		body.Averages = make(map[string]float64, len(rep.Averages))
		for f, v := range rep.Averages {
			body.Averages[string(f)] = v
		}
	}
	s.writeJSON(w, http.StatusOK, body)
}

type trendsBody struct {
	Timestamp string                        `json:"timestamp"`
	History   []model.MetricSnapshot        `json:"history"`
	Trends    map[string]*model.TrendResult `json:"trends"`
}

func (s *Server) handleTrends(w http.ResponseWriter, _ *http.Request) {
	body := trendsBody{
		Timestamp: s.now().UTC().Format(time.RFC3339),
		History:   []model.MetricSnapshot{},
		Trends: map[string]*model.TrendResult{
			"cpu":       nil,
			"memory":    nil,
			"loadScore": nil,
		},
	}
	if h := s.cfg.History; h != nil {
		hist := h.SnapshotAll()
		if len(hist) > trendHistoryLimit {
			hist = hist[len(hist)-trendHistoryLimit:]
		}
		body.History = hist
		for key, f := range map[string]model.Field{
			"cpu":       model.FieldCPU,
			"memory":    model.FieldMemoryUsed,
			"loadScore": model.FieldLoadScore,
		} {
			if t, err := h.Trend(f); err == nil {
				body.Trends[key] = &t
			}
		}
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleRecentAlerts(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AlertLogPath == "" {
		s.writeError(w, http.StatusNotFound, "Alert log disabled", errors.New("start with an alert log to enable this route"))
		return
	}
	n := defaultRecentAlerts
	if q := r.URL.Query().Get("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v <= 0 {
			s.writeError(w, http.StatusBadRequest, "Invalid n", fmt.Errorf("n must be a positive integer, got %q", q))
			return
		}
		n = min(v, maxRecentAlerts)
	}
	events, err := engine.ReadAlertLog(s.cfg.AlertLogPath, n)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to read alert log", err)
		return
	}
	if events == nil {
		events = []model.AlertEvent{}
	}
	s.writeJSON(w, http.StatusOK, events)
}
