// Package health exposes the operational HTTP surface of the forecaster:
// liveness and readiness probes plus the Prometheus scrape endpoint.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Port        string
	Logger      *logrus.Logger
	DB          Pinger
	// Metrics, when set, is mounted at MetricsPath (default /metrics).
	Metrics     http.Handler
	MetricsPath string
}

// Server answers container probes and serves metrics on one listener.
type Server struct {
	cfg   Config
	http  *http.Server
	log   *logrus.Entry
	ready atomic.Bool
}

// probeStatus is the body for /health and /live.
type probeStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
	Commit  string `json:"commit,omitempty"`
	Time    string `json:"time,omitempty"`
}

// readiness is the body for /ready, one entry per dependency checked.
type readiness struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
	Elapsed string            `json:"elapsed"`
}

// NewServer builds the server. The listen port falls back to the
// GRID_ORACLE_HEALTH_PORT environment variable, then to 8080.
func NewServer(cfg Config) *Server {
	if cfg.Port == "" {
		cfg.Port = os.Getenv("GRID_ORACLE_HEALTH_PORT")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Server{
		cfg: cfg,
		log: cfg.Logger.WithField("component", "health"),
	}
}

// SetReady flips the readiness gate. Until it is set, /ready answers 503 and
// orchestrators hold traffic back.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports the current readiness gate.
func (s *Server) IsReady() bool {
	return s.ready.Load()
}

// Start runs the listener in the background and shuts it down when ctx ends.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.log.WithField("port", s.cfg.Port).Info("Health server listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("Health server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown drains in-flight requests, bounded to five seconds.
func (s *Server) Shutdown() error {
	if s.http == nil {
		return nil
	}
	s.log.Info("Health server stopping")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	if s.cfg.Metrics != nil {
		mux.Handle(s.cfg.MetricsPath, s.cfg.Metrics)
	}
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, probeStatus{
		Status:  "ok",
		Service: s.cfg.ServiceName,
		Version: s.cfg.Version,
		Commit:  s.cfg.Commit,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, probeStatus{Status: "ok", Service: s.cfg.ServiceName})
}

// handleReady gates on the manual readiness flag and, when a store is wired,
// on a bounded database ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := map[string]string{"service": "ok"}
	healthy := true

	if !s.IsReady() {
		checks["service"] = "not_ready"
		healthy = false
	}

	if s.cfg.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.cfg.DB.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	body := readiness{
		Status:  "ok",
		Service: s.cfg.ServiceName,
		Checks:  checks,
		Elapsed: time.Since(start).String(),
	}
	code := http.StatusOK
	if !healthy {
		body.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
