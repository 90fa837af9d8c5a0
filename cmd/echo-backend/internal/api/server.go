package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/logger"
)

// Info identifies the backend on every health response.
type Info struct {
	BackendID string
	Region    string
	Port      int
}

// InfoResponse is the /api/info body.
type InfoResponse struct {
	BackendID    string `json:"backend_id"`
	Region       string `json:"region"`
	Hostname     string `json:"hostname"`
	Port         int    `json:"port"`
	RequestCount uint64 `json:"request_count"`
	UptimeSecs   int    `json:"uptime_secs"`
	Timestamp    string `json:"timestamp"`
	Message      string `json:"message"`
}

// LatencyResponse is the /api/latency body. TS is Unix nanoseconds.
type LatencyResponse struct {
	BackendID string `json:"backend_id"`
	Region    string `json:"region"`
	TS        int64  `json:"ts"`
}

const infoMessage = "Hello from echo backend!"

type HealthServer struct {
	server   *http.Server
	ready    atomic.Bool
	requests atomic.Uint64
	info     Info
	hostname string
	started  time.Time
}

func NewHealthServer(addr string, info Info) *HealthServer {
	mux := http.NewServeMux()
	hostname, _ := os.Hostname()
	hs := &HealthServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		info:     info,
		hostname: hostname,
		started:  time.Now(),
	}

	// Default to not ready until explicitly set
	hs.ready.Store(false)

	// Exact root only; other unknown paths stay 404
	mux.HandleFunc("GET /{$}", hs.handleRoot)
	mux.HandleFunc("GET /health", hs.handleHealth)
	mux.HandleFunc("GET /ready", hs.handleReady)
	mux.HandleFunc("GET /api/info", hs.handleInfo)
	mux.HandleFunc("GET /api/latency", hs.handleLatency)

	return hs
}

func (s *HealthServer) Start() {
	go func() {
		logger.Info("Health server listening", "addr", s.server.Addr, "backend_id", s.info.BackendID)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health server error", "error", err, "backend_id", s.info.BackendID)
		}
	}()
}

func (s *HealthServer) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Handler exposes the routes without a listening socket.
func (s *HealthServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HealthServer) identify(w http.ResponseWriter) {
	w.Header().Set("X-Backend-ID", s.info.BackendID)
	w.Header().Set("X-Region", s.info.Region)
}

// RequestCount reports how many identity requests have been served.
// Health and readiness checks are not counted.
func (s *HealthServer) RequestCount() uint64 {
	return s.requests.Load()
}

func (s *HealthServer) uptime() int {
	return int(time.Since(s.started).Seconds())
}

func (s *HealthServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	count := s.requests.Add(1)

	s.identify(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, `
=====================================
  Echo Backend
=====================================

  Backend ID:  %s
  Region:      %s
  Hostname:    %s
  Port:        %d
  Request #:   %d
  Uptime:      %ds

  Client IP:   %s
  Timestamp:   %s

=====================================
`, s.info.BackendID, s.info.Region, s.hostname, s.info.Port, count,
		s.uptime(),
		r.RemoteAddr,
		time.Now().UTC().Format(time.RFC3339))
}

func (s *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.identify(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK - %s (%s)", s.info.BackendID, s.info.Region)
}

func (s *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	s.identify(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.ready.Load() {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	}
}

func (s *HealthServer) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.identify(w)
	w.Header().Set("Content-Type", "application/json")

	resp := InfoResponse{
		BackendID:    s.info.BackendID,
		Region:       s.info.Region,
		Hostname:     s.hostname,
		Port:         s.info.Port,
		RequestCount: s.requests.Add(1),
		UptimeSecs:   s.uptime(),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Message:      infoMessage,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("Failed to encode info response", "error", err)
	}
}

func (s *HealthServer) handleLatency(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	s.identify(w)
	w.Header().Set("Content-Type", "application/json")

	resp := LatencyResponse{
		BackendID: s.info.BackendID,
		Region:    s.info.Region,
		TS:        time.Now().UnixNano(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("Failed to encode latency response", "error", err)
	}
}
