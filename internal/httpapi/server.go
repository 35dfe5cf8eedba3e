package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newshub/newshub/internal/collect"
	"github.com/newshub/newshub/internal/logging"
	"github.com/newshub/newshub/internal/scheduler"
)

type Server struct {
	sched   *scheduler.Scheduler
	manager *collect.Manager
	logger  *logging.Logger
	server  *http.Server
}

func New(sched *scheduler.Scheduler, manager *collect.Manager, logger *logging.Logger) *Server {
	return &Server{
		sched:   sched,
		manager: manager,
		logger:  logger,
	}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	// Scheduler admin routes
	mux.HandleFunc("/api/scheduler/execute", s.corsMiddleware(s.handleExecuteJob))
	mux.HandleFunc("/api/scheduler/status", s.corsMiddleware(s.handleSchedulerStatus))

	// Collection routes
	mux.HandleFunc("/api/collect", s.corsMiddleware(s.handleCollect))
	mux.HandleFunc("/api/collect/status", s.corsMiddleware(s.handleCollectStatus))

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	s.logger.Info("HTTP API server starting", logging.WithField("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// handleExecuteJob runs a scheduled job by name, synchronously. The
// request body carries {"job": "<name>"}.
func (s *Server) handleExecuteJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Job string `json:"job"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Job == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "request body must be JSON with a non-empty job field",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	if !s.sched.TriggerManually(ctx, req.Job) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{
			"status":  "error",
			"message": "unknown job: " + req.Job,
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"job":    req.Job,
	})
}

func (s *Server) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobs := s.sched.Status()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// handleCollect triggers collection. With {"sourceId": "..."} in the body
// it collects from one source; with an empty body it sweeps all active
// sources.
func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SourceID string `json:"sourceId"`
	}
	// An empty body means a full sweep.
	_ = json.NewDecoder(r.Body).Decode(&req)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	var saved int
	var err error
	if req.SourceID != "" {
		saved, err = s.manager.CollectFromSource(ctx, req.SourceID)
	} else {
		saved, err = s.manager.CollectFromAllActiveSources(ctx)
	}

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, collect.ErrSourceUnavailable) {
			status = http.StatusNotFound
		}
		s.logger.Error("collection request failed", logging.WithField("error", err.Error()))
		s.writeJSON(w, status, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"saved":  saved,
	})
}

func (s *Server) handleCollectStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, s.manager.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
