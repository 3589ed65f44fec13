package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/mihai6/FiatSim/internal/logger"
	"github.com/mihai6/FiatSim/internal/state"
	"github.com/mihai6/FiatSim/internal/types"
	"github.com/rs/zerolog"
)

// RunSource is the read side of the run registry.
type RunSource interface {
	Records() []types.SummaryRecord
	Latest() (types.SummaryRecord, bool)
	Get(i int) (types.SummaryRecord, bool)
	Status() state.SweepState
}

// WebServer serves read-only progress of the running sweep.
type WebServer struct {
	router    *mux.Router
	port      string
	runs      RunSource
	logger    zerolog.Logger
	startedAt time.Time
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, runs RunSource) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:    mux.NewRouter(),
		port:      port,
		runs:      runs,
		logger:    logger.GetForComponent("web_server"),
		startedAt: time.Now(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/sweep", ws.handleGetSweep).Methods("GET")
	api.HandleFunc("/runs", ws.handleGetRuns).Methods("GET")
	api.HandleFunc("/runs/latest", ws.handleGetLatestRun).Methods("GET")
	api.HandleFunc("/runs/{index:[0-9]+}", ws.handleGetRun).Methods("GET")
	api.HandleFunc("/sweeps", ws.handleGetStoredSweeps).Methods("GET")
	api.HandleFunc("/sweeps/{id}/runs", ws.handleGetStoredSweepRuns).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Router exposes the handler, mainly for tests.
func (ws *WebServer) Router() http.Handler {
	return ws.router
}

// Start starts the web server
func (ws *WebServer) Start() error {
	ws.logger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth reports process health and the sweep status. A failed sweep or an
// unreachable configured database degrades the status.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	sweep := ws.runs.Status()
	hasErrors := sweep.Status == state.SweepFailed

	dbStatus := "disabled"
	if state.DB != nil {
		dbStatus = "healthy"
		if err := state.TestDBConnection(); err != nil {
			dbStatus = "unhealthy"
			hasErrors = true
		}
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if hasErrors {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
			"uptime_seconds":   int64(time.Since(ws.startedAt).Seconds()),
		},
		"component": map[string]interface{}{
			"name":    "fiatsim",
			"version": "1.0.0",
		},
		"sweep":    sweep,
		"database": dbStatus,
	}

	ws.writeJSONResponse(w, statusCode, response)
}

func (ws *WebServer) handleGetSweep(w http.ResponseWriter, r *http.Request) {
	ws.writeJSONResponse(w, http.StatusOK, ws.runs.Status())
}

// handleGetRuns returns the records gathered so far, optionally only the last ?limit.
func (ws *WebServer) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	records := ws.runs.Records()

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if limit < len(records) {
			records = records[len(records)-limit:]
		}
	}

	response := map[string]interface{}{
		"runs":  records,
		"count": len(records),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

func (ws *WebServer) handleGetLatestRun(w http.ResponseWriter, r *http.Request) {
	record, ok := ws.runs.Latest()
	if !ok {
		ws.writeErrorResponse(w, http.StatusNotFound, "No runs recorded yet")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, record)
}

// handleGetRun returns a run by its position in the sweep.
func (ws *WebServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid run index")
		return
	}

	record, ok := ws.runs.Get(index)
	if !ok {
		ws.writeErrorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, record)
}

// handleGetStoredSweeps lists sweeps saved by earlier invocations.
func (ws *WebServer) handleGetStoredSweeps(w http.ResponseWriter, r *http.Request) {
	if state.DB == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "Database sink is disabled")
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	sweeps, err := state.GetRecentSweeps(limit)
	if err != nil {
		ws.logger.Error().Err(err).Msg("Failed to get stored sweeps")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve sweeps")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"sweeps": sweeps, "count": len(sweeps)})
}

func (ws *WebServer) handleGetStoredSweepRuns(w http.ResponseWriter, r *http.Request) {
	if state.DB == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "Database sink is disabled")
		return
	}

	sweepID := mux.Vars(r)["id"]
	runs, err := state.GetSweepRuns(sweepID)
	if err != nil {
		ws.logger.Error().Err(err).Str("sweep_id", sweepID).Msg("Failed to get stored sweep runs")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve sweep runs")
		return
	}
	if len(runs) == 0 {
		ws.writeErrorResponse(w, http.StatusNotFound, "Sweep not found")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"sweep_id": sweepID, "runs": runs})
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		ws.logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		ws.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
