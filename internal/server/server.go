// Package server provides the HTTP REST API for the claims forensics engine.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pawan/claimlens/internal/claims"
	"github.com/pawan/claimlens/internal/forensics"
	"github.com/pawan/claimlens/internal/report"
)

// Analyzer runs document forensics against the in-memory archive.
type Analyzer interface {
	AnalyzeAgainstArchive(ctx context.Context, path string) forensics.FindingReport
	AnalyzeFilePair(ctx context.Context, pathA, pathB string) (forensics.ComparisonReport, error)
	ArchiveSize() int
}

// ClaimStore serves the claims dataset analytics. It is nil when the server
// runs without a database, in which case the analytics routes return 503.
type ClaimStore interface {
	Count(ctx context.Context) (int64, error)
	Overview(ctx context.Context) (claims.Overview, error)
	Hospitals(ctx context.Context, state string) ([]claims.HospitalRollup, error)
	HospitalAudit(ctx context.Context, hospitalID string) (claims.AuditStats, error)
	ClaimsForHospital(ctx context.Context, hospitalID string, limit int) ([]claims.Claim, error)
	Timeline(ctx context.Context) ([]claims.TimelineBucket, error)
	Regions(ctx context.Context) ([]claims.RegionBreakdown, error)
	GhostBeneficiaries(ctx context.Context) (claims.GhostSummary, error)
	ConcurrentClaims(ctx context.Context) (claims.ConcurrentSummary, error)
	FraudNetwork(ctx context.Context) (claims.Network, error)
	UpcodingAnalysis(ctx context.Context, baselines map[string]claims.ProcedureBaseline) (claims.UpcodingReport, error)
	StateIntelligence(ctx context.Context, profiles map[string]claims.StateProfile) ([]claims.StateIntelligence, error)
}

// Summarizer produces the audit narrative embedded in PDF reports.
type Summarizer interface {
	Summarize(ctx context.Context, stats claims.AuditStats) (string, error)
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	store      ClaimStore
	summarizer Summarizer
	baselines  map[string]claims.ProcedureBaseline
	profiles   map[string]claims.StateProfile
	uploadDir  string

	// renderPDF is swappable in tests so handler tests do not need Chrome.
	renderPDF func(ctx context.Context, data report.Data) ([]byte, error)
}

// Config holds server configuration.
type Config struct {
	Port       int
	UploadDir  string
	Analyzer   Analyzer
	Store      ClaimStore
	Summarizer Summarizer
	Baselines  map[string]claims.ProcedureBaseline
	Profiles   map[string]claims.StateProfile
}

// New creates a new server instance.
func New(cfg Config) (*Server, error) {
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	if cfg.Baselines == nil {
		cfg.Baselines = claims.DefaultBaselines()
	}
	if cfg.Profiles == nil {
		cfg.Profiles = claims.DefaultStateProfiles()
	}

	s := &Server{
		analyzer:   cfg.Analyzer,
		store:      cfg.Store,
		summarizer: cfg.Summarizer,
		baselines:  cfg.Baselines,
		profiles:   cfg.Profiles,
		uploadDir:  cfg.UploadDir,
		renderPDF:  report.Generate,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second, // PDF generation can be slow
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/db-status", s.handleDBStatus)

	// Forensics endpoints
	mux.HandleFunc("POST /api/analyze-claim", s.handleAnalyzeClaim)
	mux.HandleFunc("POST /api/compare", s.handleCompare)

	// Dataset analytics endpoints
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/hospitals", s.handleHospitals)
	mux.HandleFunc("GET /api/claims", s.handleClaims)
	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/ghost-beneficiaries", s.handleGhostBeneficiaries)
	mux.HandleFunc("GET /api/concurrent-claims", s.handleConcurrentClaims)
	mux.HandleFunc("GET /api/fraud-network", s.handleFraudNetwork)
	mux.HandleFunc("GET /api/upcoding-analysis", s.handleUpcodingAnalysis)
	mux.HandleFunc("GET /api/state-intelligence", s.handleStateIntelligence)

	// Audit report
	mux.HandleFunc("POST /api/generate-report/{hospital_id}", s.handleGenerateReport)

	return s.withLogging(s.withCORS(mux))
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"archive_size": s.analyzer.ArchiveSize(),
		"db_connected": s.store != nil,
	})
}

// handleDBStatus reports dataset availability.
func (s *Server) handleDBStatus(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{"connected": false, "claims": 0})
		return
	}
	n, err := s.store.Count(r.Context())
	if err != nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{"connected": false, "claims": 0, "error": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"connected": true, "claims": n})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// requireStore guards the dataset routes when no database is configured.
func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "claims database not configured")
		return false
	}
	return true
}
