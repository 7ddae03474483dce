package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pawan/claimlens/internal/claims"
	"github.com/pawan/claimlens/internal/report"
)

// handleStats returns the dashboard headline aggregates.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	overview, err := s.store.Overview(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, overview)
}

// handleHospitals lists per-hospital rollups, optionally filtered by state.
func (s *Server) handleHospitals(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	rollups, err := s.store.Hospitals(r.Context(), r.URL.Query().Get("state"))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, rollups)
}

// handleClaims lists claims, optionally for one hospital.
func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	records, err := s.store.ClaimsForHospital(r.Context(), r.URL.Query().Get("hospital_id"), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, records)
}

// handleAnalytics returns the monthly timeline plus the regional breakdown.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	timeline, err := s.store.Timeline(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	regions, err := s.store.Regions(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"timeline": timeline,
		"regions":  regions,
	})
}

func (s *Server) handleGhostBeneficiaries(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	summary, err := s.store.GhostBeneficiaries(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, summary)
}

func (s *Server) handleConcurrentClaims(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	summary, err := s.store.ConcurrentClaims(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, summary)
}

func (s *Server) handleFraudNetwork(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	network, err := s.store.FraudNetwork(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, network)
}

func (s *Server) handleUpcodingAnalysis(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	analysis, err := s.store.UpcodingAnalysis(r.Context(), s.baselines)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

func (s *Server) handleStateIntelligence(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	intel, err := s.store.StateIntelligence(r.Context(), s.profiles)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, intel)
}

// handleGenerateReport produces the PDF audit report for one hospital.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	hospitalID := r.PathValue("hospital_id")

	stats, err := s.store.HospitalAudit(r.Context(), hospitalID)
	if err != nil {
		if errors.Is(err, claims.ErrHospitalNotFound) {
			s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("hospital %s not found", hospitalID))
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	narrative := ""
	if s.summarizer != nil {
		narrative, err = s.summarizer.Summarize(r.Context(), stats)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	pdf, err := s.renderPDF(r.Context(), report.Data{
		Stats:       stats,
		Narrative:   narrative,
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		var pdfErr *report.PDFError
		if errors.As(err, &pdfErr) {
			s.errorResponse(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="audit_report_%s.pdf"`, hospitalID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		// Client went away mid-download; nothing to recover.
		return
	}
}
