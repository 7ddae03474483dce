package server

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/pawan/claimlens/internal/forensics"
)

// maxUploadMemory bounds the in-memory part of multipart parsing; larger
// bodies spill to temp files.
const maxUploadMemory = 16 << 20

// ClaimAnalysis is the analyze-claim response: the merged finding wrapped in
// synthesized claim context. The identifiers are placeholders because the
// upload carries no claim metadata; only the forensic fields are real.
type ClaimAnalysis struct {
	PatientID     string                  `json:"patient_id"`
	HospitalID    string                  `json:"hospital_id"`
	ProcedureCode string                  `json:"procedure_code"`
	ClaimedAmount string                  `json:"claimed_amount"`
	RiskScore     int                     `json:"risk_score"`
	Confidence    float64                 `json:"confidence"`
	Flags         []string                `json:"flags"`
	ArchiveSize   int                     `json:"archive_size"`
	Finding       forensics.FindingReport `json:"finding"`
}

// synthesizeClaimContext wraps a finding in placeholder claim identifiers and
// human-readable flags derived from the forensic result.
func synthesizeClaimContext(finding forensics.FindingReport) ClaimAnalysis {
	distance := 0
	if finding.HammingDistance != nil {
		distance = *finding.HammingDistance
	}

	var flags []string
	switch {
	case finding.FraudDetected:
		flags = append(flags,
			fmt.Sprintf("Document reuse detected — %.2f%% similar to '%s'", finding.SimilarityPercent, derefOr(finding.MatchedFile, "prior submission")),
			fmt.Sprintf("Hamming distance: %d bits", distance),
			fmt.Sprintf("Classification: %s", finding.Classification))
	case finding.MatchedFile != nil:
		flags = append(flags,
			fmt.Sprintf("Partial similarity with prior submission (%.2f%%)", finding.SimilarityPercent))
	case finding.Method == forensics.MethodFailed || finding.Method == forensics.MethodValidationError:
		flags = append(flags, finding.Classification)
	}

	return ClaimAnalysis{
		PatientID:     fmt.Sprintf("PMJAY-%07d", 1000000+rand.Intn(9000000)),
		HospitalID:    fmt.Sprintf("HOSP_%04d", 1+rand.Intn(100)),
		ProcedureCode: fmt.Sprintf("PROC_%03d", 1+rand.Intn(20)),
		ClaimedAmount: fmt.Sprintf("₹%d,000", 5+rand.Intn(146)),
		RiskScore:     finding.FraudRiskScore,
		Confidence:    math.Round(math.Max(95.0-float64(distance)*0.5, 60.0)*100) / 100,
		Flags:         flags,
		ArchiveSize:   finding.ArchiveSize,
		Finding:       finding,
	}
}

func derefOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}

// handleAnalyzeClaim accepts one uploaded document, runs the dual-layer
// analysis against the archive and returns the finding wrapped in synthesized
// claim context. The upload is kept on disk under a unique name so archive
// entries stay inspectable.
func (s *Server) handleAnalyzeClaim(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "missing 'file' form field")
		return
	}
	defer file.Close()

	path, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, fmt.Sprintf("failed to store upload: %v", err))
		return
	}

	finding := s.analyzer.AnalyzeAgainstArchive(r.Context(), path)
	s.jsonResponse(w, http.StatusOK, synthesizeClaimContext(finding))
}

// handleCompare accepts two uploads and compares them directly, without
// touching the archive.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	var paths [2]string
	for i, field := range []string{"file1", "file2"} {
		file, header, err := r.FormFile(field)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("missing '%s' form field", field))
			return
		}
		path, err := s.saveUpload(file, header.Filename)
		file.Close()
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, fmt.Sprintf("failed to store upload: %v", err))
			return
		}
		paths[i] = path
	}

	comparison, err := s.analyzer.AnalyzeFilePair(r.Context(), paths[0], paths[1])
	if err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, comparison)
}

// saveUpload writes the upload under a uuid-prefixed name, preserving the
// original basename for the finding report.
func (s *Server) saveUpload(src multipart.File, filename string) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	path := filepath.Join(s.uploadDir, fmt.Sprintf("%s_%s", uuid.New().String()[:8], name))

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
