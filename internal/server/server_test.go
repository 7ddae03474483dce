package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawan/claimlens/internal/claims"
	"github.com/pawan/claimlens/internal/forensics"
	"github.com/pawan/claimlens/internal/report"
)

// fakeAnalyzer returns canned findings and records the paths it was given.
type fakeAnalyzer struct {
	finding    forensics.FindingReport
	comparison forensics.ComparisonReport
	pairErr    error
	analyzed   []string
}

func (f *fakeAnalyzer) AnalyzeAgainstArchive(_ context.Context, path string) forensics.FindingReport {
	f.analyzed = append(f.analyzed, path)
	return f.finding
}

func (f *fakeAnalyzer) AnalyzeFilePair(context.Context, string, string) (forensics.ComparisonReport, error) {
	if f.pairErr != nil {
		return forensics.ComparisonReport{}, f.pairErr
	}
	return f.comparison, nil
}

func (f *fakeAnalyzer) ArchiveSize() int { return len(f.analyzed) }

// fakeStore serves fixed analytics.
type fakeStore struct {
	overview  claims.Overview
	audit     claims.AuditStats
	auditErr  error
	countErr  error
	claimRows []claims.Claim
}

func (f *fakeStore) Count(context.Context) (int64, error) {
	return f.overview.TotalClaims, f.countErr
}
func (f *fakeStore) Overview(context.Context) (claims.Overview, error) {
	return f.overview, nil
}
func (f *fakeStore) Hospitals(context.Context, string) ([]claims.HospitalRollup, error) {
	return []claims.HospitalRollup{{HospitalID: "HOSP_0001"}}, nil
}
func (f *fakeStore) HospitalAudit(context.Context, string) (claims.AuditStats, error) {
	return f.audit, f.auditErr
}
func (f *fakeStore) ClaimsForHospital(context.Context, string, int) ([]claims.Claim, error) {
	return f.claimRows, nil
}
func (f *fakeStore) Timeline(context.Context) ([]claims.TimelineBucket, error) {
	return []claims.TimelineBucket{{Month: "Jan", Processed: 10}}, nil
}
func (f *fakeStore) Regions(context.Context) ([]claims.RegionBreakdown, error) {
	return []claims.RegionBreakdown{{Region: "Bihar"}}, nil
}
func (f *fakeStore) GhostBeneficiaries(context.Context) (claims.GhostSummary, error) {
	return claims.GhostSummary{TotalGhostFlags: 3}, nil
}
func (f *fakeStore) ConcurrentClaims(context.Context) (claims.ConcurrentSummary, error) {
	return claims.ConcurrentSummary{TotalConcurrentFlags: 2}, nil
}
func (f *fakeStore) FraudNetwork(context.Context) (claims.Network, error) {
	return claims.Network{}, nil
}
func (f *fakeStore) UpcodingAnalysis(context.Context, map[string]claims.ProcedureBaseline) (claims.UpcodingReport, error) {
	return claims.UpcodingReport{TotalUpcodingCases: 7}, nil
}
func (f *fakeStore) StateIntelligence(context.Context, map[string]claims.StateProfile) ([]claims.StateIntelligence, error) {
	return []claims.StateIntelligence{{State: "Kerala"}}, nil
}

type fakeSummarizer struct{ text string }

func (f fakeSummarizer) Summarize(context.Context, claims.AuditStats) (string, error) {
	return f.text, nil
}

func newTestServer(t *testing.T, analyzer Analyzer, store ClaimStore) *Server {
	t.Helper()
	s, err := New(Config{
		Port:       0,
		UploadDir:  t.TempDir(),
		Analyzer:   analyzer,
		Store:      store,
		Summarizer: fakeSummarizer{text: "narrative"},
	})
	require.NoError(t, err)
	return s
}

func multipartBody(t *testing.T, fields map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, contents := range fields {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write(contents)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealthReportsArchiveAndDB(t *testing.T) {
	s := newTestServer(t, &fakeAnalyzer{}, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["db_connected"])
}

func TestAnalyzeClaimSavesUploadAndReturnsFinding(t *testing.T) {
	matched := "prior.png"
	distance := 2
	fa := &fakeAnalyzer{finding: forensics.FindingReport{
		UploadedFile:      "file.png",
		MatchedFile:       &matched,
		HammingDistance:   &distance,
		SimilarityPercent: 96.88,
		FraudRiskScore:    95,
		Classification:    "Critical",
		FraudDetected:     true,
		ArchiveSize:       3,
	}}
	s := newTestServer(t, fa, nil)

	body, contentType := multipartBody(t, map[string][]byte{"file": []byte("fake image bytes")})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-claim", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var analysis ClaimAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.True(t, analysis.Finding.FraudDetected)
	assert.Equal(t, 95, analysis.RiskScore)
	assert.Equal(t, 3, analysis.ArchiveSize)

	require.Len(t, fa.analyzed, 1)
	saved, err := os.ReadFile(fa.analyzed[0])
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(saved), "upload must be persisted for the archive")
}

func TestSynthesizeClaimContextShape(t *testing.T) {
	matched := "prior.png"
	distance := 4
	analysis := synthesizeClaimContext(forensics.FindingReport{
		UploadedFile:      "copy.png",
		MatchedFile:       &matched,
		HammingDistance:   &distance,
		SimilarityPercent: 93.75,
		FraudRiskScore:    75,
		Classification:    "High Risk",
		FraudDetected:     true,
		ArchiveSize:       7,
	})

	assert.Regexp(t, `^PMJAY-\d{7}$`, analysis.PatientID)
	assert.Regexp(t, `^HOSP_\d{4}$`, analysis.HospitalID)
	assert.Regexp(t, `^PROC_\d{3}$`, analysis.ProcedureCode)
	assert.Regexp(t, `^₹\d+,000$`, analysis.ClaimedAmount)
	assert.Equal(t, 75, analysis.RiskScore)
	assert.Equal(t, 93.0, analysis.Confidence, "95 minus half the distance")
	assert.Equal(t, 7, analysis.ArchiveSize)
	assert.Equal(t, "copy.png", analysis.Finding.UploadedFile)

	require.Len(t, analysis.Flags, 3)
	assert.Contains(t, analysis.Flags[0], "prior.png")
	assert.Contains(t, analysis.Flags[0], "93.75%")
	assert.Contains(t, analysis.Flags[1], "4 bits")
	assert.Contains(t, analysis.Flags[2], "High Risk")
}

func TestSynthesizeClaimContextFirstUpload(t *testing.T) {
	analysis := synthesizeClaimContext(forensics.FindingReport{
		UploadedFile:   "first.png",
		FraudRiskScore: 5,
		Classification: "First Upload — No Reference",
		ArchiveSize:    1,
	})

	assert.Empty(t, analysis.Flags, "clean baseline carries no flags")
	assert.Equal(t, 95.0, analysis.Confidence)
}

func TestSynthesizeClaimContextPartialMatch(t *testing.T) {
	matched := "prior.png"
	distance := 14
	analysis := synthesizeClaimContext(forensics.FindingReport{
		UploadedFile:      "near.png",
		MatchedFile:       &matched,
		HammingDistance:   &distance,
		SimilarityPercent: 78.13,
		FraudRiskScore:    40,
		Classification:    "Moderate",
		ArchiveSize:       2,
	})

	require.Len(t, analysis.Flags, 1)
	assert.Contains(t, analysis.Flags[0], "Partial similarity")
	assert.Equal(t, 88.0, analysis.Confidence)
}

func TestSynthesizeClaimContextRenderFailure(t *testing.T) {
	analysis := synthesizeClaimContext(forensics.FindingReport{
		UploadedFile:   "bad.bin",
		FraudRiskScore: 10,
		Classification: "Analysis Incomplete — Could Not Render Document",
		Method:         forensics.MethodFailed,
		ArchiveSize:    4,
	})

	require.Len(t, analysis.Flags, 1)
	assert.Contains(t, analysis.Flags[0], "Analysis Incomplete")
}

func TestAnalyzeClaimMissingFile(t *testing.T) {
	s := newTestServer(t, &fakeAnalyzer{}, nil)

	body, contentType := multipartBody(t, map[string][]byte{"wrong": []byte("x")})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-claim", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing 'file'")
}

func TestCompareReturnsComparison(t *testing.T) {
	fa := &fakeAnalyzer{comparison: forensics.ComparisonReport{
		HammingDistance:   4,
		SimilarityPercent: 93.75,
		FraudDetected:     true,
	}}
	s := newTestServer(t, fa, nil)

	body, contentType := multipartBody(t, map[string][]byte{
		"file1": []byte("a"),
		"file2": []byte("b"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var cmp forensics.ComparisonReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cmp))
	assert.Equal(t, 4, cmp.HammingDistance)
}

func TestCompareMissingSecondFile(t *testing.T) {
	s := newTestServer(t, &fakeAnalyzer{}, nil)

	body, contentType := multipartBody(t, map[string][]byte{"file1": []byte("a")})
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file2")
}

func TestCompareRenderFailure(t *testing.T) {
	fa := &fakeAnalyzer{pairErr: &forensics.RenderError{File: "file1.png"}}
	s := newTestServer(t, fa, nil)

	body, contentType := multipartBody(t, map[string][]byte{
		"file1": []byte("a"),
		"file2": []byte("b"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalyticsRoutesWithoutDatabase(t *testing.T) {
	s := newTestServer(t, &fakeAnalyzer{}, nil)

	for _, path := range []string{
		"/api/stats", "/api/hospitals", "/api/claims", "/api/analytics",
		"/api/ghost-beneficiaries", "/api/concurrent-claims",
		"/api/fraud-network", "/api/upcoding-analysis", "/api/state-intelligence",
	} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestStatsWithStore(t *testing.T) {
	store := &fakeStore{overview: claims.Overview{TotalClaims: 10000, FraudCount: 1200}}
	s := newTestServer(t, &fakeAnalyzer{}, store)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var overview claims.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	assert.Equal(t, int64(10000), overview.TotalClaims)
}

func TestClaimsRejectsBadLimit(t *testing.T) {
	s := newTestServer(t, &fakeAnalyzer{}, &fakeStore{})

	for _, limit := range []string{"0", "-5", "1001", "abc"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/claims?limit="+limit, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestAnalyticsCombinesTimelineAndRegions(t *testing.T) {
	s := newTestServer(t, &fakeAnalyzer{}, &fakeStore{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "timeline")
	assert.Contains(t, body, "regions")
}

func TestGenerateReportReturnsPDF(t *testing.T) {
	store := &fakeStore{audit: claims.AuditStats{HospitalID: "HOSP_0042", State: "Bihar", TotalClaims: 5}}
	s := newTestServer(t, &fakeAnalyzer{}, store)
	s.renderPDF = func(_ context.Context, data report.Data) ([]byte, error) {
		assert.Equal(t, "HOSP_0042", data.Stats.HospitalID)
		assert.Equal(t, "narrative", data.Narrative)
		return []byte("%PDF-1.4 fake"), nil
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate-report/HOSP_0042", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "HOSP_0042")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestGenerateReportUnknownHospital(t *testing.T) {
	store := &fakeStore{auditErr: claims.ErrHospitalNotFound}
	s := newTestServer(t, &fakeAnalyzer{}, store)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate-report/HOSP_NOPE", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateReportWithoutChrome(t *testing.T) {
	store := &fakeStore{audit: claims.AuditStats{HospitalID: "HOSP_0001"}}
	s := newTestServer(t, &fakeAnalyzer{}, store)
	s.renderPDF = func(context.Context, report.Data) ([]byte, error) {
		return nil, &report.PDFError{Message: "headless browser conversion failed", Cause: errors.New("chrome not found")}
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate-report/HOSP_0001", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &fakeAnalyzer{}, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRequiresAnalyzer(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
