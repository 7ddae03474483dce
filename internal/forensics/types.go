package forensics

// Method records how far the analysis got and which renderer produced the
// raster, if any.
type Method string

const (
	// MethodPrimaryRenderer means the high-fidelity PDF renderer produced the raster.
	MethodPrimaryRenderer Method = "primary-renderer"
	// MethodFallbackRenderer means the fallback rasterizer produced the raster.
	MethodFallbackRenderer Method = "fallback-renderer"
	// MethodRasterOnly means the document was decoded directly as a bitmap.
	MethodRasterOnly Method = "raster-only"
	// MethodDigestOnly means rendering failed but the digest layer matched.
	MethodDigestOnly Method = "digest-only"
	// MethodFailed means rendering failed and the digest layer found nothing.
	MethodFailed Method = "failed"
	// MethodValidationError means the input was rejected before analysis.
	MethodValidationError Method = "validation-error"
)

// LayerFinding is a single detection layer's verdict about a submission.
type LayerFinding struct {
	MatchedFile       *string `json:"matched_file"`
	HammingDistance   *int    `json:"hamming_distance"`
	SimilarityPercent float64 `json:"similarity_percent"`
	FraudRiskScore    int     `json:"fraud_risk_score"`
	Classification    string  `json:"classification"`
	FraudDetected     bool    `json:"fraud_detected"`
}

// Layers carries the per-layer sub-results alongside the merged finding.
// Either entry is nil when its layer produced no finding.
type Layers struct {
	Digest      *LayerFinding `json:"sha256"`
	Fingerprint *LayerFinding `json:"phash"`
}

// FindingReport is the merged result of an archive analysis.
type FindingReport struct {
	UploadedFile      string  `json:"uploaded_file"`
	MatchedFile       *string `json:"matched_file"`
	HammingDistance   *int    `json:"hamming_distance"`
	SimilarityPercent float64 `json:"similarity_percent"`
	FraudRiskScore    int     `json:"fraud_risk_score"`
	Classification    string  `json:"classification"`
	FraudDetected     bool    `json:"fraud_detected"`
	ArchiveSize       int     `json:"archive_size"`
	Method            Method  `json:"method"`
	Layers            Layers  `json:"layers"`
}

// ComparisonReport is the result of a stateless pairwise comparison.
type ComparisonReport struct {
	Hash1             string  `json:"hash_1"`
	Hash2             string  `json:"hash_2"`
	HammingDistance   int     `json:"hamming_distance"`
	SimilarityPercent float64 `json:"similarity_percent"`
	FraudRiskScore    int     `json:"fraud_risk_score"`
	Classification    string  `json:"classification"`
	FraudDetected     bool    `json:"fraud_detected"`
}
