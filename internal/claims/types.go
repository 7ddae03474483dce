package claims

import "time"

// Claim is one synthetic PM-JAY claim record.
type Claim struct {
	ClaimID           string    `json:"claim_id"`
	PatientID         string    `json:"patient_id"`
	HospitalID        string    `json:"hospital_id"`
	State             string    `json:"state"`
	ProcedureCode     string    `json:"procedure_code"`
	ClaimAmountINR    float64   `json:"claim_amount_inr"`
	AnomalyScore      float64   `json:"anomaly_score"`
	ImageReuseFlag    bool      `json:"image_reuse_flag"`
	DuplicateFlag     bool      `json:"duplicate_flag"`
	ConcurrentFlag    bool      `json:"concurrent_flag"`
	GhostFlag         bool      `json:"ghost_flag"`
	UpcodingFlag      bool      `json:"upcoding_flag"`
	UpcodingDeviation float64   `json:"upcoding_deviation"`
	RiskScore         float64   `json:"risk_score"`
	RiskCategory      string    `json:"risk_category"`
	IsSuspicious      bool      `json:"is_suspicious"`
	AdmissionDate     time.Time `json:"admission_date"`
}

// Overview is the dashboard headline aggregate.
type Overview struct {
	TotalClaims        int64   `json:"total_claims"`
	FraudCount         int64   `json:"fraud_count"`
	AvgRiskScore       float64 `json:"avg_risk_score"`
	CriticalCases      int64   `json:"critical_cases"`
	GhostBeneficiaries int64   `json:"ghost_beneficiaries"`
	ConcurrentFraud    int64   `json:"concurrent_fraud"`
	UpcodingCases      int64   `json:"upcoding_cases"`
	FundsAtRiskINR     int64   `json:"funds_at_risk_inr"`
}

// HospitalRollup aggregates one hospital's claims.
type HospitalRollup struct {
	HospitalID           string  `json:"hospital_id"`
	State                string  `json:"state"`
	TotalClaims          int64   `json:"total_claims"`
	AvgClaimAmountINR    float64 `json:"avg_claim_amount_inr"`
	AvgRiskScore         float64 `json:"avg_risk_score"`
	ImageReuseCount      int64   `json:"image_reuse_count"`
	DuplicateCount       int64   `json:"duplicate_count"`
	ConcurrentCount      int64   `json:"concurrent_count"`
	GhostCount           int64   `json:"ghost_count"`
	UpcodingCount        int64   `json:"upcoding_count"`
	AvgUpcodingDeviation float64 `json:"avg_upcoding_deviation"`
}

// AuditStats is the per-hospital profile handed to the audit narrative
// generator and the PDF report.
type AuditStats struct {
	HospitalID        string  `json:"hospital_id"`
	State             string  `json:"state"`
	TotalClaims       int64   `json:"total_claims"`
	FraudCount        int64   `json:"fraud_count"`
	ImageReuseCount   int64   `json:"image_reuse_count"`
	DuplicateCount    int64   `json:"duplicate_count"`
	ConcurrentCount   int64   `json:"concurrent_count"`
	GhostCount        int64   `json:"ghost_count"`
	AvgRiskScore      float64 `json:"avg_risk_score"`
	RiskCategory      string  `json:"risk_category"`
	AvgClaimDeviation float64 `json:"avg_claim_deviation"`
}

// TimelineBucket is one month of processing volume.
type TimelineBucket struct {
	Month     string `json:"month"`
	Processed int64  `json:"processed"`
	Flagged   int64  `json:"flagged"`
	SavedINR  int64  `json:"saved"`
}

// RegionBreakdown splits one state's claims into legitimate and fraudulent.
type RegionBreakdown struct {
	Region     string `json:"region"`
	Legitimate int64  `json:"legitimate"`
	Fraudulent int64  `json:"fraudulent"`
}

// GhostSummary aggregates suspected ghost/invalid beneficiaries.
type GhostSummary struct {
	TotalGhostFlags          int64       `json:"total_ghost_flags"`
	UniqueSuspiciousPatients int64       `json:"unique_suspicious_beneficiaries"`
	MultiHospitalPatients    int64       `json:"multi_hospital_patients"`
	StatesAffected           int64       `json:"states_affected"`
	TotalFraudulentINR       float64     `json:"total_fraudulent_amount_inr"`
	Cases                    []GhostCase `json:"cases"`
}

// GhostCase is one flagged claim in the ghost-beneficiary summary.
type GhostCase struct {
	ClaimID        string  `json:"claim_id"`
	PatientID      string  `json:"patient_id"`
	HospitalID     string  `json:"hospital_id"`
	State          string  `json:"state"`
	RiskScore      float64 `json:"risk_score"`
	ClaimAmountINR float64 `json:"claim_amount_inr"`
}

// Collision is a patient filing claims at two or more hospitals.
type Collision struct {
	PatientID         string   `json:"patient_id"`
	HospitalsInvolved []string `json:"hospitals_involved"`
	NumClaims         int64    `json:"num_claims"`
	MaxRiskScore      float64  `json:"max_risk_score"`
	States            []string `json:"states"`
}

// ConcurrentSummary reports multi-hospital ("teleportation") fraud.
type ConcurrentSummary struct {
	TotalConcurrentFlags    int64       `json:"total_concurrent_flags"`
	UniqueCollisionPatients int64       `json:"unique_collision_patients"`
	TopCollisions           []Collision `json:"top_collisions"`
}

// NetworkNode is a hospital in the co-claim network graph.
type NetworkNode struct {
	ID        string  `json:"id"`
	RiskScore float64 `json:"risk_score"`
}

// NetworkEdge links two hospitals sharing patients.
type NetworkEdge struct {
	Source         string `json:"source"`
	Target         string `json:"target"`
	SharedPatients int64  `json:"shared_patients"`
	SuspicionScore int64  `json:"suspicion_score"`
}

// Network is the hospital collusion graph.
type Network struct {
	Nodes               []NetworkNode `json:"nodes"`
	Edges               []NetworkEdge `json:"edges"`
	HighCentralityCount int           `json:"high_centrality_count"`
}

// ProcedureStat is one procedure's billing profile.
type ProcedureStat struct {
	ProcedureCode  string  `json:"procedure_code"`
	ProcedureName  string  `json:"procedure_name"`
	AvgBilledINR   float64 `json:"avg_billed_inr"`
	ExpectedMaxINR int64   `json:"expected_max_inr"`
	DeviationPct   float64 `json:"deviation_pct"`
	UpcodedClaims  int64   `json:"upcoded_claims"`
}

// UpcodingReport aggregates billing above procedure baselines.
type UpcodingReport struct {
	TotalUpcodingCases   int64           `json:"total_upcoding_cases"`
	EstimatedExcessINR   float64         `json:"estimated_excess_inr"`
	TopUpcodedProcedures []ProcedureStat `json:"top_upcoded_procedures"`
}

// StateIntelligence is one state's risk profile with a dynamic threat level.
type StateIntelligence struct {
	State              string  `json:"state"`
	TotalClaims        int64   `json:"total_claims"`
	FraudCount         int64   `json:"fraud_count"`
	FraudRatePct       float64 `json:"fraud_rate_pct"`
	AvgRiskScore       float64 `json:"avg_risk_score"`
	ThreatLevel        string  `json:"threat_level"`
	PrimaryFraudType   string  `json:"primary_fraud_type"`
	GhostBeneficiaries int64   `json:"ghost_beneficiaries"`
	ConcurrentClaims   int64   `json:"concurrent_claims"`
	UpcodingCases      int64   `json:"upcoding_cases"`
	EstimatedLossINR   int64   `json:"estimated_loss_inr"`
}
