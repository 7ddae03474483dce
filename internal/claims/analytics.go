package claims

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrHospitalNotFound is returned when an audit target has no claims.
var ErrHospitalNotFound = errors.New("hospital not found")

// Overview returns the dashboard headline aggregates.
func (s *Store) Overview(ctx context.Context) (Overview, error) {
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE is_suspicious),
       COALESCE(AVG(risk_score), 0),
       COUNT(*) FILTER (WHERE risk_category = 'Critical'),
       COUNT(*) FILTER (WHERE ghost_flag),
       COUNT(*) FILTER (WHERE concurrent_flag),
       COUNT(*) FILTER (WHERE upcoding_flag),
       COALESCE(SUM(claim_amount_inr) FILTER (WHERE is_suspicious), 0)
FROM claims`
	var o Overview
	var fundsAtRisk float64
	err := s.pool.QueryRow(ctx, q).Scan(
		&o.TotalClaims, &o.FraudCount, &o.AvgRiskScore, &o.CriticalCases,
		&o.GhostBeneficiaries, &o.ConcurrentFraud, &o.UpcodingCases, &fundsAtRisk,
	)
	if err != nil {
		return Overview{}, fmt.Errorf("overview query: %w", err)
	}
	o.AvgRiskScore = round2(o.AvgRiskScore)
	o.FundsAtRiskINR = int64(math.Round(fundsAtRisk))
	return o, nil
}

// Hospitals returns per-hospital rollups, highest average risk first,
// optionally filtered by state.
func (s *Store) Hospitals(ctx context.Context, state string) ([]HospitalRollup, error) {
	const q = `
SELECT hospital_id,
       MIN(state),
       COUNT(*),
       AVG(claim_amount_inr),
       AVG(risk_score),
       COUNT(*) FILTER (WHERE image_reuse_flag),
       COUNT(*) FILTER (WHERE duplicate_flag),
       COUNT(*) FILTER (WHERE concurrent_flag),
       COUNT(*) FILTER (WHERE ghost_flag),
       COUNT(*) FILTER (WHERE upcoding_flag),
       AVG(upcoding_deviation)
FROM claims
WHERE $1 = '' OR state = $1
GROUP BY hospital_id
ORDER BY AVG(risk_score) DESC`
	rows, err := s.pool.Query(ctx, q, state)
	if err != nil {
		return nil, fmt.Errorf("hospital rollup query: %w", err)
	}
	defer rows.Close()

	var out []HospitalRollup
	for rows.Next() {
		var h HospitalRollup
		if err := rows.Scan(
			&h.HospitalID, &h.State, &h.TotalClaims, &h.AvgClaimAmountINR,
			&h.AvgRiskScore, &h.ImageReuseCount, &h.DuplicateCount,
			&h.ConcurrentCount, &h.GhostCount, &h.UpcodingCount,
			&h.AvgUpcodingDeviation,
		); err != nil {
			return nil, fmt.Errorf("scan hospital rollup: %w", err)
		}
		h.AvgClaimAmountINR = round2(h.AvgClaimAmountINR)
		h.AvgRiskScore = round2(h.AvgRiskScore)
		h.AvgUpcodingDeviation = round2(h.AvgUpcodingDeviation)
		out = append(out, h)
	}
	return out, rows.Err()
}

// HospitalAudit builds the audit profile for one hospital.
func (s *Store) HospitalAudit(ctx context.Context, hospitalID string) (AuditStats, error) {
	const q = `
SELECT MIN(state),
       COUNT(*),
       COUNT(*) FILTER (WHERE is_suspicious),
       COUNT(*) FILTER (WHERE image_reuse_flag),
       COUNT(*) FILTER (WHERE duplicate_flag),
       COUNT(*) FILTER (WHERE concurrent_flag),
       COUNT(*) FILTER (WHERE ghost_flag),
       COALESCE(AVG(risk_score), 0),
       COALESCE(AVG(upcoding_deviation), 0)
FROM claims
WHERE hospital_id = $1`
	a := AuditStats{HospitalID: hospitalID}
	var state *string
	err := s.pool.QueryRow(ctx, q, hospitalID).Scan(
		&state, &a.TotalClaims, &a.FraudCount, &a.ImageReuseCount,
		&a.DuplicateCount, &a.ConcurrentCount, &a.GhostCount,
		&a.AvgRiskScore, &a.AvgClaimDeviation,
	)
	if err != nil {
		return AuditStats{}, fmt.Errorf("hospital audit query: %w", err)
	}
	if a.TotalClaims == 0 || state == nil {
		return AuditStats{}, ErrHospitalNotFound
	}
	a.State = *state
	a.AvgRiskScore = round2(a.AvgRiskScore)
	a.AvgClaimDeviation = round2(a.AvgClaimDeviation)
	if a.AvgRiskScore > suspiciousCutoff {
		a.RiskCategory = "High"
	} else {
		a.RiskCategory = "Low"
	}
	return a, nil
}

// ClaimsForHospital lists a hospital's claims; with an empty hospital id it
// returns the first `limit` claims overall.
func (s *Store) ClaimsForHospital(ctx context.Context, hospitalID string, limit int) ([]Claim, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT claim_id, patient_id, hospital_id, state, procedure_code,
       claim_amount_inr, anomaly_score, image_reuse_flag, duplicate_flag,
       concurrent_flag, ghost_flag, upcoding_flag, upcoding_deviation,
       risk_score, risk_category, is_suspicious, admission_date
FROM claims
WHERE $1 = '' OR hospital_id = $1
ORDER BY risk_score DESC
LIMIT $2`
	rows, err := s.pool.Query(ctx, q, hospitalID, limit)
	if err != nil {
		return nil, fmt.Errorf("claims query: %w", err)
	}
	defer rows.Close()

	var out []Claim
	for rows.Next() {
		var c Claim
		if err := rows.Scan(
			&c.ClaimID, &c.PatientID, &c.HospitalID, &c.State, &c.ProcedureCode,
			&c.ClaimAmountINR, &c.AnomalyScore, &c.ImageReuseFlag,
			&c.DuplicateFlag, &c.ConcurrentFlag, &c.GhostFlag, &c.UpcodingFlag,
			&c.UpcodingDeviation, &c.RiskScore, &c.RiskCategory,
			&c.IsSuspicious, &c.AdmissionDate,
		); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Timeline groups processing volume by admission month. Savings assume 40%
// of flagged amounts are recovered.
func (s *Store) Timeline(ctx context.Context) ([]TimelineBucket, error) {
	const q = `
SELECT to_char(date_trunc('month', admission_date), 'Mon'),
       date_trunc('month', admission_date) AS m,
       COUNT(*),
       COUNT(*) FILTER (WHERE risk_score > 60),
       COALESCE(SUM(claim_amount_inr) FILTER (WHERE risk_score > 60), 0) * 0.4
FROM claims
GROUP BY m
ORDER BY m`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("timeline query: %w", err)
	}
	defer rows.Close()

	var out []TimelineBucket
	for rows.Next() {
		var b TimelineBucket
		var month time.Time
		var saved float64
		if err := rows.Scan(&b.Month, &month, &b.Processed, &b.Flagged, &saved); err != nil {
			return nil, fmt.Errorf("scan timeline bucket: %w", err)
		}
		b.SavedINR = int64(math.Round(saved))
		out = append(out, b)
	}
	return out, rows.Err()
}

// Regions splits the top states by volume into legitimate and fraudulent
// claim counts.
func (s *Store) Regions(ctx context.Context) ([]RegionBreakdown, error) {
	const q = `
SELECT state,
       COUNT(*) FILTER (WHERE risk_score <= 60),
       COUNT(*) FILTER (WHERE risk_score > 60)
FROM claims
GROUP BY state
ORDER BY COUNT(*) DESC
LIMIT 8`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("regions query: %w", err)
	}
	defer rows.Close()

	var out []RegionBreakdown
	for rows.Next() {
		var r RegionBreakdown
		if err := rows.Scan(&r.Region, &r.Legitimate, &r.Fraudulent); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GhostBeneficiaries summarizes suspected ghost/invalid beneficiaries with a
// sample of the flagged claims.
func (s *Store) GhostBeneficiaries(ctx context.Context) (GhostSummary, error) {
	const summaryQ = `
SELECT COUNT(*) FILTER (WHERE ghost_flag),
       COUNT(DISTINCT patient_id) FILTER (WHERE ghost_flag),
       (SELECT COUNT(*) FROM (
           SELECT patient_id FROM claims GROUP BY patient_id
           HAVING COUNT(DISTINCT hospital_id) > 2) multi),
       COUNT(DISTINCT state) FILTER (WHERE ghost_flag),
       COALESCE(SUM(claim_amount_inr) FILTER (WHERE ghost_flag), 0)
FROM claims`
	var g GhostSummary
	err := s.pool.QueryRow(ctx, summaryQ).Scan(
		&g.TotalGhostFlags, &g.UniqueSuspiciousPatients,
		&g.MultiHospitalPatients, &g.StatesAffected, &g.TotalFraudulentINR,
	)
	if err != nil {
		return GhostSummary{}, fmt.Errorf("ghost summary query: %w", err)
	}
	g.TotalFraudulentINR = round2(g.TotalFraudulentINR)

	const casesQ = `
SELECT claim_id, patient_id, hospital_id, state, risk_score, claim_amount_inr
FROM claims WHERE ghost_flag ORDER BY risk_score DESC LIMIT 20`
	rows, err := s.pool.Query(ctx, casesQ)
	if err != nil {
		return GhostSummary{}, fmt.Errorf("ghost cases query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c GhostCase
		if err := rows.Scan(&c.ClaimID, &c.PatientID, &c.HospitalID, &c.State,
			&c.RiskScore, &c.ClaimAmountINR); err != nil {
			return GhostSummary{}, fmt.Errorf("scan ghost case: %w", err)
		}
		g.Cases = append(g.Cases, c)
	}
	return g, rows.Err()
}

// ConcurrentClaims finds patients filing at two or more hospitals.
func (s *Store) ConcurrentClaims(ctx context.Context) (ConcurrentSummary, error) {
	var summary ConcurrentSummary
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE concurrent_flag) FROM claims`,
	).Scan(&summary.TotalConcurrentFlags)
	if err != nil {
		return ConcurrentSummary{}, fmt.Errorf("concurrent count query: %w", err)
	}

	const q = `
SELECT patient_id,
       array_agg(DISTINCT hospital_id),
       COUNT(*),
       MAX(risk_score),
       array_agg(DISTINCT state)
FROM claims
GROUP BY patient_id
HAVING COUNT(DISTINCT hospital_id) >= 2
ORDER BY COUNT(*) DESC
LIMIT 15`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return ConcurrentSummary{}, fmt.Errorf("collision query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c Collision
		if err := rows.Scan(&c.PatientID, &c.HospitalsInvolved, &c.NumClaims,
			&c.MaxRiskScore, &c.States); err != nil {
			return ConcurrentSummary{}, fmt.Errorf("scan collision: %w", err)
		}
		c.MaxRiskScore = round2(c.MaxRiskScore)
		summary.TopCollisions = append(summary.TopCollisions, c)
	}
	if err := rows.Err(); err != nil {
		return ConcurrentSummary{}, err
	}

	err = s.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM (
    SELECT patient_id FROM claims GROUP BY patient_id
    HAVING COUNT(DISTINCT hospital_id) >= 2) collisions`,
	).Scan(&summary.UniqueCollisionPatients)
	if err != nil {
		return ConcurrentSummary{}, fmt.Errorf("collision count query: %w", err)
	}
	return summary, nil
}

// FraudNetwork builds the hospital co-claim graph: hospitals sharing the same
// patients form suspicious clusters.
func (s *Store) FraudNetwork(ctx context.Context) (Network, error) {
	const edgesQ = `
SELECT a.hospital_id, b.hospital_id, COUNT(DISTINCT a.patient_id)
FROM claims a
JOIN claims b ON a.patient_id = b.patient_id AND a.hospital_id < b.hospital_id
GROUP BY a.hospital_id, b.hospital_id
ORDER BY COUNT(DISTINCT a.patient_id) DESC
LIMIT 30`
	rows, err := s.pool.Query(ctx, edgesQ)
	if err != nil {
		return Network{}, fmt.Errorf("network edges query: %w", err)
	}
	defer rows.Close()

	var net Network
	seen := map[string]bool{}
	for rows.Next() {
		var e NetworkEdge
		if err := rows.Scan(&e.Source, &e.Target, &e.SharedPatients); err != nil {
			return Network{}, fmt.Errorf("scan network edge: %w", err)
		}
		e.SuspicionScore = min64(e.SharedPatients*5, 100)
		net.Edges = append(net.Edges, e)
		seen[e.Source] = true
		seen[e.Target] = true
		if e.SharedPatients >= 3 {
			net.HighCentralityCount++
		}
	}
	if err := rows.Err(); err != nil {
		return Network{}, err
	}

	for hospital := range seen {
		var risk float64
		err := s.pool.QueryRow(ctx,
			`SELECT COALESCE(AVG(risk_score), 0) FROM claims WHERE hospital_id = $1`,
			hospital,
		).Scan(&risk)
		if err != nil {
			return Network{}, fmt.Errorf("node risk query: %w", err)
		}
		net.Nodes = append(net.Nodes, NetworkNode{ID: hospital, RiskScore: round2(risk)})
	}
	return net, nil
}

// UpcodingAnalysis compares billed amounts against the procedure baselines.
// Excess assumes roughly 30% of upcoded amounts exceed legitimate billing.
func (s *Store) UpcodingAnalysis(ctx context.Context, baselines map[string]ProcedureBaseline) (UpcodingReport, error) {
	var report UpcodingReport
	var upcodedSum float64
	err := s.pool.QueryRow(ctx, `
SELECT COUNT(*) FILTER (WHERE upcoding_flag),
       COALESCE(SUM(claim_amount_inr) FILTER (WHERE upcoding_flag), 0)
FROM claims`,
	).Scan(&report.TotalUpcodingCases, &upcodedSum)
	if err != nil {
		return UpcodingReport{}, fmt.Errorf("upcoding summary query: %w", err)
	}
	report.EstimatedExcessINR = math.Round(upcodedSum * 0.3)

	const q = `
SELECT procedure_code,
       AVG(claim_amount_inr),
       COUNT(*) FILTER (WHERE upcoding_flag)
FROM claims
GROUP BY procedure_code`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return UpcodingReport{}, fmt.Errorf("procedure stats query: %w", err)
	}
	defer rows.Close()

	var stats []ProcedureStat
	for rows.Next() {
		var p ProcedureStat
		if err := rows.Scan(&p.ProcedureCode, &p.AvgBilledINR, &p.UpcodedClaims); err != nil {
			return UpcodingReport{}, fmt.Errorf("scan procedure stat: %w", err)
		}
		baseline, ok := baselines[p.ProcedureCode]
		if !ok {
			continue
		}
		p.ProcedureName = baseline.Name
		p.ExpectedMaxINR = baseline.Max
		p.AvgBilledINR = math.Round(p.AvgBilledINR)
		p.DeviationPct = math.Round((p.AvgBilledINR-float64(baseline.Max))/float64(baseline.Max)*1000) / 10
		stats = append(stats, p)
	}
	if err := rows.Err(); err != nil {
		return UpcodingReport{}, err
	}

	sortProcedureStats(stats)
	if len(stats) > 10 {
		stats = stats[:10]
	}
	report.TopUpcodedProcedures = stats
	return report, nil
}

// StateIntelligence returns per-state risk intelligence with dynamic threat
// levels, highest fraud rate first.
func (s *Store) StateIntelligence(ctx context.Context, profiles map[string]StateProfile) ([]StateIntelligence, error) {
	const q = `
SELECT state,
       COUNT(*),
       COUNT(*) FILTER (WHERE risk_score > 60),
       AVG(risk_score),
       COUNT(*) FILTER (WHERE ghost_flag),
       COUNT(*) FILTER (WHERE concurrent_flag),
       COUNT(*) FILTER (WHERE upcoding_flag),
       COALESCE(SUM(claim_amount_inr) FILTER (WHERE risk_score > 60), 0)
FROM claims
GROUP BY state`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("state intelligence query: %w", err)
	}
	defer rows.Close()

	var out []StateIntelligence
	for rows.Next() {
		var si StateIntelligence
		var loss float64
		if err := rows.Scan(&si.State, &si.TotalClaims, &si.FraudCount,
			&si.AvgRiskScore, &si.GhostBeneficiaries, &si.ConcurrentClaims,
			&si.UpcodingCases, &loss); err != nil {
			return nil, fmt.Errorf("scan state intelligence: %w", err)
		}
		si.AvgRiskScore = round2(si.AvgRiskScore)
		si.FraudRatePct = math.Round(float64(si.FraudCount)/float64(si.TotalClaims)*1000) / 10
		si.ThreatLevel = threatLevel(si.FraudRatePct)
		si.EstimatedLossINR = int64(math.Round(loss))
		si.PrimaryFraudType = "Mixed"
		if profile, ok := profiles[si.State]; ok {
			si.PrimaryFraudType = profile.PrimaryFraud
		}
		out = append(out, si)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortStateIntelligence(out)
	return out, nil
}

// threatLevel grades a fraud rate dynamically rather than from static priors.
func threatLevel(fraudRatePct float64) string {
	switch {
	case fraudRatePct > 20:
		return "Critical"
	case fraudRatePct > 13:
		return "High"
	case fraudRatePct > 7:
		return "Elevated"
	default:
		return "Low"
	}
}

func sortProcedureStats(stats []ProcedureStat) {
	for i := 1; i < len(stats); i++ {
		for j := i; j > 0 && stats[j].DeviationPct > stats[j-1].DeviationPct; j-- {
			stats[j], stats[j-1] = stats[j-1], stats[j]
		}
	}
}

func sortStateIntelligence(out []StateIntelligence) {
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].FraudRatePct > out[j-1].FraudRatePct; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
