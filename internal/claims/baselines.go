package claims

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// ProcedureBaseline is the expected billing range for one PM-JAY package.
type ProcedureBaseline struct {
	Name string `json:"name"`
	Min  int64  `json:"min"`
	Max  int64  `json:"max"`
}

// StateProfile carries the CAG-audit risk priors for one state.
type StateProfile struct {
	BaseRisk     float64
	PrimaryFraud string
	ThreatLevel  string
}

// DefaultBaselines returns the PM-JAY package rates: twenty named procedures
// plus generic fill up to PROC_050.
func DefaultBaselines() map[string]ProcedureBaseline {
	baselines := map[string]ProcedureBaseline{
		"PROC_001": {Name: "General Ward Admission", Min: 1000, Max: 5000},
		"PROC_002": {Name: "Cataract Surgery", Min: 8000, Max: 15000},
		"PROC_003": {Name: "Appendectomy", Min: 15000, Max: 35000},
		"PROC_004": {Name: "Knee Replacement", Min: 80000, Max: 150000},
		"PROC_005": {Name: "CABG (Heart Bypass)", Min: 150000, Max: 250000},
		"PROC_006": {Name: "Hip Replacement", Min: 85000, Max: 160000},
		"PROC_007": {Name: "Dialysis (per session)", Min: 800, Max: 1500},
		"PROC_008": {Name: "Chemotherapy", Min: 15000, Max: 50000},
		"PROC_009": {Name: "Normal Delivery", Min: 3000, Max: 9000},
		"PROC_010": {Name: "C-Section", Min: 8000, Max: 18000},
		"PROC_011": {Name: "Hernia Repair", Min: 12000, Max: 28000},
		"PROC_012": {Name: "Tonsillectomy", Min: 7000, Max: 18000},
		"PROC_013": {Name: "Spinal Fusion", Min: 100000, Max: 200000},
		"PROC_014": {Name: "Renal Transplant", Min: 200000, Max: 350000},
		"PROC_015": {Name: "Hysterectomy", Min: 18000, Max: 40000},
		"PROC_016": {Name: "Cholecystectomy", Min: 14000, Max: 30000},
		"PROC_017": {Name: "Angioplasty", Min: 80000, Max: 150000},
		"PROC_018": {Name: "ICU Admission (per day)", Min: 4000, Max: 10000},
		"PROC_019": {Name: "Neonatal Care", Min: 5000, Max: 20000},
		"PROC_020": {Name: "CT Scan", Min: 800, Max: 3000},
	}
	for i := 21; i <= 50; i++ {
		code := fmt.Sprintf("PROC_%03d", i)
		baselines[code] = ProcedureBaseline{
			Name: fmt.Sprintf("Medical Procedure %d", i),
			Min:  5000,
			Max:  50000,
		}
	}
	return baselines
}

// DefaultStateProfiles returns the per-state risk priors.
func DefaultStateProfiles() map[string]StateProfile {
	return map[string]StateProfile{
		"Maharashtra":    {BaseRisk: 25, PrimaryFraud: "Image Reuse", ThreatLevel: "High"},
		"Uttar Pradesh":  {BaseRisk: 40, PrimaryFraud: "Duplicate Claims", ThreatLevel: "Critical"},
		"Karnataka":      {BaseRisk: 20, PrimaryFraud: "Upcoding", ThreatLevel: "Elevated"},
		"Tamil Nadu":     {BaseRisk: 22, PrimaryFraud: "Ghost Beneficiaries", ThreatLevel: "Elevated"},
		"Gujarat":        {BaseRisk: 18, PrimaryFraud: "Procedure Mismatch", ThreatLevel: "Low"},
		"Kerala":         {BaseRisk: 30, PrimaryFraud: "Dead Patient Claims", ThreatLevel: "High"},
		"Rajasthan":      {BaseRisk: 35, PrimaryFraud: "Duplicate Claims", ThreatLevel: "High"},
		"Madhya Pradesh": {BaseRisk: 38, PrimaryFraud: "Ghost Beneficiaries", ThreatLevel: "Critical"},
		"Bihar":          {BaseRisk: 45, PrimaryFraud: "Concurrent Claims", ThreatLevel: "Critical"},
		"West Bengal":    {BaseRisk: 28, PrimaryFraud: "Upcoding", ThreatLevel: "High"},
	}
}

// baselineOverrideSchema validates operator-supplied baseline files: a map of
// procedure codes to {name,min,max} objects with sane ranges.
const baselineOverrideSchema = `{
	"type": "object",
	"patternProperties": {
		"^PROC_[0-9]{3}$": {
			"type": "object",
			"required": ["name", "min", "max"],
			"properties": {
				"name": {"type": "string", "minLength": 1},
				"min": {"type": "integer", "minimum": 0},
				"max": {"type": "integer", "minimum": 1}
			},
			"additionalProperties": false
		}
	},
	"additionalProperties": false
}`

// LoadBaselineOverrides reads a JSON baseline file, validates it against the
// embedded schema and merges it over the defaults.
func LoadBaselineOverrides(path string) (map[string]ProcedureBaseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baseline overrides: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(baselineOverrideSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate baseline overrides: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		sort.Strings(msgs)
		return nil, fmt.Errorf("baseline overrides invalid: %v", msgs)
	}

	var overrides map[string]ProcedureBaseline
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse baseline overrides: %w", err)
	}

	merged := DefaultBaselines()
	for code, baseline := range overrides {
		if baseline.Max < baseline.Min {
			return nil, fmt.Errorf("baseline %s: max %d below min %d", code, baseline.Max, baseline.Min)
		}
		merged[code] = baseline
	}
	return merged, nil
}
