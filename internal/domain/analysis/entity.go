package analysis

// RiskLevel enum
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskLevels returns every level ordered from least to most severe.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLow, RiskMedium, RiskHigh}
}

// Valid reports whether l is one of the three known levels.
func (l RiskLevel) Valid() bool {
	return l.Severity() > 0
}

// Severity gives the total order used for comparisons and display tiering.
// Unknown levels are 0.
func (l RiskLevel) Severity() int {
	switch l {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// Result value object: the validated verdict of one analysis.
type Result struct {
	RiskLevel      RiskLevel `json:"riskLevel"`
	Summary        string    `json:"summary"`
	Details        []string  `json:"details"`
	Recommendation string    `json:"recommendation"`
}

// Clone returns a copy that shares no memory with r.
func (r Result) Clone() Result {
	out := r
	out.Details = make([]string, len(r.Details))
	copy(out.Details, r.Details)
	return out
}

// Modality of the submitted input
type Modality string

const (
	ModalityURL  Modality = "URL"
	ModalityFile Modality = "File"
	ModalityText Modality = "Text"
)
