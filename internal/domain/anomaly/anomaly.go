// Package anomaly classifies temporal ordering anomalies on a timeline:
// facts recorded before they were true, decisions taken before their record
// existed, slow ingestion, and out-of-order processing.
package anomaly

// Type identifies one rule in the fixed anomaly taxonomy.
type Type string

// Anomaly taxonomy.
const (
	TypeTimeTravel        Type = "time_travel"
	TypePrematureDecision Type = "premature_decision"
	TypeIngestionLag      Type = "ingestion_lag"
	TypeOutOfOrder        Type = "out_of_order"
)

// Severity ranks how serious a finding is.
type Severity string

// Severity levels, ordered low to critical.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Anomaly is one finding about one point. EventID is an association back to
// the originating point, not ownership.
type Anomaly struct {
	EventID     string   `json:"event_id"`
	Type        Type     `json:"anomaly_type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	// Confidence is in [0,1]. The current rules are deterministic and fix
	// it at 1.0; the field exists so probabilistic rules can be added
	// without changing the schema.
	Confidence float64 `json:"confidence"`
}

// Report aggregates the findings for a whole timeline.
type Report struct {
	Timeline         string           `json:"timeline"`
	Anomalies        []Anomaly        `json:"anomalies"`
	Total            int              `json:"total"`
	CountsByType     map[Type]int     `json:"counts_by_type"`
	CountsBySeverity map[Severity]int `json:"counts_by_severity"`
}

// ForEvent returns the findings associated with one event id.
func (r *Report) ForEvent(eventID string) []Anomaly {
	var out []Anomaly
	for _, a := range r.Anomalies {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out
}

func newReport(timeline string) *Report {
	return &Report{
		Timeline:         timeline,
		Anomalies:        []Anomaly{},
		CountsByType:     make(map[Type]int),
		CountsBySeverity: make(map[Severity]int),
	}
}

func (r *Report) add(a Anomaly) {
	r.Anomalies = append(r.Anomalies, a)
	r.Total++
	r.CountsByType[a.Type]++
	r.CountsBySeverity[a.Severity]++
}
