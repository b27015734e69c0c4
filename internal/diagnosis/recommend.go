package diagnosis

import "github.com/agrovision/cropguard-go/internal/knowledge"

// FallbackTreatment is recommended when a disease record carries no
// treatments of its own.
const FallbackTreatment = "Consult agricultural expert"

// genericCare instructions are appended to every recommendation list, in
// this order.
var genericCare = []string{
	"Ensure proper ventilation and reduce humidity",
	"Remove affected leaves to prevent spread",
	"Monitor the plant regularly for progression",
}

// Recommendations derives an ordered action list from a disease record:
// primary treatment, optional alternative, then the fixed care instructions.
// It is pure and deterministic.
func Recommendations(d knowledge.Disease) []string {
	recommendations := make([]string, 0, 2+len(genericCare))

	primary := FallbackTreatment
	if len(d.Treatments) > 0 {
		primary = d.Treatments[0]
	}
	recommendations = append(recommendations, "Primary treatment: "+primary)

	if len(d.Treatments) > 1 {
		recommendations = append(recommendations, "Alternative: "+d.Treatments[1])
	}

	return append(recommendations, genericCare...)
}

// TreatmentOptions describes the treatment plan for a known disease.
type TreatmentOptions struct {
	DiseaseName        string   `json:"diseaseName"`
	Treatments         []string `json:"treatments"`
	PreventiveMeasures []string `json:"preventiveMeasures"`
	TreatmentSchedule  string   `json:"recurringTreatmentSchedule"`
	EstimatedRecovery  string   `json:"estimatedRecoveryTime"`
}

// TreatmentOptionsFor looks up the treatment plan for a disease identifier.
func TreatmentOptionsFor(base *knowledge.Base, diseaseID string) (*TreatmentOptions, bool) {
	d, ok := base.Get(diseaseID)
	if !ok {
		return nil, false
	}

	return &TreatmentOptions{
		DiseaseName: d.Name,
		Treatments:  append([]string(nil), d.Treatments...),
		PreventiveMeasures: []string{
			"Maintain proper spacing between plants",
			"Avoid overwatering",
			"Remove plant debris",
			"Improve air circulation",
			"Use disease-resistant varieties",
		},
		TreatmentSchedule: "7-10 days interval",
		EstimatedRecovery: "2-4 weeks",
	}, true
}
