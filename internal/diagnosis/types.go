package diagnosis

// ImageCharacteristics holds the per-request signals derived from a crop
// image: presence flags for the dominant color bands and two texture scores.
type ImageCharacteristics struct {
	Greenish  bool
	Brownish  bool
	Yellowish bool
	Whiteish  bool

	SpotPresence float64 // 0-1
	Uniformity   float64 // 0-1
}

// Result is the outcome of one classification pass.
type Result struct {
	DiseaseID        string   `json:"diseaseId"`
	DiseaseName      string   `json:"diseaseName"`
	Description      string   `json:"description"`
	Confidence       float64  `json:"confidence"` // 0-1, clamped
	Symptoms         []string `json:"symptoms"`
	Treatments       []string `json:"treatments"`
	DetectedSymptoms []string `json:"detectedSymptoms"`
	Recommendations  []string `json:"recommendations"`
	Language         string   `json:"language,omitempty"`
}

// Copy returns a deep copy of the result so translated responses never alias
// the cached original.
func (r *Result) Copy() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Symptoms = append([]string(nil), r.Symptoms...)
	out.Treatments = append([]string(nil), r.Treatments...)
	out.DetectedSymptoms = append([]string(nil), r.DetectedSymptoms...)
	out.Recommendations = append([]string(nil), r.Recommendations...)
	return &out
}
