// Package knowledge holds the static crop disease reference data used by the
// heuristic classifier. The base is built once at startup and never mutated.
package knowledge

// Disease describes one entry of the disease knowledge base.
type Disease struct {
	ID          string
	Name        string
	Symptoms    []string
	Description string
	Treatments  []string
	Prevalence  float64 // 0-1 weight of how common the disease is
}

// HealthyID is the identifier of the fallback record used when no disease
// scores above zero.
const HealthyID = "healthy"

// Base is an immutable, ordered collection of disease records. Iteration
// order is the declaration order, which keeps score tie-breaking stable.
type Base struct {
	records []Disease
	byID    map[string]int
}

// NewBase returns the built-in disease knowledge base.
func NewBase() *Base {
	return newBase([]Disease{
		{
			ID:          "late_blight",
			Name:        "Late Blight",
			Symptoms:    []string{"brown spots", "leaf spots", "wilting", "dark lesions"},
			Description: "Fungal disease causing brown spots on leaves and tubers",
			Treatments:  []string{"Mancozeb", "Chlorothalonil", "Remove infected leaves"},
			Prevalence:  0.85,
		},
		{
			ID:          "powdery_mildew",
			Name:        "Powdery Mildew",
			Symptoms:    []string{"white powder", "leaf curl", "stunted growth"},
			Description: "Fungal disease affecting leaf surface with white powder-like coating",
			Treatments:  []string{"Sulfur spray", "Neem oil", "Potassium bicarbonate"},
			Prevalence:  0.75,
		},
		{
			ID:          "leaf_spot",
			Name:        "Leaf Spot",
			Symptoms:    []string{"brown spots", "yellow halo", "leaf yellowing"},
			Description: "Bacterial or fungal infection causing spots on leaves",
			Treatments:  []string{"Copper fungicide", "Remove infected leaves", "Improve drainage"},
			Prevalence:  0.70,
		},
		{
			ID:          "rust",
			Name:        "Rust",
			Symptoms:    []string{"orange spots", "yellow spots", "leaf damage"},
			Description: "Fungal disease causing rust-colored spots",
			Treatments:  []string{"Sulfur spray", "Tebuconazole", "Remove infected leaves"},
			Prevalence:  0.65,
		},
		{
			ID:          "anthracnose",
			Name:        "Anthracnose",
			Symptoms:    []string{"dark spots", "sunken lesions", "black dots"},
			Description: "Fungal disease causing dark lesions on leaves and fruit",
			Treatments:  []string{"Mancozeb", "Benomyl", "Copper sulfate"},
			Prevalence:  0.60,
		},
		{
			ID:          HealthyID,
			Name:        "Healthy Plant",
			Symptoms:    []string{"green leaves", "no spots", "normal growth"},
			Description: "Plant is healthy with no visible disease signs",
			Treatments:  []string{"Continue normal care", "Preventive spraying recommended"},
			Prevalence:  0.90,
		},
	})
}

// NewBaseFrom builds a base from caller-supplied records, mainly for tests
// that need an alternate knowledge base.
func NewBaseFrom(records []Disease) *Base {
	return newBase(records)
}

func newBase(records []Disease) *Base {
	byID := make(map[string]int, len(records))
	for i := range records {
		byID[records[i].ID] = i
	}
	return &Base{records: records, byID: byID}
}

// All returns the records in declaration order. Callers must not modify the
// returned slice.
func (b *Base) All() []Disease {
	return b.records
}

// Get looks up a record by identifier.
func (b *Base) Get(id string) (Disease, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Disease{}, false
	}
	return b.records[i], true
}

// Healthy returns the fallback record for plants with no detected disease.
// The base is expected to always carry one; a zero record is returned if a
// custom base omits it.
func (b *Base) Healthy() Disease {
	d, _ := b.Get(HealthyID)
	return d
}

// Len returns the number of records in the base.
func (b *Base) Len() int {
	return len(b.records)
}
