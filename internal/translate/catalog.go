// Package translate localizes detection responses. Lookups resolve against a
// static phrase catalog first, then an optional external provider, and fall
// back to the original text.
package translate

// DefaultLanguage is the canonical language of the knowledge base. Requests
// for it skip translation entirely.
const DefaultLanguage = "en"

// Languages maps supported language codes to their English names.
var Languages = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"es": "Spanish",
	"fr": "French",
	"pt": "Portuguese",
	"zh": "Chinese",
	"ja": "Japanese",
	"ar": "Arabic",
	"de": "German",
	"ru": "Russian",
}

// Catalog holds per-language phrase tables for common disease terms. Not all
// phrases exist in all languages; unmapped phrases fall through unchanged.
type Catalog struct {
	tables map[string]map[string]string
}

// NewCatalog returns the built-in phrase catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: map[string]map[string]string{
		"en": {
			"Late Blight":    "Late Blight",
			"Powdery Mildew": "Powdery Mildew",
			"Leaf Spot":      "Leaf Spot",
			"Rust":           "Rust",
			"Anthracnose":    "Anthracnose",
			"Healthy Plant":  "Healthy Plant",
			"treatment":      "treatment",
			"symptom":        "symptom",
			"recommendation": "recommendation",
		},
		"hi": {
			"Late Blight":    "देर से आने वाला झुलसा",
			"Powdery Mildew": "पाउडरी मिल्डयू",
			"Leaf Spot":      "पत्ती धब्बा",
			"Rust":           "जंग",
			"Anthracnose":    "एन्थ्रेक्नोज",
			"Healthy Plant":  "स्वस्थ पौधा",
			"treatment":      "उपचार",
			"symptom":        "लक्षण",
			"recommendation": "सिफारिश",
		},
		"es": {
			"Late Blight":    "Tizón tardío",
			"Powdery Mildew": "Mildiú polvoriento",
			"Leaf Spot":      "Mancha foliar",
			"Rust":           "Roya",
			"Anthracnose":    "Antracnosis",
			"Healthy Plant":  "Planta saludable",
			"treatment":      "tratamiento",
			"symptom":        "síntoma",
			"recommendation": "recomendación",
		},
		"fr": {
			"Late Blight":    "Mildiou tardif",
			"Powdery Mildew": "Oïdium",
			"Leaf Spot":      "Tache foliaire",
			"Rust":           "Rouille",
			"Anthracnose":    "Anthracnose",
			"Healthy Plant":  "Plante saine",
			"treatment":      "traitement",
			"symptom":        "symptôme",
			"recommendation": "recommandation",
		},
		"pt": {
			"Late Blight":    "Requeima",
			"Powdery Mildew": "Oídio",
			"Leaf Spot":      "Mancha foliar",
			"Rust":           "Ferrugem",
			"Anthracnose":    "Antracnose",
			"Healthy Plant":  "Planta saudável",
			"treatment":      "tratamento",
			"symptom":        "sintoma",
			"recommendation": "recomendação",
		},
		"zh": {
			"Late Blight":    "晚疫病",
			"Powdery Mildew": "白粉病",
			"Leaf Spot":      "叶斑病",
			"Rust":           "锈病",
			"Anthracnose":    "炭疽病",
			"Healthy Plant":  "健康植物",
			"treatment":      "治疗",
			"symptom":        "症状",
			"recommendation": "建议",
		},
	}}
}

// Lookup returns the localized phrase for the target language, if the
// catalog carries one.
func (c *Catalog) Lookup(language, phrase string) (string, bool) {
	table, ok := c.tables[language]
	if !ok {
		return "", false
	}
	localized, ok := table[phrase]
	return localized, ok
}

// Supported reports whether a language code is known.
func Supported(language string) bool {
	_, ok := Languages[language]
	return ok
}
