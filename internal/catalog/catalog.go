package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// category groups a broad complaint with its more specific refinements.
// Order matters: resolver tie-breaking and the choice lists shown to
// patients follow this order.
type category struct {
	name     string
	children []string
}

var categories = []category{
	{"pain", []string{"headache", "stomachache", "joint pain", "back pain", "chest pain"}},
	{"fever", []string{"low grade fever", "high fever", "intermittent fever"}},
	{"cough", []string{"dry cough", "wet cough", "persistent cough"}},
	{"infection", []string{"urinary tract infection", "skin infection", "respiratory infection"}},
	{"fatigue", []string{"chronic fatigue", "acute fatigue"}},
	{"rash", []string{"skin rash", "allergic rash"}},
	{"bp", []string{"low bp", "high bp"}},
	{"headache", []string{"migraine", "tension headache", "cluster headache", "sinus headache"}},
	{"stomachache", []string{"upper abdominal pain", "lower abdominal pain", "cramps"}},
	{"dizziness", []string{"lightheadedness", "vertigo", "faintness"}},
	{"nausea", []string{"morning sickness", "motion sickness", "medication-induced nausea"}},
	{"breathing", []string{"shortness of breath", "wheezing", "labored breathing"}},
	{"insomnia", []string{"difficulty falling asleep", "difficulty staying asleep", "early morning awakening"}},
	{"allergy", []string{"food allergy", "seasonal allergy", "drug allergy", "skin allergy"}},
	{"anxiety", []string{"generalized anxiety", "panic attacks", "social anxiety"}},
	{"cold", []string{"common cold", "flu", "sinus infection"}},
	{"diarrhea", []string{"acute diarrhea", "chronic diarrhea", "traveler's diarrhea"}},
}

// specificFollowups holds extra questions asked for certain complaints before
// the generic duration question.
var specificFollowups = map[string][]string{
	"headache":    {"Is it on one side or both sides?", "Does it throb or is it a steady pain?"},
	"fever":       {"Have you taken any medication to reduce it?", "Are you experiencing chills or sweating?"},
	"cough":       {"Is there any phlegm or mucus?", "Is it worse at night?"},
	"rash":        {"Is it itchy?", "Has the rash spread since it first appeared?"},
	"stomachache": {"Is it related to eating?", "Does it come and go or is it constant?"},
	"pain":        {"Does anything make it better or worse?", "Does it radiate to other areas?"},
	"dizziness":   {"Does it happen when you stand up?", "Is it associated with nausea?"},
	"breathing":   {"Does it occur at rest or with activity?", "Do you have a history of respiratory conditions?"},
	"insomnia":    {"Do you feel tired during the day?", "What time do you typically go to bed?"},
	"allergy":     {"Have you been exposed to any new substances?", "Do you have any known allergies?"},
	"diarrhea":    {"Is there blood in your stool?", "Are you experiencing abdominal pain?"},
	"cold":        {"Do you have a sore throat?", "Are you experiencing body aches?"},
}

// Catalog is the read-only symptom and medicine reference data used by the
// resolver, the clarification rules, and the prescription builder.
type Catalog struct {
	net       map[string][]string
	parents   map[string]string
	entries   []string // categories followed by their children, fixed order
	medicines []Medicine
	byName    map[string]Medicine
	bySymptom map[string]Medicine
}

// New builds a catalog. datasetPath points at a medicine CSV; when empty the
// embedded default dataset is used.
func New(datasetPath string) (*Catalog, error) {
	c := &Catalog{
		net:       make(map[string][]string, len(categories)),
		parents:   make(map[string]string),
		byName:    make(map[string]Medicine),
		bySymptom: make(map[string]Medicine),
	}
	for _, cat := range categories {
		c.net[cat.name] = cat.children
		c.entries = append(c.entries, cat.name)
		for _, child := range cat.children {
			c.entries = append(c.entries, child)
			if _, ok := c.parents[child]; !ok {
				c.parents[child] = cat.name
			}
		}
	}

	meds, err := loadMedicines(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("load medicine dataset: %w", err)
	}
	c.medicines = meds
	for _, m := range meds {
		key := strings.ToLower(m.Name)
		if _, ok := c.byName[key]; !ok {
			c.byName[key] = m
		}
		key = strings.ToLower(m.Symptom)
		if _, ok := c.bySymptom[key]; !ok {
			c.bySymptom[key] = m
		}
	}
	return c, nil
}

// Categories lists the broad complaints in a stable order.
func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(categories))
	for _, cat := range categories {
		out = append(out, cat.name)
	}
	return out
}

// Symptoms returns the refinements of a category.
func (c *Catalog) Symptoms(cat string) ([]string, bool) {
	children, ok := c.net[strings.ToLower(strings.TrimSpace(cat))]
	if !ok {
		return nil, false
	}
	return append([]string(nil), children...), true
}

// IsVague reports whether a symptom is broad enough to need a
// which-kind-exactly clarification.
func (c *Catalog) IsVague(symptom string) bool {
	_, ok := c.net[strings.ToLower(strings.TrimSpace(symptom))]
	return ok
}

// Refinements is Symptoms without the ok flag, for vague symptoms.
func (c *Catalog) Refinements(symptom string) []string {
	children, _ := c.Symptoms(symptom)
	return children
}

// Parent returns the category a refined symptom belongs to.
func (c *Catalog) Parent(symptom string) (string, bool) {
	p, ok := c.parents[strings.ToLower(strings.TrimSpace(symptom))]
	return p, ok
}

// Entries returns every known symptom name, categories first, in the fixed
// catalog order.
func (c *Catalog) Entries() []string {
	return append([]string(nil), c.entries...)
}

// Known reports whether the symptom appears anywhere in the catalog.
func (c *Catalog) Known(symptom string) bool {
	s := strings.ToLower(strings.TrimSpace(symptom))
	if _, ok := c.net[s]; ok {
		return true
	}
	_, ok := c.parents[s]
	return ok
}

// ClosestSymptom finds the catalog entry closest to a free-form symptom:
// exact hit first, then substring containment either way, walking entries in
// catalog order so the result is deterministic.
func (c *Catalog) ClosestSymptom(symptom string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(symptom))
	if s == "" {
		return "", false
	}
	if c.Known(s) {
		return s, true
	}
	for _, known := range c.entries {
		if strings.Contains(known, s) || strings.Contains(s, known) {
			return known, true
		}
	}
	return "", false
}

// FollowupQuestions builds the question list for a symptom: any
// symptom-specific questions keyed by the closest catalog entry, then the
// duration question.
func (c *Catalog) FollowupQuestions(symptom string) []string {
	s := strings.ToLower(strings.TrimSpace(symptom))
	var questions []string
	if key, ok := c.ClosestSymptom(s); ok {
		questions = append(questions, specificFollowups[key]...)
	}
	questions = append(questions, fmt.Sprintf("How long have you had this %s?", s))
	return questions
}

// Medicines returns the full medicine table sorted by name.
func (c *Catalog) Medicines() []Medicine {
	out := append([]Medicine(nil), c.medicines...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MedicineByName looks a medicine up by its name, case-insensitively.
func (c *Catalog) MedicineByName(name string) (Medicine, bool) {
	m, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// Match returns the first dataset row for an exact symptom match.
func (c *Catalog) Match(symptom string) (Medicine, bool) {
	m, ok := c.bySymptom[strings.ToLower(strings.TrimSpace(symptom))]
	return m, ok
}

// FallbackMedicine is the over-the-counter default handed out when no
// dataset row matches a symptom.
func (c *Catalog) FallbackMedicine(symptom string) Medicine {
	return Medicine{
		Symptom:              symptom,
		Name:                 "Paracetamol",
		Type:                 "Tablet",
		CommonSideEffects:    "Nausea, liver issues if overused",
		PrescriptionRequired: "No",
	}
}
