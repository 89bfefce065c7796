package catalog

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Medicine is one row of the medicine dataset.
type Medicine struct {
	Symptom              string `json:"symptom"`
	Name                 string `json:"medicine_name"`
	Type                 string `json:"medicine_type"`
	CommonSideEffects    string `json:"common_side_effects"`
	PrescriptionRequired string `json:"prescription_required"`
}

//go:embed dataset.csv
var defaultDataset []byte

// loadMedicines reads the medicine CSV. Expected columns:
// Symptom, Medicine_Name, Medicine_Type, Common_Side_Effects,
// Prescription_Required. The header row is matched by name so column order
// in custom datasets does not matter.
func loadMedicines(path string) ([]Medicine, error) {
	data := defaultDataset
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = b
	}

	r := csv.NewReader(strings.NewReader(string(data)))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset has no rows")
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"symptom", "medicine_name"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	meds := make([]Medicine, 0, len(records)-1)
	for _, row := range records[1:] {
		m := Medicine{
			Symptom:              field(row, "symptom"),
			Name:                 field(row, "medicine_name"),
			Type:                 field(row, "medicine_type"),
			CommonSideEffects:    field(row, "common_side_effects"),
			PrescriptionRequired: field(row, "prescription_required"),
		}
		if m.Symptom == "" || m.Name == "" {
			continue
		}
		meds = append(meds, m)
	}
	return meds, nil
}
