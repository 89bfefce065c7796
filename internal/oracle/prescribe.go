package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/usman11267/ai-project/internal/catalog"
	"github.com/usman11267/ai-project/internal/session"
)

// TemplatePrescriber assembles the prescription from the medicine catalog
// and the collected answers, without any external calls. It is the fallback
// when no LLM is configured and the source of the structured per-symptom
// details in either mode.
type TemplatePrescriber struct {
	cat *catalog.Catalog
}

func NewTemplatePrescriber(cat *catalog.Catalog) *TemplatePrescriber {
	return &TemplatePrescriber{cat: cat}
}

func (p *TemplatePrescriber) Generate(ctx context.Context, patient session.Patient, symptoms []string, answers map[string][]session.QA) (*session.Prescription, error) {
	if len(symptoms) == 0 {
		return nil, fmt.Errorf("no symptoms to prescribe for")
	}

	age := "N/A"
	if patient.Age != nil {
		age = fmt.Sprintf("%d", *patient.Age)
	}
	lines := []string{
		fmt.Sprintf("Patient Name: %s", patient.Name),
		fmt.Sprintf("Age: %s", age),
		"",
		"-- SYMPTOMS --",
	}

	details := make([]session.SymptomDetail, 0, len(symptoms))
	for _, symptom := range symptoms {
		qas := answers[symptom]
		effective := EffectiveSymptom(symptom, qas)
		med := p.match(effective)
		info := extractInfo(effective, qas)

		duration := info["duration"]
		if duration == "" {
			duration = "not specified"
		}
		lines = append(lines,
			fmt.Sprintf("- %s (Duration: %s)", titleCase(effective), duration),
			fmt.Sprintf("  %s (%s), take as directed for the full course.", med.Name, med.Type),
		)
		if med.PrescriptionRequired == "Yes" {
			lines = append(lines, "  Requires a doctor's prescription before purchase.")
		}

		details = append(details, session.SymptomDetail{
			Symptom:  effective,
			Info:     info,
			Medicine: &med,
		})
	}

	lines = append(lines,
		"",
		"Take medicines with water after meals unless stated otherwise.",
		"Consult a doctor if symptoms persist beyond a week.",
	)

	return &session.Prescription{
		Text:    strings.Join(lines, "\n"),
		Details: details,
	}, nil
}

// match picks the medicine for a symptom: exact dataset row, then the row of
// the closest catalog entry, then the over-the-counter fallback.
func (p *TemplatePrescriber) match(symptom string) catalog.Medicine {
	if m, ok := p.cat.Match(symptom); ok {
		return m
	}
	if closest, ok := p.cat.ClosestSymptom(symptom); ok {
		if m, ok := p.cat.Match(closest); ok {
			return m
		}
	}
	return p.cat.FallbackMedicine(symptom)
}

// extractInfo turns the raw QA list into a keyed summary. Well-known
// question kinds get stable keys; anything else is keyed by the normalized
// question text.
func extractInfo(symptom string, qas []session.QA) map[string]string {
	info := make(map[string]string, len(qas))
	for _, qa := range qas {
		q := strings.ToLower(qa.Question)
		switch {
		case strings.Contains(q, "is broad"):
			info["clarified_as"] = strings.ToLower(strings.TrimSpace(qa.Answer))
		case strings.Contains(q, "how long") || strings.Contains(q, "duration"):
			info["duration"] = qa.Answer
		case strings.Contains(q, "severity"):
			info["severity"] = qa.Answer
		case strings.Contains(q, "how often") || strings.Contains(q, "frequency"):
			info["frequency"] = qa.Answer
		case strings.Contains(q, "one side"):
			info["side"] = qa.Answer
		case strings.Contains(q, "itchy"):
			info["itchy"] = qa.Answer
		default:
			key := strings.TrimSpace(strings.TrimSuffix(q, "?"))
			if key != "" {
				info[key] = qa.Answer
			}
		}
	}
	return info
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
