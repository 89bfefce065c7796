package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/usman11267/ai-project/internal/catalog"
	"github.com/usman11267/ai-project/internal/session"
)

// RuleOracle is the default clarification oracle, driven entirely by the
// symptom catalog. It is stateless: the question plan for a symptom is a
// pure function of the symptom and the answers recorded so far, so the same
// (symptom, prior) pair always yields the same next question.
//
// The plan for a symptom is: a which-kind-exactly choice question when the
// catalog marks the symptom as broad, then the catalog's symptom-specific
// follow-ups, then the duration question. Once the patient has picked a
// refinement, the follow-ups switch to the refined symptom.
type RuleOracle struct {
	cat *catalog.Catalog
}

func NewRuleOracle(cat *catalog.Catalog) *RuleOracle {
	return &RuleOracle{cat: cat}
}

func (o *RuleOracle) NextQuestion(ctx context.Context, symptom string, prior []session.QA) (*session.Question, error) {
	plan := o.plan(symptom, prior)
	if len(prior) >= len(plan) {
		return nil, nil
	}
	return plan[len(prior)], nil
}

func (o *RuleOracle) plan(symptom string, prior []session.QA) []*session.Question {
	effective := strings.ToLower(strings.TrimSpace(symptom))
	var plan []*session.Question

	if o.cat.IsVague(effective) {
		options := o.cat.Refinements(effective)
		plan = append(plan, &session.Question{
			Text:    fmt.Sprintf("Your symptom '%s' is broad. Please clarify: %s", effective, strings.Join(options, ", ")),
			Input:   session.InputChoice,
			Options: options,
		})
		// The first recorded answer is the refinement choice.
		if len(prior) > 0 {
			effective = strings.ToLower(strings.TrimSpace(prior[0].Answer))
		}
	}

	for _, q := range o.cat.FollowupQuestions(effective) {
		plan = append(plan, &session.Question{Text: q, Input: session.InputText})
	}
	return plan
}

// EffectiveSymptom recovers the refined symptom name from a recorded answer
// list: when the first exchange was the broad-symptom clarification its
// answer names what the patient actually has.
func EffectiveSymptom(symptom string, prior []session.QA) string {
	if len(prior) > 0 && strings.Contains(prior[0].Question, "is broad") {
		if refined := strings.ToLower(strings.TrimSpace(prior[0].Answer)); refined != "" {
			return refined
		}
	}
	return strings.ToLower(strings.TrimSpace(symptom))
}
