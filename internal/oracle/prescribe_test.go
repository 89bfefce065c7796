package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usman11267/ai-project/internal/catalog"
	"github.com/usman11267/ai-project/internal/session"
)

func newPrescriber(t *testing.T) *TemplatePrescriber {
	t.Helper()
	cat, err := catalog.New("")
	require.NoError(t, err)
	return NewTemplatePrescriber(cat)
}

func TestGenerateMatchesMedicinePerSymptom(t *testing.T) {
	p := newPrescriber(t)
	age := 30

	answers := map[string][]session.QA{
		"migraine": {{Question: "How long have you had this migraine?", Answer: "2 days"}},
	}
	presc, err := p.Generate(context.Background(), session.Patient{Name: "Ali", Age: &age}, []string{"migraine"}, answers)
	require.NoError(t, err)

	require.Len(t, presc.Details, 1)
	d := presc.Details[0]
	assert.Equal(t, "migraine", d.Symptom)
	assert.Equal(t, "2 days", d.Info["duration"])
	require.NotNil(t, d.Medicine)
	assert.Equal(t, "Ponstan", d.Medicine.Name)

	assert.Contains(t, presc.Text, "Patient Name: Ali")
	assert.Contains(t, presc.Text, "Age: 30")
	assert.Contains(t, presc.Text, "Migraine (Duration: 2 days)")
	assert.Contains(t, presc.Text, "Ponstan")
}

func TestGenerateUsesRefinedSymptom(t *testing.T) {
	p := newPrescriber(t)

	answers := map[string][]session.QA{
		"pain": {
			{Question: "Your symptom 'pain' is broad. Please clarify: headache, back pain", Answer: "back pain"},
			{Question: "How long have you had this back pain?", Answer: "1 week"},
		},
	}
	presc, err := p.Generate(context.Background(), session.Patient{Name: "Sara"}, []string{"pain"}, answers)
	require.NoError(t, err)

	require.Len(t, presc.Details, 1)
	d := presc.Details[0]
	assert.Equal(t, "back pain", d.Symptom, "the refinement choice names the real complaint")
	assert.Equal(t, "back pain", d.Info["clarified_as"])
	require.NotNil(t, d.Medicine)
	assert.Equal(t, "Voltral", d.Medicine.Name)
}

func TestGenerateFallsBackToParacetamol(t *testing.T) {
	p := newPrescriber(t)

	answers := map[string][]session.QA{
		"glowing elbow": {{Question: "How long have you had this glowing elbow?", Answer: "3 days"}},
	}
	presc, err := p.Generate(context.Background(), session.Patient{Name: "Ali"}, []string{"glowing elbow"}, answers)
	require.NoError(t, err)

	require.Len(t, presc.Details, 1)
	require.NotNil(t, presc.Details[0].Medicine)
	assert.Equal(t, "Paracetamol", presc.Details[0].Medicine.Name)
}

func TestGenerateWithoutAnswers(t *testing.T) {
	p := newPrescriber(t)

	presc, err := p.Generate(context.Background(), session.Patient{Name: "Ali"}, []string{"fever"}, nil)
	require.NoError(t, err)
	assert.Contains(t, presc.Text, "Age: N/A")
	assert.Contains(t, presc.Text, "Duration: not specified")
	require.Len(t, presc.Details, 1)
}

func TestGenerateNoSymptoms(t *testing.T) {
	p := newPrescriber(t)

	_, err := p.Generate(context.Background(), session.Patient{Name: "Ali"}, nil, nil)
	assert.Error(t, err)
}

func TestExtractInfoKeys(t *testing.T) {
	info := extractInfo("headache", []session.QA{
		{Question: "How would you rate the severity of your headache on a scale of 1-10?", Answer: "7"},
		{Question: "How often do you experience this headache?", Answer: "daily"},
		{Question: "Is it on one side or both sides?", Answer: "one side"},
		{Question: "Does it throb or is it a steady pain?", Answer: "throbs"},
	})
	assert.Equal(t, "7", info["severity"])
	assert.Equal(t, "daily", info["frequency"])
	assert.Equal(t, "one side", info["side"])
	assert.Equal(t, "throbs", info["does it throb or is it a steady pain"])
}
