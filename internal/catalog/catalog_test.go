package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New("")
	require.NoError(t, err)
	return c
}

func TestCategoriesAndSymptoms(t *testing.T) {
	c := newCatalog(t)

	cats := c.Categories()
	require.NotEmpty(t, cats)
	assert.Equal(t, "pain", cats[0], "category order is fixed")

	symptoms, ok := c.Symptoms("pain")
	require.True(t, ok)
	assert.Equal(t, []string{"headache", "stomachache", "joint pain", "back pain", "chest pain"}, symptoms)

	_, ok = c.Symptoms("hiccups")
	assert.False(t, ok)
}

func TestVagueSymptoms(t *testing.T) {
	c := newCatalog(t)

	assert.True(t, c.IsVague("pain"))
	assert.True(t, c.IsVague(" Headache "), "headache is both a refinement and a category")
	assert.False(t, c.IsVague("migraine"))
	assert.False(t, c.IsVague("glowing elbow"))
}

func TestParent(t *testing.T) {
	c := newCatalog(t)

	p, ok := c.Parent("migraine")
	require.True(t, ok)
	assert.Equal(t, "headache", p)

	// headache appears first as a child of pain.
	p, ok = c.Parent("headache")
	require.True(t, ok)
	assert.Equal(t, "pain", p)

	_, ok = c.Parent("pain")
	assert.False(t, ok)
}

func TestClosestSymptom(t *testing.T) {
	c := newCatalog(t)

	got, ok := c.ClosestSymptom("migraine")
	require.True(t, ok)
	assert.Equal(t, "migraine", got, "known entries match exactly")

	got, ok = c.ClosestSymptom("migraines")
	require.True(t, ok)
	assert.Equal(t, "migraine", got, "containment either way")

	_, ok = c.ClosestSymptom("glowing elbow")
	assert.False(t, ok)

	_, ok = c.ClosestSymptom("")
	assert.False(t, ok)
}

func TestFollowupQuestions(t *testing.T) {
	c := newCatalog(t)

	qs := c.FollowupQuestions("headache")
	require.Len(t, qs, 3)
	assert.Equal(t, "Is it on one side or both sides?", qs[0])
	assert.Equal(t, "How long have you had this headache?", qs[2])

	// Unknown symptoms still get the duration question.
	qs = c.FollowupQuestions("glowing elbow")
	require.Len(t, qs, 1)
	assert.Equal(t, "How long have you had this glowing elbow?", qs[0])
}

func TestMedicineLookup(t *testing.T) {
	c := newCatalog(t)

	m, ok := c.Match("migraine")
	require.True(t, ok)
	assert.Equal(t, "Ponstan", m.Name)

	m, ok = c.MedicineByName("PANADOL")
	require.True(t, ok)
	assert.Equal(t, "Panadol", m.Name)

	_, ok = c.Match("glowing elbow")
	assert.False(t, ok)

	fb := c.FallbackMedicine("glowing elbow")
	assert.Equal(t, "Paracetamol", fb.Name)

	assert.NotEmpty(t, c.Medicines())
}

func TestCustomDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meds.csv")
	csv := "Symptom,Medicine_Name,Medicine_Type,Common_Side_Effects,Prescription_Required\n" +
		"fever,Testol,Tablet,None,No\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	c, err := New(path)
	require.NoError(t, err)

	m, ok := c.Match("fever")
	require.True(t, ok)
	assert.Equal(t, "Testol", m.Name)
	assert.Len(t, c.Medicines(), 1)
}

func TestDatasetValidation(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := New(filepath.Join(dir, "nope.csv"))
		assert.Error(t, err)
	})

	t.Run("missing required column", func(t *testing.T) {
		path := filepath.Join(dir, "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("Foo,Bar\n1,2\n"), 0o644))
		_, err := New(path)
		assert.Error(t, err)
	})
}
