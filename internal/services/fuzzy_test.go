package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"Casablanca", "casablanca", 100},
		{"Acm", "Acme", 86},
		// short query inside a long name: partial ratio, scaled 0.9
		{"Acm", "Acme Corp", 90},
		// same tokens, different order
		{"Corp Acme", "Acme Corp", 95},
		{"", "Acme", 0},
		{"!!!", "Acme", 0},
		{"xyz", "Acme", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, WeightedRatio(tt.a, tt.b))
		})
	}
}

func TestWeightedRatioIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Acm", "Acme Corp"},
		{"royal air maroc", "Royal Air Maroc SA"},
		{"OCP", "Office Cherifien des Phosphates"},
	}
	for _, p := range pairs {
		assert.Equal(t, WeightedRatio(p[0], p[1]), WeightedRatio(p[1], p[0]), p)
	}
}

func TestExtractOne(t *testing.T) {
	names := []string{"Acme", "Acme Corp", "Globex", "Initech"}

	m, ok := ExtractOne("Acm", names)
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", m.Name)
	assert.Equal(t, 90, m.Score)
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, "Acm", m.Query)

	m, ok = ExtractOne("globex", names)
	require.True(t, ok)
	assert.Equal(t, "Globex", m.Name)
	assert.Equal(t, 100, m.Score)

	m, ok = ExtractOne("inittech", names)
	require.True(t, ok)
	assert.Equal(t, "Initech", m.Name)
}

func TestExtractOneTiesKeepFirst(t *testing.T) {
	m, ok := ExtractOne("acme", []string{"ACME", "acme", "Acme"})
	require.True(t, ok)
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, 100, m.Score)
}

func TestExtractOneNoThreshold(t *testing.T) {
	// a poor match is still returned
	m, ok := ExtractOne("zzzz", []string{"Acme", "Globex"})
	require.True(t, ok)
	assert.Equal(t, "Acme", m.Name)
	assert.Equal(t, 0, m.Score)

	m, ok = ExtractOne("", []string{"Acme", "Globex"})
	require.True(t, ok)
	assert.Equal(t, "Acme", m.Name)
	assert.Equal(t, 0, m.Score)
}

func TestExtractOneEmptyChoices(t *testing.T) {
	_, ok := ExtractOne("Acme", nil)
	assert.False(t, ok)
}

func TestExtractOneDeterministic(t *testing.T) {
	names := []string{"Maroc Telecom", "Marsa Maroc", "Royal Air Maroc", "Attijariwafa Bank", "Bank of Africa"}
	first, _ := ExtractOne("maroc", names)
	for i := 0; i < 20; i++ {
		m, _ := ExtractOne("maroc", names)
		assert.Equal(t, first, m)
	}
}

func TestWeightedRatioDropsAccents(t *testing.T) {
	// accented letters are removed, not folded: "socit gnrale"
	assert.Equal(t, 86, WeightedRatio("Société Générale", "societe generale"))
	assert.Equal(t, 86, WeightedRatio("societe generale", "Société Générale"))
}

func TestExtractOneAccentedNames(t *testing.T) {
	names := []string{"Globex", "Société Générale", "Crédit Agricole"}

	m, ok := ExtractOne("societe generale", names)
	require.True(t, ok)
	assert.Equal(t, "Société Générale", m.Name)
	assert.Equal(t, 86, m.Score)
	assert.Equal(t, 1, m.Index)
}
