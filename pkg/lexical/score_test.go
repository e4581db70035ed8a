package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Warfarin, 5mg/day (oral)!")
	assert.Equal(t, []string{"warfarin", "5mg", "day", "oral"}, tokens)

	assert.Empty(t, Tokenize("... --- !!!"))
}

func TestContentTerms(t *testing.T) {
	terms := ContentTerms("The dose of warfarin may be adjusted")

	// stopwords and single-rune tokens dropped, rest deduplicated
	assert.True(t, terms["dose"])
	assert.True(t, terms["warfarin"])
	assert.True(t, terms["adjusted"])
	assert.False(t, terms["the"])
	assert.False(t, terms["of"])
	assert.False(t, terms["may"])
	assert.False(t, terms["be"])
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		document string
		want     float64
	}{
		{
			name:     "full coverage",
			query:    "warfarin dose",
			document: "the warfarin dose is adjusted weekly",
			want:     1.0,
		},
		{
			name:     "half coverage",
			query:    "warfarin bleeding",
			document: "warfarin requires monitoring",
			want:     0.5,
		},
		{
			name:     "no coverage",
			query:    "insulin titration",
			document: "warfarin requires monitoring",
			want:     0,
		},
		{
			name:     "stopword-only query",
			query:    "is the of",
			document: "anything at all",
			want:     0,
		},
		{
			name:     "asymmetric: recall is against the query",
			query:    "warfarin",
			document: "warfarin interacts with amiodarone and many other drugs",
			want:     1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlap(tt.query, tt.document)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEntailmentStrength(t *testing.T) {
	claim := "warfarin is reversed by vitamin k"
	passage := "Vitamin K reverses warfarin in cases of major bleeding."

	got := EntailmentStrength(claim, passage)
	// claim terms: warfarin, reversed, vitamin -> only "reversed" misses
	// ("reverses" does not match "reversed" token-for-token)
	require.InDelta(t, 2.0/3.0, got, 1e-9)
}
