package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountAcademicReferences(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected int
	}{
		{"none", "No references here.", 0},
		{"empty", "", 0},
		{"treatise", "As Chitty on Contracts observes, the point is settled.", 1},
		{"two treatises", "See Chitty and Halsbury.", 2},
		{"treatise names are case sensitive", "the chitty argument", 0},
		{"journal abbreviation", "(2004) 120 LQR 354", 1},
		{"publisher", "(Oxford University Press, 2010)", 1},
		{"journal name", "writing in the Modern Law Review", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CountAcademicReferences(tc.text))
		})
	}
}

func TestFindAcademicReferencesSpans(t *testing.T) {
	text := "Halsbury is cited, and so is Chitty; compare (2004) 120 LQR 354."
	spans := FindAcademicReferences(text)
	require.Len(t, spans, 3)

	assert.Equal(t, "Halsbury", text[spans[0].Start:spans[0].End])
	assert.Equal(t, "Chitty", text[spans[1].Start:spans[1].End])
	for i := 1; i < len(spans); i++ {
		assert.GreaterOrEqual(t, spans[i].Start, spans[i-1].End)
	}
}
