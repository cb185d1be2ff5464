package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectHeading(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    string
		matched bool
	}{
		{"all caps raw alias", "INTRODUCTION", "Introduction", true},
		{"numbered all caps", "1. METHODS", "Methods", true},
		{"roman numeral", "III. RELATED WORK", "Related Work", true},
		{"title case alias", "Experimental Setup", "Methods", true},
		{"colon suffix", "Results:", "Results", true},
		{"ordinary sentence", "We evaluate the approach on three datasets.", "", false},
		{"long line containing alias word", "the results of our study suggest that further evaluation against stronger baselines is required before deployment", "", false},
		{"empty", "", "", false},
		{"non-alias short line", "Table 3", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, ok := DetectHeading(tt.line)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, sec)
		})
	}
}

func TestIsTitleCase(t *testing.T) {
	assert.True(t, isTitleCase("Related Work"))
	assert.True(t, isTitleCase("Threats To Validity"))
	assert.False(t, isTitleCase("Related work"))
	assert.False(t, isTitleCase(""))
}

func TestUpperRatio(t *testing.T) {
	assert.InDelta(t, 1.0, upperRatio("ABSTRACT"), 1e-9)
	assert.InDelta(t, 0.0, upperRatio("abstract"), 1e-9)
	assert.InDelta(t, 0.5, upperRatio("AbCd"), 1e-9)
	assert.Equal(t, 0.0, upperRatio("123"))
}

func TestHasHeadingShape(t *testing.T) {
	assert.True(t, hasHeadingShape("Methods:"))
	assert.True(t, hasHeadingShape("Related Work"))
	assert.True(t, hasHeadingShape("RESULTS AND ANALYSIS"))
	assert.True(t, hasHeadingShape("2. discussion"))
	assert.False(t, hasHeadingShape("we discuss the findings"))
}
