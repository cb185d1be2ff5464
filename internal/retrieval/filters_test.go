package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSectionList(t *testing.T) {
	f := Filters{Sections: []string{"1. METHODS", "Results"}}
	out := f.Normalize()
	assert.Equal(t, []string{"Methods", "Results"}, out.Sections)
	assert.Empty(t, out.Section)
}

func TestNormalizeSectionListDeduplicates(t *testing.T) {
	f := Filters{Sections: []string{"methodology", "1. METHODS", "Results"}}
	out := f.Normalize()
	assert.Equal(t, []string{"Methods", "Results"}, out.Sections)
}

func TestNormalizeSingularSectionAppendedToList(t *testing.T) {
	f := Filters{Section: "Conclusions", Sections: []string{"Abstract"}}
	out := f.Normalize()
	assert.Equal(t, []string{"Abstract", "Conclusion"}, out.Sections)
	assert.Empty(t, out.Section)
}

func TestNormalizeSingularSectionAlone(t *testing.T) {
	f := Filters{Section: "1. introduction"}
	out := f.Normalize()
	assert.Equal(t, "Introduction", out.Section)
	assert.Empty(t, out.Sections)
}

func TestNormalizeBucket(t *testing.T) {
	assert.Equal(t, "results", NormalizeBucket("Key Results"))
	assert.Equal(t, "results", NormalizeBucket("key_results"))
	assert.Equal(t, "problem", NormalizeBucket(" Problem "))
	assert.Equal(t, "", NormalizeBucket(""))
}

func TestNormalizeClaimTypeAndTableVariant(t *testing.T) {
	f := Filters{ClaimType: "  METHOD ", TableVariant: " Raw_Markdown "}
	out := f.Normalize()
	assert.Equal(t, "method", out.ClaimType)
	assert.Equal(t, "raw_markdown", out.TableVariant)
}

func TestNormalizePassesBooleansThrough(t *testing.T) {
	yes := true
	f := Filters{IsClaim: &yes}
	out := f.Normalize()
	assert.NotNil(t, out.IsClaim)
	assert.True(t, *out.IsClaim)
	assert.Nil(t, out.IsTable)
}
