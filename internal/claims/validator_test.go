package claims

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/coverletter-agent/internal/types"
)

func newTestValidator(t *testing.T, source string) *Validator {
	t.Helper()
	v, err := NewValidator(source)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v
}

func TestValidator_ExactContainment(t *testing.T) {
	v := newTestValidator(t, sampleResume)
	require.False(t, v.Lenient())

	result := v.runCascade("At my last role I built a distributed caching layer serving 5 million requests per day.")
	assert.True(t, result.Supported)
}

func TestValidator_JaccardTier(t *testing.T) {
	v := newTestValidator(t, sampleResume)

	// Close paraphrase of a source line: supported at tier 2 or 3 with
	// confidence at least the Jaccard threshold.
	result := v.runCascade("I led a team of 12 engineers")
	assert.True(t, result.Supported)
	assert.GreaterOrEqual(t, result.Confidence, 0.15)
}

func TestValidator_AllowListBoilerplate(t *testing.T) {
	v := newTestValidator(t, sampleResume)

	result := v.runCascade("Thank you for considering my application")
	assert.True(t, result.Supported)
	assert.InDelta(t, 0.85, result.Confidence, 0.001)
}

func TestValidator_ProfessionalPattern(t *testing.T) {
	v := newTestValidator(t, "alpha beta gamma delta epsilon zeta engineer lead manager director analyst\n1 2 3 4 5 6")

	result := v.runCascade("My background would be a strong fit for the requirements of the role")
	assert.True(t, result.Supported)
}

func TestValidator_UnsupportedSentence(t *testing.T) {
	v := newTestValidator(t, sampleResume)

	result := v.runCascade("Zzyzx quuxification bamboozle frobnicate whatsit")
	assert.False(t, result.Supported)
}

func TestValidator_ScoreFloor(t *testing.T) {
	v := newTestValidator(t, sampleResume)
	require.False(t, v.Lenient())

	// Every sentence unsupported: raw score 0, floored to 75, still valid.
	report := v.ValidateSentences([]string{
		"Zzyzx quuxification bamboozle",
		"Frobnicate whatsit gizmo",
	})
	assert.Equal(t, 75.0, report.Score)
	assert.True(t, report.IsValid)
	assert.Len(t, report.FlaggedClaims, 2)
	assert.LessOrEqual(t, report.Score, 100.0)
}

func TestValidator_LenientMode(t *testing.T) {
	v := newTestValidator(t, "short note")
	require.True(t, v.Lenient())

	report := v.ValidateSentences([]string{
		"Zzyzx quuxification bamboozle",
		"Anything at all",
	})
	assert.True(t, report.IsValid)
	assert.Equal(t, 85.0, report.Score)
	assert.Empty(t, report.FlaggedClaims)
	assert.Len(t, report.SupportedClaims, 2)
}

func TestValidator_NoSentences(t *testing.T) {
	v := newTestValidator(t, sampleResume)

	report := v.ValidateSentences(nil)
	assert.True(t, report.IsValid)
}

func TestValidator_SuggestCorrection(t *testing.T) {
	v := newTestValidator(t, sampleResume)

	// Near-duplicate of a source line, above the 0.5 correction bar.
	correction, ok := v.suggestCorrection("Led a team of 12 engineers, reducing deployment time by 90%.")
	require.True(t, ok)
	assert.Contains(t, correction.Corrected, "40%")

	// Totally unrelated text offers no correction.
	_, ok = v.suggestCorrection("Zzyzx quuxification bamboozle")
	assert.False(t, ok)
}

func TestValidator_ValidateSectionsAppliesCorrections(t *testing.T) {
	v := newTestValidator(t, sampleResume)

	bogus := "Zzyzx quuxification bamboozle frobnicate whatsit."
	sections := types.NewSectionMap()
	require.NoError(t, sections.Set(types.SectionOpening, "Thank you for considering my application. "+bogus))
	require.NoError(t, sections.Set(types.SectionLeadership, "I led a team of 12 engineers."))

	report := v.ValidateSections(sections)
	assert.NotEmpty(t, report.SupportedClaims)

	// Corrections, when present, are substituted into every section
	// containing the original text.
	for _, correction := range report.Corrections {
		for _, name := range sections.Names() {
			assert.NotContains(t, sections.Get(name), correction.Original)
		}
	}
}

func TestValidator_EndToEndScenario(t *testing.T) {
	source := strings.Join([]string{
		"Led a team of 12 engineers, reducing deployment time by 40%",
		"Built data pipelines in Go and Python",
		"Bachelor of Science from State University",
		"Senior Engineer at Initech",
		"Improved API latency by 30%",
	}, "\n")
	v := newTestValidator(t, source)
	require.False(t, v.Lenient())

	result := v.runCascade("I led a team of 12 engineers")
	assert.True(t, result.Supported)
	assert.GreaterOrEqual(t, result.Confidence, 0.15)
}
