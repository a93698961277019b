package claims

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `
Jane Smith
Senior Software Engineer at Acme Corp

Led a team of 12 engineers, reducing deployment time by 40%.
Built a distributed caching layer serving 5 million requests per day.
Mentored junior developers and drove adoption of code review practices.

Skills: Go, Python, Kubernetes, SQL
Education: Bachelor of Science, State University
`

func TestBuildPhraseIndex_Categories(t *testing.T) {
	idx := BuildPhraseIndex(sampleResume)
	require.GreaterOrEqual(t, idx.Len(), 5)

	categories := make(map[PhraseCategory]int)
	for _, phrase := range idx.Phrases() {
		categories[phrase.Category]++
	}
	assert.Positive(t, categories[CategoryMetric])
	assert.Positive(t, categories[CategoryRole])
	assert.Positive(t, categories[CategoryAchievement])
	assert.Positive(t, categories[CategorySkill])
}

func TestBuildPhraseIndex_MetricWindowKeepsRunesIntact(t *testing.T) {
	// Multi-byte runes positioned so the raw context-window offsets land
	// mid-rune on both sides of the metric.
	line := strings.Repeat("ü", 40) + " drove savings of 40% " + strings.Repeat("é", 40)
	idx := BuildPhraseIndex(line)

	var metrics int
	for _, phrase := range idx.Phrases() {
		assert.True(t, utf8.ValidString(phrase.Text), "phrase %q is not valid UTF-8", phrase.Text)
		if phrase.Category == CategoryMetric {
			metrics++
			assert.Contains(t, phrase.Text, "40%")
		}
	}
	assert.Positive(t, metrics)
}

func TestBuildPhraseIndex_MetricKeepsContext(t *testing.T) {
	idx := BuildPhraseIndex("Reduced infrastructure spend by 40% across three regions.")

	found := false
	for _, phrase := range idx.Phrases() {
		if phrase.Category == CategoryMetric {
			assert.Contains(t, phrase.Text, "40")
			assert.Contains(t, phrase.Normalized, "reduced infrastructure spend")
			found = true
		}
	}
	assert.True(t, found, "expected a metric phrase with surrounding context")
}

func TestBuildPhraseIndex_CapitalizedBigrams(t *testing.T) {
	idx := BuildPhraseIndex("Worked closely with Acme Corp leadership.")

	var texts []string
	for _, phrase := range idx.Phrases() {
		texts = append(texts, phrase.Text)
	}
	assert.Contains(t, texts, "Acme Corp")
}

func TestBuildPhraseIndex_DeduplicatesByNormalizedForm(t *testing.T) {
	idx := BuildPhraseIndex("Led the team.\nLed the team.\nLed the team!")

	count := 0
	for _, phrase := range idx.Phrases() {
		if phrase.Normalized == "led the team" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestBuildPhraseIndex_EmptySource(t *testing.T) {
	idx := BuildPhraseIndex("")
	assert.Equal(t, 0, idx.Len())
}
