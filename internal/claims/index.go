// Package claims validates generated prose against a user's source document
// through a tiered matching cascade.
package claims

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/coverletter-agent/internal/textutil"
)

// PhraseCategory labels what kind of source fragment a phrase is.
type PhraseCategory string

// Phrase categories.
const (
	CategoryMetric      PhraseCategory = "metric"
	CategoryRole        PhraseCategory = "role"
	CategoryAchievement PhraseCategory = "achievement"
	CategorySkill       PhraseCategory = "skill"
)

// Phrase is one matchable fragment extracted from the source document.
type Phrase struct {
	Text       string
	Normalized string
	Category   PhraseCategory
}

// PhraseIndex is the ordered set of matchable fragments derived once from a
// source document. It is immutable after construction.
type PhraseIndex struct {
	phrases []Phrase
}

// metricContextWindow is how many characters of surrounding context a
// numeric mention keeps on each side.
const metricContextWindow = 60

var (
	metricPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:%|percent|x\b|k\b|m\b|million|billion|\+)?`)

	roleVocab = []string{
		"engineer", "developer", "manager", "director", "lead", "architect",
		"analyst", "consultant", "scientist", "designer", "specialist",
		"intern", "founder", "head of", "vp", "president", "officer",
	}

	achievementVerbs = []string{
		"led", "built", "delivered", "launched", "reduced", "increased",
		"improved", "managed", "created", "designed", "implemented",
		"developed", "drove", "grew", "scaled", "shipped", "mentored",
		"optimized", "migrated", "automated", "architected", "spearheaded",
	}

	skillVocab = []string{
		"bachelor", "master", "phd", "degree", "university", "college",
		"certified", "certification", "proficient", "fluent", "skills",
		"python", "java", "golang", "javascript", "sql", "kubernetes",
		"aws", "cloud", "docker", "terraform", "react",
	}

	capitalizedBigram = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)
)

// BuildPhraseIndex extracts matchable phrases from the raw source document
// text: numeric mentions with surrounding context, lines matching the role,
// achievement, and skill vocabularies, and capitalized bigrams for names and
// organizations.
func BuildPhraseIndex(source string) *PhraseIndex {
	idx := &PhraseIndex{}
	seen := make(map[string]struct{})

	add := func(text string, category PhraseCategory) {
		text = strings.TrimSpace(text)
		normalized := textutil.Normalize(text)
		if normalized == "" {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		idx.phrases = append(idx.phrases, Phrase{
			Text:       text,
			Normalized: normalized,
			Category:   category,
		})
	}

	lines := strings.Split(source, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		// Numeric mentions with a context window around each match. The
		// window edges are byte offsets and must not split a rune.
		for _, loc := range metricPattern.FindAllStringIndex(line, -1) {
			start := loc[0] - metricContextWindow
			if start < 0 {
				start = 0
			}
			for start > 0 && !utf8.RuneStart(line[start]) {
				start--
			}
			end := loc[1] + metricContextWindow
			if end > len(line) {
				end = len(line)
			}
			for end < len(line) && !utf8.RuneStart(line[end]) {
				end++
			}
			add(line[start:end], CategoryMetric)
		}

		if containsAny(lower, roleVocab) {
			add(line, CategoryRole)
		}
		if containsAny(lower, achievementVerbs) {
			add(line, CategoryAchievement)
		}
		if containsAny(lower, skillVocab) {
			add(line, CategorySkill)
		}
	}

	// Capitalized bigrams catch names and organizations the vocabularies miss.
	for _, bigram := range capitalizedBigram.FindAllString(source, -1) {
		add(bigram, CategoryRole)
	}

	return idx
}

// Len returns the number of extracted phrases.
func (idx *PhraseIndex) Len() int {
	return len(idx.phrases)
}

// Phrases returns the extracted phrases in extraction order.
func (idx *PhraseIndex) Phrases() []Phrase {
	out := make([]Phrase, len(idx.phrases))
	copy(out, idx.phrases)
	return out
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
