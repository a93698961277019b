package pipeline

import (
	"math"
	"regexp"
	"strings"

	"github.com/jonathan/coverletter-agent/internal/textutil"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// Score weights. They sum to 1.
const (
	weightStyle      = 0.20
	weightATS        = 0.25
	weightClarity    = 0.15
	weightImpact     = 0.15
	weightValidation = 0.25
)

// Readable sentence length band, in words.
const (
	clarityMinWords = 8
	clarityMaxWords = 24
)

var metricPattern = regexp.MustCompile(`\d+(\.\d+)?%?`)

var impactVerbs = []string{
	"led", "built", "delivered", "launched", "reduced", "increased",
	"improved", "designed", "drove", "grew", "shipped", "saved",
}

// ComputeScores derives the quality sub-scores for a finished letter. All
// sub-scores are deterministic functions of the letter text; only the
// validation score comes from the claim validator.
func ComputeScores(sections *types.SectionMap, jobAnalysis types.JobAnalysis, style types.StyleProfile, validationScore float64) types.QualityScores {
	var sb strings.Builder
	for _, name := range sections.Names() {
		sb.WriteString(sections.Get(name))
		sb.WriteString("\n")
	}
	letter := sb.String()

	scores := types.QualityScores{
		Style:       styleScore(letter, style),
		ATSKeywords: atsScore(letter, jobAnalysis.Keywords),
		Clarity:     clarityScore(letter),
		Impact:      impactScore(letter),
		Validation:  clamp(validationScore),
	}
	scores.Overall = clamp(
		scores.Style*weightStyle +
			scores.ATSKeywords*weightATS +
			scores.Clarity*weightClarity +
			scores.Impact*weightImpact +
			scores.Validation*weightValidation)
	return scores
}

// styleScore measures how much of the user's characteristic vocabulary made
// it into the letter. Without a vocabulary there is nothing to measure, so
// the score is neutral.
func styleScore(letter string, style types.StyleProfile) float64 {
	if len(style.Vocabulary) == 0 {
		return 75
	}
	normalized := textutil.Normalize(letter)
	used := 0
	for _, word := range style.Vocabulary {
		if word == "" {
			continue
		}
		if strings.Contains(normalized, textutil.Normalize(word)) {
			used++
		}
	}
	return clamp(60 + 40*float64(used)/float64(len(style.Vocabulary)))
}

// atsScore is the fraction of extracted job keywords present in the letter.
func atsScore(letter string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 75
	}
	normalized := textutil.Normalize(letter)
	present := 0
	for _, keyword := range keywords {
		if strings.Contains(normalized, textutil.Normalize(keyword)) {
			present++
		}
	}
	return clamp(100 * float64(present) / float64(len(keywords)))
}

// clarityScore rewards sentences inside the readable length band and
// penalizes the average distance outside it.
func clarityScore(letter string) float64 {
	sentences := textutil.SplitSentences(letter)
	if len(sentences) == 0 {
		return 0
	}
	var penalty float64
	for _, sentence := range sentences {
		words := textutil.WordCount(sentence)
		switch {
		case words < clarityMinWords:
			penalty += float64(clarityMinWords - words)
		case words > clarityMaxWords:
			penalty += float64(words - clarityMaxWords)
		}
	}
	return clamp(100 - 4*penalty/float64(len(sentences)))
}

// impactScore measures the density of concrete signals: metrics and strong
// action verbs per sentence.
func impactScore(letter string) float64 {
	sentences := textutil.SplitSentences(letter)
	if len(sentences) == 0 {
		return 0
	}
	signals := 0
	for _, sentence := range sentences {
		normalized := textutil.Normalize(sentence)
		if metricPattern.MatchString(sentence) {
			signals++
		}
		for _, verb := range impactVerbs {
			if strings.Contains(normalized, verb) {
				signals++
				break
			}
		}
	}
	// One signal per sentence on average scores full marks.
	return clamp(100 * float64(signals) / float64(len(sentences)))
}

func clamp(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}
