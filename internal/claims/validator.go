package claims

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/jonathan/coverletter-agent/internal/textutil"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// Cascade thresholds and scoring constants.
const (
	// minPhrasesForStrict is the phrase count below which the validator
	// runs in lenient mode: too little source signal to judge claims.
	minPhrasesForStrict = 5
	// lenientScore is the fixed score reported in lenient mode.
	lenientScore = 85
	// scoreFloor keeps legitimate stylistic variation from being penalized.
	scoreFloor = 75
	// passThreshold is the minimum score for IsValid.
	passThreshold = 70

	jaccardSupportThreshold = 0.15
	semanticThreshold       = 0.1
	semanticMinConfidence   = 0.6
	correctionThreshold     = 0.5

	allowListConfidence        = 0.85
	professionalConfidence     = 0.80
	exactContainmentConfidence = 1.0
)

// boilerplateTerms are cover-letter phrases that need no source support.
var boilerplateTerms = []string{
	"excited", "opportunity", "thank you", "look forward", "passionate",
	"contribute", "eager", "confident", "enthusiastic", "sincerely",
	"your team", "this role", "this position", "your company", "best regards",
}

// professionalPatterns match generic professional language.
var professionalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^i\s+(am|have|would|believe|bring|value|strive)\b`),
	regexp.MustCompile(`(?i)\bmy\s+(experience|background|skills|approach|career)\b`),
	regexp.MustCompile(`(?i)\b(align|aligns|aligned|fit|match|matches)\b.*\b(role|position|requirement|mission|values)\b`),
	regexp.MustCompile(`(?i)\b(discuss|contribute to|learn more about)\b`),
}

// Correction is a suggested substitution for an unsupported claim.
type Correction struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Reason    string `json:"reason"`
}

// ValidationReport is the outcome of validating a set of sentences against
// the source document. Read-only after production.
type ValidationReport struct {
	IsValid         bool         `json:"is_valid"`
	Score           float64      `json:"score"`
	FlaggedClaims   []string     `json:"flagged_claims"`
	SupportedClaims []string     `json:"supported_claims"`
	Corrections     []Correction `json:"corrections"`
}

// sentenceResult is a memoized single-sentence outcome.
type sentenceResult struct {
	Supported  bool
	Confidence float64
}

// Validator checks candidate sentences against a source document. The phrase
// index is built once at construction and never mutated, so concurrent
// sentence validations may read it freely.
type Validator struct {
	index        *PhraseIndex
	lenient      bool
	memo         *ristretto.Cache[string, sentenceResult]
	phraseTokens []map[string]struct{}
	sourceTokens map[string]struct{}
}

// NewValidator builds a validator from the full raw source-document text.
func NewValidator(source string) (*Validator, error) {
	memo, err := ristretto.NewCache(&ristretto.Config[string, sentenceResult]{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create validation memo cache: %w", err)
	}

	index := BuildPhraseIndex(source)

	v := &Validator{
		index:   index,
		lenient: index.Len() < minPhrasesForStrict,
		memo:    memo,
	}

	sourceTokens := make(map[string]struct{})
	for _, phrase := range index.phrases {
		tokens := textutil.Tokenize(phrase.Normalized)
		v.phraseTokens = append(v.phraseTokens, tokens)
		for tok := range textutil.Tokenize(phrase.Text) {
			sourceTokens[tok] = struct{}{}
		}
	}
	v.sourceTokens = sourceTokens

	return v, nil
}

// Lenient reports whether the validator short-circuits to lenient scoring
// because the source yielded too few phrases.
func (v *Validator) Lenient() bool {
	return v.lenient
}

// Close releases the memo cache.
func (v *Validator) Close() {
	v.memo.Close()
}

// validateSentence runs one sentence through the cascade, cheapest tier
// first. Results are memoized by sentence text.
func (v *Validator) validateSentence(sentence string) sentenceResult {
	// Tier 1: prior result for this exact sentence text.
	if cached, ok := v.memo.Get(sentence); ok {
		return cached
	}

	result := v.runCascade(sentence)
	v.memo.Set(sentence, result, 1)
	return result
}

func (v *Validator) runCascade(sentence string) sentenceResult {
	normalized := textutil.Normalize(sentence)
	sentenceTokens := textutil.Tokenize(sentence)

	// Tier 2: exact containment of a normalized phrase.
	for _, phrase := range v.index.phrases {
		if phrase.Normalized != "" && strings.Contains(normalized, phrase.Normalized) {
			return sentenceResult{Supported: true, Confidence: exactContainmentConfidence}
		}
	}

	// Tier 3: best Jaccard token similarity across all phrases.
	best := 0.0
	for _, tokens := range v.phraseTokens {
		if score := textutil.Jaccard(sentenceTokens, tokens); score > best {
			best = score
		}
	}
	if best >= jaccardSupportThreshold {
		return sentenceResult{Supported: true, Confidence: best}
	}

	// Tier 4: allow-list heuristics for boilerplate and action language.
	lower := strings.ToLower(sentence)
	if containsAny(lower, boilerplateTerms) || containsAny(lower, achievementVerbs) {
		return sentenceResult{Supported: true, Confidence: allowListConfidence}
	}
	for _, pattern := range professionalPatterns {
		if pattern.MatchString(sentence) {
			return sentenceResult{Supported: true, Confidence: professionalConfidence}
		}
	}

	// Tier 5: keyword overlap against the whole source vocabulary with a
	// much lower bar.
	if score := textutil.Jaccard(sentenceTokens, v.sourceTokens); score >= semanticThreshold {
		confidence := score
		if confidence < semanticMinConfidence {
			confidence = semanticMinConfidence
		}
		return sentenceResult{Supported: true, Confidence: confidence}
	}

	return sentenceResult{Supported: false}
}

// suggestCorrection finds the single best Jaccard-matching phrase for an
// unsupported sentence. Below the threshold no correction is offered.
func (v *Validator) suggestCorrection(sentence string) (Correction, bool) {
	sentenceTokens := textutil.Tokenize(sentence)
	best := 0.0
	bestIdx := -1
	for i, tokens := range v.phraseTokens {
		if score := textutil.Jaccard(sentenceTokens, tokens); score > best {
			best = score
			bestIdx = i
		}
	}
	if bestIdx < 0 || best <= correctionThreshold {
		return Correction{}, false
	}
	phrase := v.index.phrases[bestIdx]
	return Correction{
		Original:  sentence,
		Corrected: phrase.Text,
		Reason:    fmt.Sprintf("replaced with closest supported %s statement from source", phrase.Category),
	}, true
}

// ValidateSentences validates candidate sentences and produces a report.
func (v *Validator) ValidateSentences(sentences []string) *ValidationReport {
	report := &ValidationReport{
		FlaggedClaims:   []string{},
		SupportedClaims: []string{},
		Corrections:     []Correction{},
	}

	if v.lenient {
		// Insufficient source signal must not produce false negatives.
		report.IsValid = true
		report.Score = lenientScore
		report.SupportedClaims = append(report.SupportedClaims, sentences...)
		return report
	}

	if len(sentences) == 0 {
		report.IsValid = true
		report.Score = 100
		return report
	}

	supported := 0
	for _, sentence := range sentences {
		result := v.validateSentence(sentence)
		if result.Supported {
			supported++
			report.SupportedClaims = append(report.SupportedClaims, sentence)
			continue
		}
		report.FlaggedClaims = append(report.FlaggedClaims, sentence)
		if correction, ok := v.suggestCorrection(sentence); ok {
			report.Corrections = append(report.Corrections, correction)
		}
	}

	rawScore := float64(supported) / float64(len(sentences)) * 100
	score := rawScore
	if score < scoreFloor {
		score = scoreFloor
	}
	report.Score = score
	report.IsValid = score >= passThreshold
	return report
}

// ValidateSections validates every sentence in the section map and applies
// suggested corrections in place: each correction's original text is
// substituted in every section containing it.
func (v *Validator) ValidateSections(sections *types.SectionMap) *ValidationReport {
	var sentences []string
	for _, name := range sections.Names() {
		sentences = append(sentences, textutil.SplitSentences(sections.Get(name))...)
	}

	report := v.ValidateSentences(sentences)

	for _, correction := range report.Corrections {
		for _, name := range sections.Names() {
			text := sections.Get(name)
			if strings.Contains(text, correction.Original) {
				_ = sections.Set(name, strings.ReplaceAll(text, correction.Original, correction.Corrected))
			}
		}
	}
	return report
}
