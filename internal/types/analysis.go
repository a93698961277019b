package types

// StyleProfile captures the writing voice extracted from a user's style
// sample. It is the processed tier of the style-profile domain cache.
type StyleProfile struct {
	Tone            string   `json:"tone"`
	Formality       string   `json:"formality"`
	SentencePattern string   `json:"sentence_pattern"`
	Vocabulary      []string `json:"vocabulary"`
	Notes           string   `json:"notes,omitempty"`
}

// ResumeAnalysis is the processed tier of the resume domain cache: the
// accomplishment lines pulled out of the resume plus a term-frequency vector
// over its text, used for keyword scoring.
type ResumeAnalysis struct {
	Accomplishments []string           `json:"accomplishments"`
	TermFrequencies map[string]float64 `json:"term_frequencies"`
}

// RequirementMatch maps one job requirement to the resume accomplishments
// that support it.
type RequirementMatch struct {
	Requirement     string   `json:"requirement"`
	Accomplishments []string `json:"accomplishments"`
	Strength        string   `json:"strength,omitempty"`
}

// AccomplishmentMapping is the processed tier of the job-mapping domain
// cache: requirement-to-accomplishment matches for one (user, job) pair.
type AccomplishmentMapping struct {
	Matches []RequirementMatch `json:"matches"`
}

// JobAnalysis holds the outputs of the job posting extraction phase.
type JobAnalysis struct {
	Keywords     []string `json:"keywords"`
	Requirements []string `json:"requirements"`
}
