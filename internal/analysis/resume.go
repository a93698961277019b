package analysis

import (
	"strings"

	"github.com/jonathan/coverletter-agent/internal/textutil"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// accomplishmentMarkers flag resume lines that state concrete outcomes.
var accomplishmentMarkers = []string{
	"led", "built", "delivered", "launched", "reduced", "increased",
	"improved", "managed", "created", "designed", "implemented",
	"developed", "drove", "grew", "scaled", "shipped", "mentored",
	"optimized", "migrated", "automated",
}

// AnalyzeResume derives the processed resume representation: accomplishment
// lines plus a term-frequency vector over the whole document. This is a
// purely local computation.
func AnalyzeResume(raw string) types.ResumeAnalysis {
	analysis := types.ResumeAnalysis{
		Accomplishments: []string{},
		TermFrequencies: make(map[string]float64),
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• \t"))
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		for _, marker := range accomplishmentMarkers {
			if strings.Contains(lower, marker) {
				analysis.Accomplishments = append(analysis.Accomplishments, line)
				break
			}
		}
	}

	words := strings.Fields(textutil.Normalize(raw))
	if len(words) == 0 {
		return analysis
	}
	counts := make(map[string]int)
	for _, word := range words {
		if len(word) > 2 {
			counts[word]++
		}
	}
	for word, count := range counts {
		analysis.TermFrequencies[word] = float64(count) / float64(len(words))
	}
	return analysis
}
