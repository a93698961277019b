// Package analysis provides the job posting extraction, style profiling, and
// accomplishment mapping computations the pipeline runs ahead of generation.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/coverletter-agent/internal/llm"
)

const extractionSystem = `You are an expert job posting parser. Extract information directly from the text; do not invent or summarize.`

// ExtractKeywords pulls the ATS-relevant keywords out of a job description.
func ExtractKeywords(ctx context.Context, client llm.Client, description string) ([]string, error) {
	prompt := fmt.Sprintf(`Extract the 10-15 most important skills, technologies, and domain keywords from this job posting. Copy terms verbatim.

Return ONLY a JSON array of strings.

Job posting:
"""
%s
"""`, description)

	return extractStringList(ctx, client, prompt, "keywords")
}

// ExtractRequirements pulls the explicit requirements out of a job description.
func ExtractRequirements(ctx context.Context, client llm.Client, description string) ([]string, error) {
	prompt := fmt.Sprintf(`Extract every qualification and requirement from this job posting, one per entry, copied verbatim.

Return ONLY a JSON array of strings.

Job posting:
"""
%s
"""`, description)

	return extractStringList(ctx, client, prompt, "requirements")
}

func extractStringList(ctx context.Context, client llm.Client, prompt, what string) ([]string, error) {
	raw, err := client.GenerateJSON(ctx, prompt, extractionSystem, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("%s extraction failed: %w", what, err)
	}

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%s extraction returned invalid JSON: %w", what, err)
	}

	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%s extraction returned no entries", what)
	}
	return cleaned, nil
}
