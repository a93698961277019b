package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/coverletter-agent/internal/llm"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// EmptyMapping is the domain default returned when accomplishment mapping
// cannot be computed; it is never cached so the next run retries.
func EmptyMapping() types.AccomplishmentMapping {
	return types.AccomplishmentMapping{Matches: []types.RequirementMatch{}}
}

// MapAccomplishments matches job requirements to resume accomplishments via
// one structured model call.
func MapAccomplishments(ctx context.Context, client llm.Client, requirements, accomplishments []string) (types.AccomplishmentMapping, error) {
	if len(requirements) == 0 || len(accomplishments) == 0 {
		return EmptyMapping(), nil
	}

	var sb strings.Builder
	sb.WriteString("Match each job requirement to the candidate accomplishments that best support it. Use accomplishments verbatim; omit requirements with no support.\n\n")
	sb.WriteString("Job requirements:\n")
	for _, req := range requirements {
		sb.WriteString("- " + req + "\n")
	}
	sb.WriteString("\nCandidate accomplishments:\n")
	for _, acc := range accomplishments {
		sb.WriteString("- " + acc + "\n")
	}
	sb.WriteString(`
Return ONLY valid JSON matching:
{"matches": [{"requirement": "...", "accomplishments": ["..."], "strength": "high | medium | low"}]}
`)

	raw, err := client.GenerateJSON(ctx, sb.String(), extractionSystem, llm.TierStandard)
	if err != nil {
		return types.AccomplishmentMapping{}, fmt.Errorf("accomplishment mapping failed: %w", err)
	}

	var mapping types.AccomplishmentMapping
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return types.AccomplishmentMapping{}, fmt.Errorf("accomplishment mapping returned invalid JSON: %w", err)
	}
	if mapping.Matches == nil {
		mapping.Matches = []types.RequirementMatch{}
	}
	return mapping, nil
}
