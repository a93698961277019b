package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/coverletter-agent/internal/llm"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// Refine performs the coherence pass: a single structured call over the
// complete section map that smooths transitions and removes repetition while
// preserving every key. It requires the fully aggregated map, so it must not
// run until every generation agent has settled. On any failure the input map
// is returned unchanged.
func Refine(ctx context.Context, client llm.Client, shared *Context, sections *types.SectionMap, logf func(format string, args ...any)) *types.SectionMap {
	refined, err := refine(ctx, client, shared, sections)
	if err != nil {
		if logf != nil {
			logf("coherence refinement fell back to unrefined content: %v", err)
		}
		return sections
	}
	return refined
}

func refine(ctx context.Context, client llm.Client, shared *Context, sections *types.SectionMap) (*types.SectionMap, error) {
	current, err := json.Marshal(sections)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sections: %w", err)
	}

	prompt := promptContext(shared) + `
Task: Refine this cover letter for coherence. Smooth transitions between
sections, remove repeated claims, and keep the candidate's voice. Do not add
new factual claims. Keep "signature_name" unchanged.

Current letter sections as JSON:
` + string(current) + `

Return ONLY a JSON object with exactly the same keys, each mapped to the
refined text.

` + groundingInstruction

	raw, err := client.GenerateJSON(ctx, prompt, systemInstruction, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("coherence call failed: %w", err)
	}

	var updated map[string]string
	if err := json.Unmarshal([]byte(raw), &updated); err != nil {
		return nil, fmt.Errorf("coherence response is not valid JSON: %w", err)
	}

	refined := sections.Clone()
	if err := refined.ReplaceAll(updated); err != nil {
		return nil, fmt.Errorf("coherence response has wrong shape: %w", err)
	}
	return refined, nil
}
