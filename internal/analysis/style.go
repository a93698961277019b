package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/coverletter-agent/internal/llm"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// DefaultStyleProfile is used when the user has not uploaded a writing
// sample: a neutral professional voice.
func DefaultStyleProfile() types.StyleProfile {
	return types.StyleProfile{
		Tone:            "professional, confident",
		Formality:       "formal",
		SentencePattern: "varied length, active voice",
		Vocabulary:      []string{},
	}
}

// ComputeStyleProfile derives a writing-voice profile from the user's style
// sample. An empty sample yields the default profile without a model call.
func ComputeStyleProfile(ctx context.Context, client llm.Client, sample string) (types.StyleProfile, error) {
	if sample == "" {
		return DefaultStyleProfile(), nil
	}

	prompt := fmt.Sprintf(`Analyze the writing voice of this sample and describe it.

Return ONLY valid JSON matching:
{
  "tone": "overall tone, e.g. 'warm, direct'",
  "formality": "formal | semi-formal | casual",
  "sentence_pattern": "typical sentence structure",
  "vocabulary": ["characteristic words or phrases the author favors"],
  "notes": "anything else distinctive"
}

Writing sample:
"""
%s
"""`, sample)

	raw, err := client.GenerateJSON(ctx, prompt, "You are an expert writing-style analyst.", llm.TierStandard)
	if err != nil {
		return types.StyleProfile{}, fmt.Errorf("style analysis failed: %w", err)
	}

	var profile types.StyleProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return types.StyleProfile{}, fmt.Errorf("style analysis returned invalid JSON: %w", err)
	}
	if profile.Tone == "" {
		return types.StyleProfile{}, fmt.Errorf("style analysis returned an empty profile")
	}
	if profile.Vocabulary == nil {
		profile.Vocabulary = []string{}
	}
	return profile, nil
}
