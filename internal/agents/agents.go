package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/coverletter-agent/internal/llm"
	"github.com/jonathan/coverletter-agent/internal/types"
)

const systemInstruction = `You are an expert cover letter writer. You write in the candidate's own voice, grounded strictly in their real accomplishments.`

// Agent produces one or more named section values. Fields is the fixed,
// predeclared set of section names this agent owns; Fallback carries the
// literal values used when generation fails.
type Agent struct {
	Name     string
	Fields   []string
	Fallback map[string]string
	generate GenerateFunc
}

// Run executes the agent with the fallback policy applied. It never fails.
func (a Agent) Run(ctx context.Context, client llm.Client, shared *Context, logf func(format string, args ...any)) map[string]string {
	return WithFallback(a.generate, a.Fallback, logf)(ctx, client, shared)
}

// All returns every generation agent, one per letter concern. Each agent
// owns a disjoint, fixed set of section names.
func All() []Agent {
	return []Agent{
		textAgent("opening", types.SectionOpening,
			`Write the opening paragraph of a cover letter for this role: 2-3 sentences that name the role and company and state why the candidate is a strong fit.`,
			"I am excited to apply for this role. My background aligns well with what your team is looking for."),
		textAgent("alignment", types.SectionAlignment,
			`Write a body paragraph showing how the candidate's experience aligns with the job requirements: 3-4 sentences referencing the matched accomplishments.`,
			"My experience maps directly onto the core requirements of this position, and I am confident I can contribute from day one."),
		textAgent("leadership", types.SectionLeadership,
			`Write a body paragraph about the candidate's leadership and collaboration, grounded in the matched accomplishments: 2-3 sentences.`,
			"I have a track record of working well with teams and taking ownership of outcomes."),
		valuePropsAgent(),
		textAgent("closing", types.SectionClosing,
			`Write the closing paragraph of the cover letter: 2 sentences thanking the reader and inviting further discussion.`,
			"Thank you for considering my application. I would welcome the opportunity to discuss how I can contribute to your team."),
		signatureAgent(),
	}
}

// textAgent builds a single-field free-text agent.
func textAgent(name, field, instruction, fallbackText string) Agent {
	return Agent{
		Name:     name,
		Fields:   []string{field},
		Fallback: map[string]string{field: fallbackText},
		generate: func(ctx context.Context, client llm.Client, shared *Context) (map[string]string, error) {
			prompt := promptContext(shared) + "\nTask: " + instruction + "\n\n" + groundingInstruction
			text, err := client.GenerateContent(ctx, prompt, systemInstruction, llm.TierAdvanced)
			if err != nil {
				return nil, fmt.Errorf("%s generation failed: %w", name, err)
			}
			text = strings.TrimSpace(text)
			if text == "" {
				return nil, fmt.Errorf("%s generation returned empty content", name)
			}
			return map[string]string{field: text}, nil
		},
	}
}

// valuePropFields maps the four value propositions to their section names.
var valuePropFields = [4][2]string{
	{types.SectionValueProp1Title, types.SectionValueProp1Detail},
	{types.SectionValueProp2Title, types.SectionValueProp2Detail},
	{types.SectionValueProp3Title, types.SectionValueProp3Detail},
	{types.SectionValueProp4Title, types.SectionValueProp4Detail},
}

// defaultValueProps is the fixed structure used when the structured response
// fails to parse or has the wrong shape.
var defaultValueProps = [4]types.ValueProp{
	{Title: "Relevant Experience", Detail: "Hands-on experience directly applicable to this role."},
	{Title: "Proven Delivery", Detail: "A history of delivering projects reliably."},
	{Title: "Team Collaboration", Detail: "Effective collaboration across disciplines."},
	{Title: "Growth Mindset", Detail: "Continuous learning and improvement."},
}

// valuePropsAgent generates the four value-proposition title/detail pairs as
// one structured call, validating the returned shape.
func valuePropsAgent() Agent {
	fields := make([]string, 0, 8)
	fallback := make(map[string]string, 8)
	for i, pair := range valuePropFields {
		fields = append(fields, pair[0], pair[1])
		fallback[pair[0]] = defaultValueProps[i].Title
		fallback[pair[1]] = defaultValueProps[i].Detail
	}

	return Agent{
		Name:     "value_props",
		Fields:   fields,
		Fallback: fallback,
		generate: func(ctx context.Context, client llm.Client, shared *Context) (map[string]string, error) {
			prompt := promptContext(shared) + `
Task: Produce exactly 4 value propositions for this candidate, each a short title and a one-sentence detail grounded in the matched accomplishments.

Return ONLY valid JSON matching:
[{"title": "...", "detail": "..."}, {"title": "...", "detail": "..."}, {"title": "...", "detail": "..."}, {"title": "...", "detail": "..."}]

` + groundingInstruction
			raw, err := client.GenerateJSON(ctx, prompt, systemInstruction, llm.TierAdvanced)
			if err != nil {
				return nil, fmt.Errorf("value props generation failed: %w", err)
			}

			var props []types.ValueProp
			if err := json.Unmarshal([]byte(raw), &props); err != nil {
				return nil, fmt.Errorf("value props response is not valid JSON: %w", err)
			}
			if len(props) != len(valuePropFields) {
				return nil, fmt.Errorf("value props response has %d entries, want %d", len(props), len(valuePropFields))
			}
			values := make(map[string]string, 8)
			for i, prop := range props {
				if strings.TrimSpace(prop.Title) == "" || strings.TrimSpace(prop.Detail) == "" {
					return nil, fmt.Errorf("value prop %d has empty title or detail", i+1)
				}
				values[valuePropFields[i][0]] = strings.TrimSpace(prop.Title)
				values[valuePropFields[i][1]] = strings.TrimSpace(prop.Detail)
			}
			return values, nil
		},
	}
}

// signatureAgent fills the signature name from the shared context. It makes
// no external call, so it cannot fail.
func signatureAgent() Agent {
	return Agent{
		Name:     "signature",
		Fields:   []string{types.SectionSignatureName},
		Fallback: map[string]string{types.SectionSignatureName: ""},
		generate: func(_ context.Context, _ llm.Client, shared *Context) (map[string]string, error) {
			return map[string]string{types.SectionSignatureName: shared.CandidateName}, nil
		},
	}
}
