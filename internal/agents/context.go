// Package agents provides the independent, stateless content generators that
// each produce one named piece of a cover letter from shared pipeline context.
package agents

import (
	"fmt"
	"strings"

	"github.com/jonathan/coverletter-agent/internal/types"
)

// Context is the shared input every agent receives: job metadata, the
// extraction outputs, the user's style profile, and the
// accomplishment-to-requirement mapping. Agents must ground claims only in
// this data.
type Context struct {
	Posting       types.JobPosting
	Analysis      types.JobAnalysis
	Style         types.StyleProfile
	Mapping       types.AccomplishmentMapping
	CandidateName string
}

// groundingInstruction is appended to every agent prompt. Enforcement of the
// grounding rule happens downstream in the claim validator.
const groundingInstruction = `IMPORTANT:
- Base every factual claim ONLY on the accomplishments and style data above.
- Do not invent employers, metrics, titles, or credentials.
- Return ONLY the requested content, no preamble, no markdown.`

// promptContext renders the shared context block used by every agent prompt.
func promptContext(shared *Context) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Role: %s at %s\n", shared.Posting.RoleTitle, shared.Posting.Company))

	if len(shared.Analysis.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf("Job keywords: %s\n", strings.Join(shared.Analysis.Keywords, ", ")))
	}
	if len(shared.Analysis.Requirements) > 0 {
		sb.WriteString("Job requirements:\n")
		for _, req := range shared.Analysis.Requirements {
			sb.WriteString(fmt.Sprintf("- %s\n", req))
		}
	}

	if shared.Style.Tone != "" {
		sb.WriteString(fmt.Sprintf("Writing tone: %s (%s)\n", shared.Style.Tone, shared.Style.Formality))
	}
	if shared.Style.SentencePattern != "" {
		sb.WriteString(fmt.Sprintf("Sentence pattern: %s\n", shared.Style.SentencePattern))
	}
	if len(shared.Style.Vocabulary) > 0 {
		sb.WriteString(fmt.Sprintf("Preferred vocabulary: %s\n", strings.Join(shared.Style.Vocabulary, ", ")))
	}

	if len(shared.Mapping.Matches) > 0 {
		sb.WriteString("Matched accomplishments:\n")
		for _, match := range shared.Mapping.Matches {
			sb.WriteString(fmt.Sprintf("- Requirement: %s\n", match.Requirement))
			for _, acc := range match.Accomplishments {
				sb.WriteString(fmt.Sprintf("  - %s\n", acc))
			}
		}
	}

	return sb.String()
}
