package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/coverletter-agent/internal/claims"
	"github.com/jonathan/coverletter-agent/internal/types"
)

func TestPrintJobAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	posting := &types.JobPosting{Company: "Acme Corp", RoleTitle: "Senior Engineer"}
	analysis := types.JobAnalysis{
		Keywords:     []string{"Go", "Kubernetes", "gRPC", "Postgres", "Terraform", "Kafka", "Redis"},
		Requirements: []string{"5+ years of Go"},
	}

	p.PrintJobAnalysis(posting, analysis)
	output := buf.String()

	assert.Contains(t, output, "JOB ANALYSIS")
	assert.Contains(t, output, "Acme Corp")
	assert.Contains(t, output, "Senior Engineer")
	assert.Contains(t, output, "Go")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "5+ years of Go")
}

func TestPrintStyleProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStyleProfile(types.StyleProfile{
		Tone:            "direct, warm",
		Formality:       "semi-formal",
		SentencePattern: "short",
		Vocabulary:      []string{"delivered", "shipped"},
	})
	output := buf.String()

	assert.Contains(t, output, "STYLE PROFILE")
	assert.Contains(t, output, "direct, warm")
	assert.Contains(t, output, "delivered, shipped")
}

func TestPrintValidationReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidationReport(&claims.ValidationReport{
		IsValid:         true,
		Score:           88,
		SupportedClaims: []string{"I led a team of 12 engineers."},
		FlaggedClaims:   []string{"I founded the company."},
		Corrections:     []claims.Correction{{Original: "a", Corrected: "b"}},
	})
	output := buf.String()

	assert.Contains(t, output, "CLAIM VALIDATION")
	assert.Contains(t, output, "88/100")
	assert.Contains(t, output, "I founded the company.")
	assert.Contains(t, output, "Corrections applied: 1")
}

func TestPrintValidationReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidationReport(nil)

	assert.Empty(t, buf.String())
}

func TestPrintScores(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintScores(types.QualityScores{Style: 80, ATSKeywords: 90, Clarity: 70, Impact: 60, Validation: 85, Overall: 79.5})
	output := buf.String()

	assert.Contains(t, output, "QUALITY SCORES")
	assert.Contains(t, output, "79.5")
}

func TestPrintSections(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	sections := types.NewSectionMap()
	require.NoError(t, sections.Set(types.SectionOpening, "Three words here."))

	p.PrintSections(sections)
	output := buf.String()

	assert.Contains(t, output, "LETTER SECTIONS")
	assert.Contains(t, output, "opening")
	assert.Contains(t, output, "3 words")
}
