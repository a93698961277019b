// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/coverletter-agent/internal/claims"
	"github.com/jonathan/coverletter-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// listHead writes up to maxItemsToShow bulleted items plus a remainder line.
func listHead(sb *strings.Builder, items []string) {
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintJobAnalysis outputs the extracted keywords and requirements.
func (p *Printer) PrintJobAnalysis(posting *types.JobPosting, analysis types.JobAnalysis) {
	var sb strings.Builder

	if posting != nil {
		sb.WriteString(fmt.Sprintf("Company:  %s\n", posting.Company))
		sb.WriteString(fmt.Sprintf("Role:     %s\n", posting.RoleTitle))
		sb.WriteString("\n")
	}

	if len(analysis.Keywords) > 0 {
		sb.WriteString("Keywords:\n")
		listHead(&sb, analysis.Keywords)
		sb.WriteString("\n")
	}
	if len(analysis.Requirements) > 0 {
		sb.WriteString("Requirements:\n")
		listHead(&sb, analysis.Requirements)
	}

	p.printBox("JOB ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStyleProfile outputs the derived writing-voice profile.
func (p *Printer) PrintStyleProfile(profile types.StyleProfile) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Tone:       %s\n", profile.Tone))
	sb.WriteString(fmt.Sprintf("Formality:  %s\n", profile.Formality))
	sb.WriteString(fmt.Sprintf("Sentences:  %s\n", profile.SentencePattern))
	if len(profile.Vocabulary) > 0 {
		vocab := strings.Join(profile.Vocabulary, ", ")
		if len(vocab) > 40 {
			vocab = vocab[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("Vocabulary: %s\n", vocab))
	}

	p.printBox("STYLE PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidationReport outputs the claim validation outcome, including the
// flagged claims and applied corrections.
func (p *Printer) PrintValidationReport(report *claims.ValidationReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:     %.0f/100\n", report.Score))
	sb.WriteString(fmt.Sprintf("Valid:     %t\n", report.IsValid))
	sb.WriteString(fmt.Sprintf("Supported: %d\n", len(report.SupportedClaims)))

	if len(report.FlaggedClaims) > 0 {
		sb.WriteString(fmt.Sprintf("\nFlagged (%d):\n", len(report.FlaggedClaims)))
		listHead(&sb, report.FlaggedClaims)
	}
	if len(report.Corrections) > 0 {
		sb.WriteString(fmt.Sprintf("\nCorrections applied: %d\n", len(report.Corrections)))
	}

	p.printBox("CLAIM VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScores outputs the quality sub-scores of the finished letter.
func (p *Printer) PrintScores(scores types.QualityScores) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Style:       %5.1f\n", scores.Style))
	sb.WriteString(fmt.Sprintf("ATS:         %5.1f\n", scores.ATSKeywords))
	sb.WriteString(fmt.Sprintf("Clarity:     %5.1f\n", scores.Clarity))
	sb.WriteString(fmt.Sprintf("Impact:      %5.1f\n", scores.Impact))
	sb.WriteString(fmt.Sprintf("Validation:  %5.1f\n", scores.Validation))
	sb.WriteString(fmt.Sprintf("Overall:     %5.1f", scores.Overall))

	p.printBox("QUALITY SCORES", sb.String())
}

// PrintSections outputs a per-section word count summary.
func (p *Printer) PrintSections(sections *types.SectionMap) {
	if sections == nil {
		return
	}

	var sb strings.Builder
	for _, name := range sections.Names() {
		text := sections.Get(name)
		if text == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-22s %3d words\n", name, len(strings.Fields(text))))
	}
	sb.WriteString(fmt.Sprintf("%-22s %3d words", "total", sections.TotalWords()))

	p.printBox("LETTER SECTIONS", sb.String())
}
