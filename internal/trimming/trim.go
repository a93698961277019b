// Package trimming enforces a hard word budget over a cover letter's
// sections by removing whole sentences, never altering the words that remain.
package trimming

import (
	"strings"

	"github.com/jonathan/coverletter-agent/internal/textutil"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// DefaultWordBudget is the hard ceiling applied when no budget is
// configured.
const DefaultWordBudget = 480

// DefaultPriority orders section names from least to most important: the
// first entries lose sentences first.
var DefaultPriority = []string{
	types.SectionValueProp4Detail,
	types.SectionValueProp3Detail,
	types.SectionValueProp2Detail,
	types.SectionLeadership,
	types.SectionAlignment,
	types.SectionValueProp1Detail,
	types.SectionOpening,
	types.SectionClosing,
}

// Trim enforces the word budget on the section map, in place. Sections at or
// under budget are untouched. Over budget, whole trailing sentences are
// removed from low-priority sections first, each section keeping at least one
// sentence; if that is not enough, a global truncation pass keeps the longest
// prefix of sentences that fits.
func Trim(sections *types.SectionMap, budget int, priority []string) *types.SectionMap {
	if budget <= 0 {
		return sections
	}
	total := sections.TotalWords()
	if total <= budget {
		return sections
	}
	if len(priority) == 0 {
		priority = DefaultPriority
	}

	total = priorityPass(sections, budget, total, priority)
	if total > budget {
		globalTruncate(sections, budget)
	}
	return sections
}

// priorityPass pops trailing sentences off each priority field in turn until
// the budget is met or every field is down to one sentence. Returns the new
// running total.
func priorityPass(sections *types.SectionMap, budget, total int, priority []string) int {
	for _, name := range priority {
		if total <= budget {
			break
		}
		sentences := textutil.SplitSentences(sections.Get(name))
		if len(sentences) <= 1 {
			continue
		}
		for len(sentences) > 1 && total > budget {
			last := sentences[len(sentences)-1]
			sentences = sentences[:len(sentences)-1]
			total -= textutil.WordCount(last)
		}
		_ = sections.Set(name, strings.Join(sentences, " "))
	}
	return total
}

// globalTruncate flattens all sections' sentences into one ordered sequence
// and keeps every sentence strictly before the first one whose inclusion
// would exceed the budget.
func globalTruncate(sections *types.SectionMap, budget int) {
	type placed struct {
		section  string
		sentence string
	}
	var ordered []placed
	for _, name := range sections.Names() {
		for _, sentence := range textutil.SplitSentences(sections.Get(name)) {
			ordered = append(ordered, placed{section: name, sentence: sentence})
		}
	}

	kept := make(map[string][]string)
	running := 0
	for _, p := range ordered {
		words := textutil.WordCount(p.sentence)
		if running+words > budget {
			break
		}
		running += words
		kept[p.section] = append(kept[p.section], p.sentence)
	}

	for _, name := range sections.Names() {
		_ = sections.Set(name, strings.TrimSpace(strings.Join(kept[name], " ")))
	}
}
