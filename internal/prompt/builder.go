// Package prompt assembles the context document sent to the generation
// backend: a ranked digest of the selected corpus, the philosophical framing,
// and the target cohort's descriptor. Assembly is pure; the same corpus and
// cohort always produce byte-identical output.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"theme-tracker/internal/corpus"
	"theme-tracker/internal/models"
)

// ErrEmptyCorpus is returned when there is nothing to summarize.
var ErrEmptyCorpus = errors.New("corpus is empty")

const (
	// DefaultDigestSize bounds the trend digest so the prompt stays within
	// a predictable token budget.
	DefaultDigestSize = 15

	// maxContextChars caps the philosophical context included in a prompt.
	maxContextChars = 10000
)

type Builder struct {
	philosophy string
	digestSize int
}

func NewBuilder(philosophyText string) *Builder {
	return &Builder{
		philosophy: truncate(philosophyText, maxContextChars),
		digestSize: DefaultDigestSize,
	}
}

// Build renders the full context document for one generation request.
func (b *Builder) Build(c *corpus.Corpus, cohort models.AgeCohort) (string, error) {
	if c.Len() == 0 {
		return "", ErrEmptyCorpus
	}
	if !cohort.Valid() {
		return "", fmt.Errorf("invalid age cohort %q", cohort)
	}

	var digest strings.Builder
	for _, rec := range c.Top(b.digestSize) {
		fmt.Fprintf(&digest, "- %s (%s)\n", rec.Title, rec.Category)
	}

	doc := fmt.Sprintf(`As a spiritual content creator for a philosophical school of thought, analyze these trending YouTube video titles related to spirituality:

%s
The philosophical school has the following context, which should guide your suggestions:
----
%s
----

Based on these trends and the philosophical context, suggest 5 compelling lecture themes that would resonate specifically with people aged %s years.
Consider that this age group typically has these characteristics: %s.

Make sure your suggested themes align with the philosophical approach described in the context.

For each theme:
1. Provide a catchy title that reflects both current trends and the philosophical approach
2. Write a short description (2-3 sentences)
3. Explain why this theme would resonate with this specific age group
4. Briefly note how it connects to the philosophical context

Format your response as a numbered list. Start each entry with its number, a period, and the title in bold (for example "1. **The Quiet Mind**"), then put the description and reasoning on the lines below it.`,
		digest.String(), b.philosophy, cohort, cohort.Descriptor())

	return doc, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
