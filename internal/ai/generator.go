// Package ai turns an assembled context document into discrete lecture-theme
// suggestions through the Gemini backend.
//
// The response contract is an internal convention: the model is instructed to
// return a numbered list where each entry opens with "N. **Title**" and the
// rationale follows on subsequent lines, continuing until the next numbered
// entry. Entries that do not fit that shape are dropped rather than failing
// the whole response.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"theme-tracker/internal/config"
	"theme-tracker/internal/models"
)

var (
	// ErrGenerationFailed wraps backend failures (timeout, rate limit, auth).
	// The underlying cause stays in the chain; no automatic retry happens, the
	// caller decides whether a retry with a different source or cohort is
	// worth the quota.
	ErrGenerationFailed = errors.New("theme generation failed")

	// ErrNoThemesGenerated means the backend answered but produced nothing
	// parseable.
	ErrNoThemesGenerated = errors.New("no themes generated")
)

type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGenerator(ctx context.Context, cfg *config.Config) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.AI.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Generator{
		client:  client,
		model:   cfg.AI.Model,
		timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	}, nil
}

// GenerateThemes sends the context document in a single request and parses
// the textual response into ordered suggestions for the cohort.
func (g *Generator) GenerateThemes(ctx context.Context, document string, cohort models.AgeCohort) ([]*models.ThemeSuggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(document)}, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	responseText := result.Text()
	themes := ParseThemes(responseText, cohort)
	if len(themes) == 0 {
		return nil, fmt.Errorf("%w: response had no parseable entries", ErrNoThemesGenerated)
	}

	log.Printf("Generated %d lecture themes for cohort %s", len(themes), cohort)
	return themes, nil
}

// itemStart matches the opening of a numbered list entry at a line start.
var itemStart = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)

// boldTitle matches a markdown-bold span, the preferred title form.
var boldTitle = regexp.MustCompile(`\*\*(.+?)\*\*`)

// ParseThemes splits the backend response into numbered blocks and parses
// each independently. Malformed blocks are skipped; a fully unparseable
// response yields an empty slice.
func ParseThemes(response string, cohort models.AgeCohort) []*models.ThemeSuggestion {
	marks := itemStart.FindAllStringIndex(response, -1)
	if len(marks) == 0 {
		return nil
	}

	var themes []*models.ThemeSuggestion
	for i, mark := range marks {
		end := len(response)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		block := response[mark[1]:end]

		if theme := parseBlock(block, cohort); theme != nil {
			themes = append(themes, theme)
		}
	}
	return themes
}

// parseBlock extracts title and rationale from one numbered entry. A block
// with no recognizable title, or with a title but no rationale text, is
// reported as nil and dropped by the caller.
func parseBlock(block string, cohort models.AgeCohort) *models.ThemeSuggestion {
	block = strings.TrimSpace(block)
	if block == "" {
		return nil
	}

	var title, rationale string
	if m := boldTitle.FindStringSubmatchIndex(block); m != nil {
		title = strings.TrimSpace(block[m[2]:m[3]])
		rationale = strings.TrimSpace(block[:m[0]] + block[m[1]:])
	} else {
		// Fall back to the first line as the title.
		line, rest, _ := strings.Cut(block, "\n")
		title = strings.TrimSpace(line)
		rationale = strings.TrimSpace(rest)
	}

	title = strings.Trim(title, " :-–")
	rationale = strings.Trim(rationale, " :-–\n")
	if title == "" || rationale == "" {
		return nil
	}

	return &models.ThemeSuggestion{
		Title:     title,
		Rationale: rationale,
		Cohort:    cohort,
	}
}
