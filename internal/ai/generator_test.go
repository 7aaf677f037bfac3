package ai

import (
	"testing"

	"theme-tracker/internal/models"
)

const wellFormedResponse = `Here are five lecture themes for this audience:

1. **The Quiet Mind in a Loud World**
   Meditation practice as a doorway to inner stillness.
   This resonates with an age group managing career stress daily.

2. **From Ego to Essence**
   A journey through the school's view of self-transcendence.
   Mid-life reflection makes this especially timely.

3. **Science Meets the Sacred**
   Quantum curiosity as an entry point to deeper questions.
   This group values evidence alongside meaning.

4. **The Hero's Inner Journey**
   Reading one's own life as a path of liberation from egocentrism.
   Connects directly to the school's central symbol.
`

func TestParseThemesWellFormed(t *testing.T) {
	themes := ParseThemes(wellFormedResponse, models.Cohort40to50)
	if len(themes) != 4 {
		t.Fatalf("ParseThemes() returned %d themes, want 4", len(themes))
	}

	expectedTitles := []string{
		"The Quiet Mind in a Loud World",
		"From Ego to Essence",
		"Science Meets the Sacred",
		"The Hero's Inner Journey",
	}
	for i, theme := range themes {
		if theme.Title != expectedTitles[i] {
			t.Errorf("theme %d title = %q, want %q", i, theme.Title, expectedTitles[i])
		}
		if theme.Rationale == "" {
			t.Errorf("theme %d has empty rationale", i)
		}
		if theme.Cohort != models.Cohort40to50 {
			t.Errorf("theme %d cohort = %q, want %q", i, theme.Cohort, models.Cohort40to50)
		}
	}
}

func TestParseThemesDropsMalformedBlock(t *testing.T) {
	// Four well-formed entries plus a numbered entry with a title but no
	// rationale text: the malformed one is dropped, the call still succeeds.
	response := wellFormedResponse + "\n5. **Dangling Title**\n"

	themes := ParseThemes(response, models.Cohort30to40)
	if len(themes) != 4 {
		t.Errorf("ParseThemes() returned %d themes, want 4 (malformed block dropped)", len(themes))
	}
}

func TestParseThemesEmptyResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"Empty string", ""},
		{"Whitespace", "   \n\n  "},
		{"Prose without numbering", "I could not find any themes in this material."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if themes := ParseThemes(tt.response, models.Cohort20to30); len(themes) != 0 {
				t.Errorf("ParseThemes(%q) returned %d themes, want 0", tt.response, len(themes))
			}
		})
	}
}

func TestParseThemesWithoutBoldTitles(t *testing.T) {
	// Falls back to the first line of the block as the title.
	response := `1. Finding Meaning After Sixty
Wisdom sharing as a spiritual practice for this stage of life.

2. Letters to the Next Generation
Legacy and mortality awareness reframed as gifts.
`
	themes := ParseThemes(response, models.Cohort60Plus)
	if len(themes) != 2 {
		t.Fatalf("ParseThemes() returned %d themes, want 2", len(themes))
	}
	if themes[0].Title != "Finding Meaning After Sixty" {
		t.Errorf("theme 0 title = %q", themes[0].Title)
	}
	if themes[1].Title != "Letters to the Next Generation" {
		t.Errorf("theme 1 title = %q", themes[1].Title)
	}
}

func TestParseThemesParenthesizedNumbering(t *testing.T) {
	response := "1) **Alt Numbering**\nStill a valid entry with a rationale.\n"
	themes := ParseThemes(response, models.Cohort50to60)
	if len(themes) != 1 {
		t.Fatalf("ParseThemes() returned %d themes, want 1", len(themes))
	}
	if themes[0].Title != "Alt Numbering" {
		t.Errorf("title = %q, want %q", themes[0].Title, "Alt Numbering")
	}
}

func TestParseThemesTitleWithSeparator(t *testing.T) {
	response := "1. **Beyond the Self:** A look at transcendence for the digitally native.\n"
	themes := ParseThemes(response, models.Cohort20to30)
	if len(themes) != 1 {
		t.Fatalf("ParseThemes() returned %d themes, want 1", len(themes))
	}
	if themes[0].Title != "Beyond the Self" {
		t.Errorf("title = %q, want separator trimmed", themes[0].Title)
	}
	if themes[0].Rationale != "A look at transcendence for the digitally native." {
		t.Errorf("rationale = %q", themes[0].Rationale)
	}
}

func TestParseThemesDeterministic(t *testing.T) {
	first := ParseThemes(wellFormedResponse, models.Cohort40to50)
	second := ParseThemes(wellFormedResponse, models.Cohort40to50)
	if len(first) != len(second) {
		t.Fatalf("parse count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if *first[i] != *second[i] {
			t.Errorf("theme %d differs between parses", i)
		}
	}
}
