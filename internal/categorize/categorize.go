// Package categorize assigns each mined video a spiritual-domain label from
// its text fields. Classification is rule based: the first category whose term
// list matches wins, so overlapping matches resolve the same way every time.
package categorize

import (
	"strings"

	"theme-tracker/internal/models"
)

const (
	Meditation    models.Category = "Meditation/Mindfulness practice"
	Eastern       models.Category = "Eastern philosophy"
	Christian     models.Category = "Christian spirituality"
	Islamic       models.Category = "Islamic spirituality"
	Jewish        models.Category = "Jewish spirituality"
	Hindu         models.Category = "Hindu spirituality"
	Consciousness models.Category = "Consciousness exploration"
	Psychedelic   models.Category = "Psychedelic spirituality"
	Afterlife     models.Category = "Afterlife exploration"
	Science       models.Category = "Science and spirituality"
	General       models.Category = "General spiritual content"
)

type rule struct {
	category models.Category
	terms    []string
}

// rules is evaluated in declared order; order is part of the contract.
var rules = []rule{
	{Meditation, []string{"meditation", "mindfulness"}},
	{Eastern, []string{"buddhis", "zen", "tao"}},
	{Christian, []string{"christian", "jesus", "bible", "faith"}},
	{Islamic, []string{"islam", "muslim", "quran"}},
	{Jewish, []string{"judaism", "jewish", "torah"}},
	{Hindu, []string{"hindu", "vedanta", "yoga"}},
	{Consciousness, []string{"consciousness", "awareness"}},
	{Psychedelic, []string{"psychedelic", "plant medicine", "ayahuasca", "dmt"}},
	{Afterlife, []string{"near death", "afterlife", "heaven"}},
	{Science, []string{"science", "physics", "quantum"}},
}

// Categories returns every assignable label, most specific first, with the
// fallback last.
func Categories() []models.Category {
	out := make([]models.Category, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.category)
	}
	return append(out, General)
}

// Categorize maps a video's title and description to exactly one category.
// It is total: any input, including empty text, yields a label.
func Categorize(title, description string) models.Category {
	text := strings.ToLower(title + " " + description)
	for _, r := range rules {
		for _, term := range r.terms {
			if strings.Contains(text, term) {
				return r.category
			}
		}
	}
	return General
}
