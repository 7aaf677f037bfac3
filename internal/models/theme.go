package models

import "fmt"

// AgeCohort is a target age bracket for generated lecture themes.
type AgeCohort string

const (
	Cohort20to30 AgeCohort = "20-30"
	Cohort30to40 AgeCohort = "30-40"
	Cohort40to50 AgeCohort = "40-50"
	Cohort50to60 AgeCohort = "50-60"
	Cohort60Plus AgeCohort = "60+"
)

func AllCohorts() []AgeCohort {
	return []AgeCohort{Cohort20to30, Cohort30to40, Cohort40to50, Cohort50to60, Cohort60Plus}
}

// cohortDescriptors maps each bracket to the life-stage descriptor used
// verbatim in prompt assembly.
var cohortDescriptors = map[AgeCohort]string{
	Cohort20to30: "digital natives, social media focused, seeking authenticity, concerned about climate crisis, mental health aware",
	Cohort30to40: "career-focused, starting families, balancing work-life, health conscious, pragmatic spirituality",
	Cohort40to50: "mid-life reflection, established careers, parenting teens, seeking deeper meaning, stress management",
	Cohort50to60: "empty nest transitions, career peak or change, caring for aging parents, legacy considerations",
	Cohort60Plus: "retirement planning/living, health challenges, grandparenting, mortality awareness, wisdom sharing",
}

func (c AgeCohort) Valid() bool {
	_, ok := cohortDescriptors[c]
	return ok
}

// Descriptor returns the fixed life-stage characteristics for the cohort.
func (c AgeCohort) Descriptor() string {
	return cohortDescriptors[c]
}

func ParseCohort(s string) (AgeCohort, error) {
	c := AgeCohort(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown age cohort %q", s)
	}
	return c, nil
}

// SourceSelector addresses a corpus: a single mining window or the
// deduplicated combination of all mined windows.
type SourceSelector string

const (
	SourceWeek     = SourceSelector(WindowWeek)
	SourceMonth    = SourceSelector(WindowMonth)
	SourceSixMonth = SourceSelector(WindowSixMonth)
	SourceCombined SourceSelector = "combined"
)

// Window reports the underlying mining window, or false for the combined view.
func (s SourceSelector) Window() (Window, bool) {
	w := Window(s)
	if w.Valid() {
		return w, true
	}
	return "", false
}

func (s SourceSelector) Valid() bool {
	if _, ok := s.Window(); ok {
		return true
	}
	return s == SourceCombined
}

func ParseSource(v string) (SourceSelector, error) {
	s := SourceSelector(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown corpus source %q", v)
	}
	return s, nil
}

// ThemeSuggestion is one generated lecture theme: a short title and the
// rationale paragraph tying it back to the trending categories it came from.
type ThemeSuggestion struct {
	Title     string    `json:"title"`
	Rationale string    `json:"rationale"`
	Cohort    AgeCohort `json:"cohort"`
}
