// Package tracker orchestrates the trend aggregation and theme-synthesis
// pipeline: window mining, corpus combination, and generation requests. It is
// the only surface the presentation layer talks to.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"theme-tracker/internal/ai"
	"theme-tracker/internal/config"
	"theme-tracker/internal/corpus"
	"theme-tracker/internal/email"
	"theme-tracker/internal/models"
	"theme-tracker/internal/philosophy"
	"theme-tracker/internal/prompt"
	"theme-tracker/internal/storage"
	"theme-tracker/internal/youtube"
)

var (
	// ErrGenerationInProgress rejects a generation request while another is
	// in flight for this session. Generation is not idempotent-cheap, so a
	// second concurrent request is refused rather than queued.
	ErrGenerationInProgress = errors.New("a theme generation request is already in progress")

	// ErrNoCorpus means the selected source has not been mined yet.
	ErrNoCorpus = errors.New("no corpus available for the selected source")
)

// Miner mines one window into a ranked corpus.
type Miner interface {
	MineWindow(ctx context.Context, window models.Window, query string, maxResults int64) (*corpus.Corpus, error)
}

// ThemeGenerator turns an assembled context document into suggestions.
type ThemeGenerator interface {
	GenerateThemes(ctx context.Context, document string, cohort models.AgeCohort) ([]*models.ThemeSuggestion, error)
}

// DigestSender delivers the optional emailed digest.
type DigestSender interface {
	SendDigest(themes []*models.ThemeSuggestion, cohort models.AgeCohort, source models.SourceSelector) error
}

type Tracker struct {
	config    *config.Config
	miner     Miner
	generator ThemeGenerator
	builder   *prompt.Builder
	sender    DigestSender
	store     *storage.SessionStore
	genGuard  *semaphore.Weighted
}

func New(cfg *config.Config) *Tracker {
	return &Tracker{
		config:   cfg,
		store:    storage.NewSessionStore(),
		genGuard: semaphore.NewWeighted(1),
	}
}

func (t *Tracker) Name() string {
	return "Spirituality Theme Tracker"
}

// Initialize wires the external clients. Safe to call more than once;
// already-built components are kept.
func (t *Tracker) Initialize() error {
	log.Printf("Initializing %s...", t.Name())

	if t.miner == nil {
		client, err := youtube.NewClient(context.Background(), t.config.YouTube.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		t.miner = client
		log.Println("YouTube client initialized")
	}

	if t.generator == nil {
		generator, err := ai.NewGenerator(context.Background(), t.config)
		if err != nil {
			return fmt.Errorf("failed to create theme generator: %w", err)
		}
		t.generator = generator
		log.Println("Theme generator initialized")
	}

	if t.builder == nil {
		contextText, err := philosophy.Load()
		if err != nil {
			return fmt.Errorf("failed to load philosophical context: %w", err)
		}
		t.builder = prompt.NewBuilder(contextText)
		log.Printf("Philosophical context loaded (%d characters)", len(contextText))
	}

	if t.sender == nil && t.config.Email.Enabled() {
		t.sender = email.NewSender(&t.config.Email)
		log.Println("Email sender initialized")
	}

	return nil
}

// MineWindow mines one window and stores its corpus for the session.
func (t *Tracker) MineWindow(ctx context.Context, window models.Window) (*corpus.Corpus, error) {
	c, err := t.miner.MineWindow(ctx, window, t.config.YouTube.Query, t.config.YouTube.MaxResults)
	if err != nil {
		return nil, err
	}
	t.store.Put(window, c)
	return c, nil
}

// MineReport describes the outcome of a full mining pass. Window failures are
// isolated: one window failing never discards another window's corpus.
type MineReport struct {
	Succeeded []models.Window         `json:"succeeded"`
	Counts    map[models.Window]int   `json:"counts"`
	Failed    map[models.Window]error `json:"-"`
}

// FailedMessages exposes failures as strings for JSON responses.
func (r *MineReport) FailedMessages() map[models.Window]string {
	out := make(map[models.Window]string, len(r.Failed))
	for w, err := range r.Failed {
		out[w] = err.Error()
	}
	return out
}

func (r *MineReport) Summary() string {
	var parts []string
	for _, w := range r.Succeeded {
		parts = append(parts, fmt.Sprintf("%s: %d videos", w, r.Counts[w]))
	}
	if len(parts) == 0 {
		parts = append(parts, "no windows mined")
	}
	if len(r.Failed) > 0 {
		var failed []string
		for w := range r.Failed {
			failed = append(failed, string(w))
		}
		sort.Strings(failed)
		parts = append(parts, fmt.Sprintf("failed: %s", strings.Join(failed, ", ")))
	}
	return strings.Join(parts, ", ")
}

// Err folds per-window failures into one error, nil when every window mined.
func (r *MineReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, w := range models.AllWindows() {
		if err, ok := r.Failed[w]; ok {
			errs = append(errs, fmt.Errorf("%s window: %w", w, err))
		}
	}
	return errors.Join(errs...)
}

// MineAll mines the three windows concurrently. The windows touch disjoint
// query parameters and separate corpus slots, so they need no coordination
// beyond the join.
func (t *Tracker) MineAll(ctx context.Context) *MineReport {
	windows := models.AllWindows()

	type outcome struct {
		window models.Window
		corpus *corpus.Corpus
		err    error
	}

	results := make([]outcome, len(windows))
	var wg sync.WaitGroup
	for i, w := range windows {
		wg.Add(1)
		go func(i int, w models.Window) {
			defer wg.Done()
			c, err := t.MineWindow(ctx, w)
			results[i] = outcome{window: w, corpus: c, err: err}
		}(i, w)
	}
	wg.Wait()

	report := &MineReport{
		Counts: make(map[models.Window]int),
		Failed: make(map[models.Window]error),
	}
	for _, res := range results {
		if res.err != nil {
			log.Printf("Mining %s window failed: %v", res.window, res.err)
			report.Failed[res.window] = res.err
			continue
		}
		report.Succeeded = append(report.Succeeded, res.window)
		report.Counts[res.window] = res.corpus.Len()
	}
	return report
}

// Corpus resolves a source selector to a corpus: a direct lookup for a single
// window, or a fresh combination of every mined window for the combined view.
func (t *Tracker) Corpus(source models.SourceSelector) (*corpus.Corpus, error) {
	if window, ok := source.Window(); ok {
		c, found := t.store.Get(window)
		if !found {
			return nil, fmt.Errorf("%w: %s window has not been mined", ErrNoCorpus, window)
		}
		return c, nil
	}

	if source != models.SourceCombined {
		return nil, fmt.Errorf("unknown corpus source %q", source)
	}

	corpora := t.store.All()
	if len(corpora) == 0 {
		return nil, fmt.Errorf("%w: no windows have been mined", ErrNoCorpus)
	}
	return corpus.Combine(corpora...), nil
}

// MinedWindows reports which windows currently hold a session corpus.
func (t *Tracker) MinedWindows() []models.Window {
	return t.store.Windows()
}

// GenerateThemes runs the builder and the generation backend for the selected
// source and cohort. At most one generation request is in flight per session.
func (t *Tracker) GenerateThemes(ctx context.Context, source models.SourceSelector, cohort models.AgeCohort) ([]*models.ThemeSuggestion, error) {
	if !cohort.Valid() {
		return nil, fmt.Errorf("invalid age cohort %q", cohort)
	}

	if !t.genGuard.TryAcquire(1) {
		return nil, ErrGenerationInProgress
	}
	defer t.genGuard.Release(1)

	c, err := t.Corpus(source)
	if err != nil {
		return nil, err
	}

	document, err := t.builder.Build(c, cohort)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	log.Printf("Generation request %s: source=%s cohort=%s corpus=%d videos", requestID, source, cohort, c.Len())

	start := time.Now()
	themes, err := t.generator.GenerateThemes(ctx, document, cohort)
	if err != nil {
		log.Printf("Generation request %s failed after %v: %v", requestID, time.Since(start), err)
		return nil, err
	}

	log.Printf("Generation request %s completed in %v with %d themes", requestID, time.Since(start), len(themes))
	return themes, nil
}

// EmailDigest sends the generated themes if a digest sender is configured.
func (t *Tracker) EmailDigest(themes []*models.ThemeSuggestion, cohort models.AgeCohort, source models.SourceSelector) error {
	if t.sender == nil {
		return fmt.Errorf("email digest is not configured")
	}
	return t.sender.SendDigest(themes, cohort, source)
}

// DigestConfigured reports whether the emailed digest can be sent.
func (t *Tracker) DigestConfigured() bool {
	return t.sender != nil
}

// RunOnce implements the scheduler Agent: a full concurrent mining pass.
// A partial pass (some windows mined) returns both a summary and the error.
func (t *Tracker) RunOnce(ctx context.Context) (string, error) {
	report := t.MineAll(ctx)
	if len(report.Succeeded) == 0 {
		return "", fmt.Errorf("all mining windows failed: %w", report.Err())
	}
	return report.Summary(), report.Err()
}
