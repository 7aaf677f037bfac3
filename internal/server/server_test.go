package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"theme-tracker/internal/ai"
	"theme-tracker/internal/corpus"
	"theme-tracker/internal/models"
	"theme-tracker/internal/monitoring"
	"theme-tracker/internal/prompt"
	"theme-tracker/internal/tracker"
	"theme-tracker/internal/youtube"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubService scripts tracker behavior per test.
type stubService struct {
	mineWindowErr error
	mineReport    *tracker.MineReport
	corpusErr     error
	generateErr   error
	themes        []*models.ThemeSuggestion
	digestOn      bool
	digestErr     error
	digestCalls   int
}

func (s *stubService) MineWindow(ctx context.Context, window models.Window) (*corpus.Corpus, error) {
	if s.mineWindowErr != nil {
		return nil, s.mineWindowErr
	}
	return corpus.New(window.Source(), []*models.VideoRecord{{ID: "v1", Title: "t", Window: window}}), nil
}

func (s *stubService) MineAll(ctx context.Context) *tracker.MineReport {
	return s.mineReport
}

func (s *stubService) Corpus(source models.SourceSelector) (*corpus.Corpus, error) {
	if s.corpusErr != nil {
		return nil, s.corpusErr
	}
	return corpus.New(source, []*models.VideoRecord{{ID: "v1", Title: "t"}}), nil
}

func (s *stubService) MinedWindows() []models.Window {
	return []models.Window{models.WindowWeek}
}

func (s *stubService) GenerateThemes(ctx context.Context, source models.SourceSelector, cohort models.AgeCohort) ([]*models.ThemeSuggestion, error) {
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return s.themes, nil
}

func (s *stubService) EmailDigest(themes []*models.ThemeSuggestion, cohort models.AgeCohort, source models.SourceSelector) error {
	s.digestCalls++
	return s.digestErr
}

func (s *stubService) DigestConfigured() bool {
	return s.digestOn
}

func serve(service *stubService, method, path, body string) *httptest.ResponseRecorder {
	srv := New(service, monitoring.NewMonitor(), 0)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestMineWindowEndpoint(t *testing.T) {
	rec := serve(&stubService{}, http.MethodPost, "/api/mine/week", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/mine/week status = %d, want 200", rec.Code)
	}

	var c corpus.Corpus
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("response is not a corpus: %v", err)
	}
	if c.Source != models.SourceWeek {
		t.Errorf("corpus source = %q, want week", c.Source)
	}
}

func TestMineWindowEndpointRejectsUnknownWindow(t *testing.T) {
	rec := serve(&stubService{}, http.MethodPost, "/api/mine/decade", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown window", rec.Code)
	}
}

func TestMineAllEndpoint(t *testing.T) {
	t.Run("Partial success is 200", func(t *testing.T) {
		service := &stubService{mineReport: &tracker.MineReport{
			Succeeded: []models.Window{models.WindowWeek, models.WindowMonth},
			Counts:    map[models.Window]int{models.WindowWeek: 10, models.WindowMonth: 12},
			Failed:    map[models.Window]error{models.WindowSixMonth: youtube.ErrQuotaExceeded},
		}}

		rec := serve(service, http.MethodPost, "/api/mine", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 for partial success", rec.Code)
		}

		var resp struct {
			Succeeded []models.Window   `json:"succeeded"`
			Failed    map[string]string `json:"failed"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if len(resp.Succeeded) != 2 {
			t.Errorf("succeeded = %v, want 2 windows", resp.Succeeded)
		}
		if _, ok := resp.Failed["six_month"]; !ok {
			t.Errorf("failed = %v, missing six_month entry", resp.Failed)
		}
	})

	t.Run("Total failure is 502", func(t *testing.T) {
		service := &stubService{mineReport: &tracker.MineReport{
			Counts: map[models.Window]int{},
			Failed: map[models.Window]error{
				models.WindowWeek:     youtube.ErrQuotaExceeded,
				models.WindowMonth:    youtube.ErrQuotaExceeded,
				models.WindowSixMonth: youtube.ErrQuotaExceeded,
			},
		}}

		rec := serve(service, http.MethodPost, "/api/mine", "")
		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502 when every window failed", rec.Code)
		}
	})
}

func TestGetCorpusEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		source string
		err    error
		want   int
	}{
		{"Week", "week", nil, http.StatusOK},
		{"Combined", "combined", nil, http.StatusOK},
		{"Unknown source", "yearly", nil, http.StatusBadRequest},
		{"Not mined", "month", tracker.ErrNoCorpus, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubService{corpusErr: tt.err}, http.MethodGet, "/api/corpus/"+tt.source, "")
			if rec.Code != tt.want {
				t.Errorf("GET /api/corpus/%s status = %d, want %d", tt.source, rec.Code, tt.want)
			}
		})
	}
}

func TestGenerateThemesEndpoint(t *testing.T) {
	themes := []*models.ThemeSuggestion{
		{Title: "Stillness", Rationale: "meditation trend", Cohort: models.Cohort40to50},
	}

	rec := serve(&stubService{themes: themes}, http.MethodPost, "/api/themes",
		`{"source": "combined", "cohort": "40-50"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Themes  []*models.ThemeSuggestion `json:"themes"`
		Emailed bool                      `json:"emailed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Themes) != 1 || resp.Themes[0].Title != "Stillness" {
		t.Errorf("themes = %v", resp.Themes)
	}
	if resp.Emailed {
		t.Error("emailed = true without a configured digest")
	}
}

func TestGenerateThemesEndpointValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Missing fields", `{}`},
		{"Unknown source", `{"source": "yearly", "cohort": "40-50"}`},
		{"Unknown cohort", `{"source": "week", "cohort": "teens"}`},
		{"Malformed JSON", `{"source": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubService{}, http.MethodPost, "/api/themes", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGenerateThemesEndpointEmail(t *testing.T) {
	themes := []*models.ThemeSuggestion{{Title: "T", Rationale: "R", Cohort: models.Cohort30to40}}

	t.Run("Digest sent", func(t *testing.T) {
		service := &stubService{themes: themes, digestOn: true}
		rec := serve(service, http.MethodPost, "/api/themes",
			`{"source": "week", "cohort": "30-40", "email": true}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if service.digestCalls != 1 {
			t.Errorf("digest sent %d times, want 1", service.digestCalls)
		}
		if !strings.Contains(rec.Body.String(), `"emailed":true`) {
			t.Errorf("body = %s, want emailed true", rec.Body.String())
		}
	})

	t.Run("Digest failure does not fail the request", func(t *testing.T) {
		service := &stubService{themes: themes, digestOn: true, digestErr: fmt.Errorf("smtp down")}
		rec := serve(service, http.MethodPost, "/api/themes",
			`{"source": "week", "cohort": "30-40", "email": true}`)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200 even when the digest fails", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"emailed":false`) {
			t.Errorf("body = %s, want emailed false", rec.Body.String())
		}
	})
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"No corpus", tracker.ErrNoCorpus, http.StatusNotFound},
		{"Empty corpus", prompt.ErrEmptyCorpus, http.StatusUnprocessableEntity},
		{"Generation in progress", tracker.ErrGenerationInProgress, http.StatusConflict},
		{"Quota", fmt.Errorf("%w: search", youtube.ErrQuotaExceeded), http.StatusTooManyRequests},
		{"Auth", youtube.ErrAuthentication, http.StatusBadGateway},
		{"Mining failed", youtube.ErrMiningFailed, http.StatusBadGateway},
		{"Generation failed", ai.ErrGenerationFailed, http.StatusBadGateway},
		{"No themes", ai.ErrNoThemesGenerated, http.StatusBadGateway},
		{"Unclassified", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubService{generateErr: tt.err}, http.MethodPost, "/api/themes",
				`{"source": "week", "cohort": "40-50"}`)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d for %v", rec.Code, tt.want, tt.err)
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	monitor := monitoring.NewMonitor()

	srv := New(&stubService{}, monitor, 0)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200 for a fresh monitor", rec.Code)
	}

	monitor.RecordCriticalFailure(fmt.Errorf("api down"), time.Second)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /health status = %d, want 503 after a critical failure", rec.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	rec := serve(&stubService{}, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /status status = %d, want 200", rec.Code)
	}

	var resp struct {
		Status       string          `json:"status"`
		MinedWindows []models.Window `json:"mined_windows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.MinedWindows) != 1 || resp.MinedWindows[0] != models.WindowWeek {
		t.Errorf("mined_windows = %v, want [week]", resp.MinedWindows)
	}
}
