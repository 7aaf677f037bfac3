// Package youtube mines trending spirituality videos from the YouTube Data
// API, one corpus per lookback window. Mining is all-or-nothing for a window:
// quota and auth failures surface immediately, transient errors are retried a
// couple of times before giving up.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"theme-tracker/internal/categorize"
	"theme-tracker/internal/corpus"
	"theme-tracker/internal/models"
)

var (
	// ErrQuotaExceeded means the API rejected the request over quota; the
	// window yields no corpus and retrying immediately is pointless.
	ErrQuotaExceeded = errors.New("youtube quota exceeded")

	// ErrAuthentication means the API key was rejected.
	ErrAuthentication = errors.New("youtube authentication failed")

	// ErrMiningFailed wraps transient failures that survived the retry budget.
	ErrMiningFailed = errors.New("mining failed")
)

const (
	maxRetries     = 2
	maxResultsCap  = 50
	initialBackoff = time.Second
)

// api is the slice of the Data API the miner needs; tests substitute a fake.
type api interface {
	search(ctx context.Context, query string, publishedAfter time.Time, maxResults int64) ([]string, error)
	videoDetails(ctx context.Context, ids []string) ([]*yt.Video, error)
}

type Client struct {
	api   api
	sleep func(time.Duration)
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	service, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{api: &serviceAPI{service: service}, sleep: time.Sleep}, nil
}

// MineWindow runs one mining pass: search the window ordered by view count,
// fetch per-video statistics, categorize, and rank. On quota or auth errors no
// partial corpus is returned; sibling windows are unaffected.
func (c *Client) MineWindow(ctx context.Context, window models.Window, query string, maxResults int64) (*corpus.Corpus, error) {
	if !window.Valid() {
		return nil, fmt.Errorf("invalid mining window %q", window)
	}
	if maxResults < 1 || maxResults > maxResultsCap {
		maxResults = maxResultsCap
	}

	publishedAfter := window.Start(time.Now().UTC())

	var ids []string
	err := c.withRetry(ctx, fmt.Sprintf("search %s window", window), func() error {
		var err error
		ids, err = c.api.search(ctx, query, publishedAfter, maxResults)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		log.Printf("No videos found for %s window", window)
		return corpus.New(window.Source(), nil), nil
	}

	var items []*yt.Video
	err = c.withRetry(ctx, fmt.Sprintf("fetch statistics for %s window", window), func() error {
		var err error
		items, err = c.api.videoDetails(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	records := buildRecords(items, window)
	log.Printf("Mined %d videos for %s window", len(records), window)
	return corpus.New(window.Source(), records), nil
}

// withRetry runs fn, retrying transient failures with backoff. Quota and auth
// errors are terminal and returned as-is.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := initialBackoff << (attempt - 1)
			log.Printf("Retrying %s after %v (attempt %d/%d)", op, backoff, attempt, maxRetries)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrMiningFailed, ctx.Err())
			default:
			}
			c.sleep(backoff)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if terminal := classifyAPIError(lastErr); terminal != nil {
			return terminal
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrMiningFailed, op, lastErr)
}

// classifyAPIError maps Data API failures onto the mining error taxonomy.
// A nil return means the error is transient and worth retrying.
func classifyAPIError(err error) error {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return nil
	}

	switch gErr.Code {
	case 400:
		for _, item := range gErr.Errors {
			if item.Reason == "keyInvalid" {
				return fmt.Errorf("%w: %w", ErrAuthentication, err)
			}
		}
	case 401:
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	case 403:
		for _, item := range gErr.Errors {
			switch item.Reason {
			case "quotaExceeded", "dailyLimitExceeded", "userRateLimitExceeded", "rateLimitExceeded":
				return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
			}
		}
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	return nil
}

// buildRecords converts API items into categorized records.
func buildRecords(items []*yt.Video, window models.Window) []*models.VideoRecord {
	records := make([]*models.VideoRecord, 0, len(items))
	for _, item := range items {
		if item == nil || item.Snippet == nil {
			continue
		}

		rec := &models.VideoRecord{
			ID:           item.Id,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ChannelTitle: item.Snippet.ChannelTitle,
			URL:          fmt.Sprintf("https://www.youtube.com/watch?v=%s", item.Id),
			Window:       window,
			Category:     categorize.Categorize(item.Snippet.Title, item.Snippet.Description),
		}

		if publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			rec.PublishedAt = publishedAt
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			rec.Thumbnail = item.Snippet.Thumbnails.High.Url
		}
		if item.Statistics != nil {
			rec.ViewCount = int64(item.Statistics.ViewCount)
			rec.LikeCount = int64(item.Statistics.LikeCount)
			rec.CommentCount = int64(item.Statistics.CommentCount)
		}

		records = append(records, rec)
	}
	return records
}

// serviceAPI is the real Data API binding.
type serviceAPI struct {
	service *yt.Service
}

func (s *serviceAPI) search(ctx context.Context, query string, publishedAfter time.Time, maxResults int64) ([]string, error) {
	call := s.service.Search.List([]string{"id", "snippet"}).
		Q(query).
		Type("video").
		Order("viewCount").
		PublishedAfter(publishedAfter.Format(time.RFC3339)).
		MaxResults(maxResults).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	var ids []string
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	return ids, nil
}

func (s *serviceAPI) videoDetails(ctx context.Context, ids []string) ([]*yt.Video, error) {
	call := s.service.Videos.List([]string{"snippet", "statistics"}).
		Id(strings.Join(ids, ",")).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("videos request failed: %w", err)
	}
	return resp.Items, nil
}
