package models

import (
	"fmt"
	"time"
)

// Window is one of the fixed lookback periods a mining pass is bounded by.
type Window string

const (
	WindowWeek     Window = "week"
	WindowMonth    Window = "month"
	WindowSixMonth Window = "six_month"
)

// AllWindows returns the mining windows in their fixed display order.
func AllWindows() []Window {
	return []Window{WindowWeek, WindowMonth, WindowSixMonth}
}

func (w Window) Valid() bool {
	switch w {
	case WindowWeek, WindowMonth, WindowSixMonth:
		return true
	}
	return false
}

// Lookback returns the length of the window.
func (w Window) Lookback() time.Duration {
	switch w {
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	case WindowSixMonth:
		return 180 * 24 * time.Hour
	}
	return 0
}

// Start returns the earliest publish time included in the window relative to now.
func (w Window) Start(now time.Time) time.Time {
	return now.Add(-w.Lookback())
}

func (w Window) Label() string {
	switch w {
	case WindowWeek:
		return "Last Week"
	case WindowMonth:
		return "Last Month"
	case WindowSixMonth:
		return "Last 6 Months"
	}
	return string(w)
}

// Source returns the selector that addresses this window's corpus.
func (w Window) Source() SourceSelector {
	return SourceSelector(w)
}

func ParseWindow(s string) (Window, error) {
	w := Window(s)
	if !w.Valid() {
		return "", fmt.Errorf("unknown window %q", s)
	}
	return w, nil
}

// Category is the spiritual-domain label assigned to a mined video.
type Category string

// VideoRecord is one mined video. Records are never mutated after the
// categorization pass; merges across windows produce fresh copies.
type VideoRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ChannelTitle string    `json:"channel_title"`
	PublishedAt  time.Time `json:"published_at"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	Thumbnail    string    `json:"thumbnail"`
	URL          string    `json:"url"`
	Window       Window    `json:"window"`
	Category     Category  `json:"category"`
}
