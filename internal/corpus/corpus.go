// Package corpus holds the ranked, deduplicated collections of mined videos.
// A Corpus is never mutated in place; mining and combining always build a new
// one, so callers can hold references across requests safely.
package corpus

import (
	"sort"

	"theme-tracker/internal/models"
)

type Corpus struct {
	Source  models.SourceSelector `json:"source"`
	Records []*models.VideoRecord `json:"records"`
}

// New builds a corpus from freshly mined records: duplicates are collapsed by
// video ID (keeping the highest observed view count) and the result is ordered
// by descending view count, ties broken by newer publish time.
func New(source models.SourceSelector, records []*models.VideoRecord) *Corpus {
	return &Corpus{Source: source, Records: rank(records)}
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// Top returns up to n leading records. The returned slice aliases the corpus
// and must be treated as read-only.
func (c *Corpus) Top(n int) []*models.VideoRecord {
	if c == nil || n <= 0 {
		return nil
	}
	if n > len(c.Records) {
		n = len(c.Records)
	}
	return c.Records[:n]
}

// Combine merges per-window corpora into one combined corpus. A video seen in
// several windows appears once, with the maximum view count observed across
// windows; the category is identical in every window because categorization is
// deterministic. Inputs are left untouched.
func Combine(corpora ...*Corpus) *Corpus {
	var all []*models.VideoRecord
	for _, c := range corpora {
		if c == nil {
			continue
		}
		all = append(all, c.Records...)
	}
	return &Corpus{Source: models.SourceCombined, Records: rank(all)}
}

// rank deduplicates by ID and applies the ranking rule. Input records are not
// modified: when duplicates merge, the kept record is a copy.
func rank(records []*models.VideoRecord) []*models.VideoRecord {
	byID := make(map[string]*models.VideoRecord, len(records))
	order := make([]string, 0, len(records))

	for _, rec := range records {
		if rec == nil {
			continue
		}
		existing, seen := byID[rec.ID]
		if !seen {
			byID[rec.ID] = rec
			order = append(order, rec.ID)
			continue
		}
		if rec.ViewCount > existing.ViewCount {
			merged := *rec
			byID[rec.ID] = &merged
		}
	}

	out := make([]*models.VideoRecord, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ViewCount != out[j].ViewCount {
			return out[i].ViewCount > out[j].ViewCount
		}
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}
