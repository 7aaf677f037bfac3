// Package philosophy carries the fixed interpretive framework every theme
// request is grounded in. The source document is the school's public web page,
// embedded at build time; the cleaned text is extracted once at startup and
// treated as an immutable constant afterwards.
package philosophy

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

//go:embed context.html
var rawHTML string

var (
	once sync.Once
	text string
	err  error
)

// Load returns the cleaned philosophical context text. The HTML is parsed on
// first call only; subsequent calls return the cached result.
func Load() (string, error) {
	once.Do(func() {
		text, err = extract(rawHTML)
	})
	return text, err
}

// extract strips markup down to readable text: scripts and styles removed,
// lines trimmed, blank runs collapsed.
func extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse context document: %w", err)
	}

	doc.Find("script, style").Remove()
	raw := doc.Find("body").Text()

	var chunks []string
	for _, line := range strings.Split(raw, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("context document contained no text")
	}
	return strings.Join(chunks, "\n"), nil
}
