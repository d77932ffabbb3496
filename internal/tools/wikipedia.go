// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// wikipediaAPIBase is the MediaWiki action API endpoint. Declared as a var
// so tests can substitute an httptest server.
var wikipediaAPIBase = "https://en.wikipedia.org/w/api.php"

const (
	defaultWikipediaTopK     = 1
	defaultWikipediaMaxChars = 200

	noWikipediaResult = "No good Wikipedia Search Result was found"
)

// Wikipedia looks up page introductions for a search query.
type Wikipedia struct {
	Client   *http.Client
	TopK     int
	MaxChars int
}

// NewWikipedia returns a Wikipedia tool using client and cfg, with defaults
// for unset limits.
func NewWikipedia(client *http.Client, cfg types.WikipediaConfig) *Wikipedia {
	w := &Wikipedia{Client: client, TopK: cfg.TopK, MaxChars: cfg.MaxChars}
	if w.TopK <= 0 {
		w.TopK = defaultWikipediaTopK
	}
	if w.MaxChars <= 0 {
		w.MaxChars = defaultWikipediaMaxChars
	}
	return w
}

func (w *Wikipedia) Name() string { return "wikipedia" }

func (w *Wikipedia) Description() string {
	return "A wrapper around Wikipedia. Useful for when you need to answer general questions about " +
		"people, places, companies, facts, historical events, or other subjects. Input should be a search query."
}

// Run searches Wikipedia and returns "Page: <title>\nSummary: <intro>" blocks
// for the top results, truncated to MaxChars characters.
func (w *Wikipedia) Run(ctx context.Context, input string) (string, error) {
	q := strings.TrimSpace(input)
	if q == "" {
		return "", fmt.Errorf("empty Wikipedia query")
	}

	params := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"generator":     {"search"},
		"gsrsearch":     {q},
		"gsrlimit":      {strconv.Itoa(w.TopK)},
		"prop":          {"extracts"},
		"exintro":       {"1"},
		"explaintext":   {"1"},
		"exlimit":       {strconv.Itoa(w.TopK)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wikipediaAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, w.Client, req, 0)
	if err != nil {
		return "", fmt.Errorf("Wikipedia API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Wikipedia API returned HTTP %d", resp.StatusCode)
	}

	var wr wikipediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return "", fmt.Errorf("parsing Wikipedia response: %w", err)
	}

	pages := wr.Query.Pages
	if len(pages) == 0 {
		return noWikipediaResult, nil
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	var blocks []string
	for _, p := range pages {
		if p.Missing || strings.TrimSpace(p.Extract) == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Page: %s\nSummary: %s", p.Title, strings.TrimSpace(p.Extract)))
		if len(blocks) == w.TopK {
			break
		}
	}
	if len(blocks) == 0 {
		return noWikipediaResult, nil
	}

	return truncateRunes(strings.Join(blocks, "\n\n"), w.MaxChars), nil
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// MediaWiki API JSON structures (formatversion=2).
type wikipediaResponse struct {
	Query struct {
		Pages []wikipediaPage `json:"pages"`
	} `json:"query"`
}

type wikipediaPage struct {
	PageID  int    `json:"pageid"`
	Title   string `json:"title"`
	Index   int    `json:"index"`
	Extract string `json:"extract"`
	Missing bool   `json:"missing"`
}
