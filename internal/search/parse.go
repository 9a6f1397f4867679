package search

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseResults extracts ranked hits from a DuckDuckGo HTML results page,
// preserving page order and stopping at limit.
func parseResults(r io.Reader, limit int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var results []Result
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		resultURL := resolveResultURL(href)
		if resultURL == "" {
			return true
		}

		results = append(results, Result{
			Title: strings.TrimSpace(link.Text()),
			URL:   resultURL,
			Desc:  strings.TrimSpace(sel.Find("a.result__snippet").First().Text()),
		})
		return len(results) < limit
	})

	return results, nil
}

// resolveResultURL unwraps DuckDuckGo's redirect links (the uddg parameter)
// and drops internal or relative links that are not real hits.
func resolveResultURL(href string) string {
	if i := strings.Index(href, "uddg="); i >= 0 {
		raw := href[i+len("uddg="):]
		if j := strings.IndexByte(raw, '&'); j >= 0 {
			raw = raw[:j]
		}
		if decoded, err := url.QueryUnescape(raw); err == nil {
			return decoded
		}
		return ""
	}
	if strings.Contains(href, "duckduckgo.com") || strings.HasPrefix(href, "/") {
		return ""
	}
	return href
}
