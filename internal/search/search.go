// Package search discovers candidate PDF URLs for a ticker and fiscal
// quarter by scraping a web search provider's result page.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/fiscal"
	"github.com/finquill/finchat/internal/metrics"
	"github.com/finquill/finchat/pkg/flog"
)

const browserUserAgent = "Mozilla/5.0 (X11; Windows; Windows x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/103.0.5060.114 Safari/537.36"

type Provider interface {
	// FindDocuments never fails outright: a ticker whose search errors
	// simply contributes zero URLs.
	FindDocuments(ctx context.Context, tickers []string, quarter fiscal.Quarter) []string
}

type GoogleSearch struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	skip    int
	take    int
	logger  *flog.Logger
}

func NewGoogleSearch(client *http.Client) *GoogleSearch {
	return &GoogleSearch{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(config.SearchQueryPause), 1),
		baseURL: "https://www.google.com/search",
		skip:    config.SearchSkipResults,
		take:    config.SearchMaxResults,
		logger:  flog.NewLogger("Document Search"),
	}
}

func (g *GoogleSearch) FindDocuments(ctx context.Context, tickers []string, quarter fiscal.Quarter) []string {
	var results []string

	for _, ticker := range tickers {
		if err := g.limiter.Wait(ctx); err != nil {
			g.logger.Warn("Search pacing interrupted", "error", err)
			return results
		}

		query := fmt.Sprintf("%s %s filetype:pdf", ticker, quarter.Label())
		g.logger.Info("Searching for documents", "query", query)

		urls, err := g.search(ctx, query)
		if err != nil {
			g.logger.Error("Search failed, skipping ticker", "ticker", ticker, "error", err)
			continue
		}

		urls = window(urls, g.skip, g.take)
		metrics.CountDiscoveredDocuments(ticker, len(urls))
		results = append(results, urls...)
	}

	g.logger.Info("Document discovery finished", "quarter", quarter.Label(), "found", len(results))
	return results
}

func (g *GoogleSearch) search(ctx context.Context, query string) ([]string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("web_search", time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search provider returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	return extractResultLinks(doc), nil
}

// extractResultLinks pulls organic result URLs out of the page. The provider
// wraps results as /url?q=<target> redirects; direct anchors appear when the
// page is served in its plain variant.
func extractResultLinks(doc *goquery.Document) []string {
	var links []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")

		if strings.HasPrefix(href, "/url?") {
			if parsed, err := url.Parse(href); err == nil {
				href = parsed.Query().Get("q")
			}
		}

		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			return
		}
		if parsed, err := url.Parse(href); err != nil || strings.Contains(parsed.Host, "google.") {
			return
		}
		if seen[href] {
			return
		}
		seen[href] = true
		links = append(links, href)
	})

	return links
}

// window applies the fixed pagination policy: drop the first skip results,
// keep at most take of what remains.
func window(urls []string, skip int, take int) []string {
	if skip >= len(urls) {
		return nil
	}
	urls = urls[skip:]
	if len(urls) > take {
		urls = urls[:take]
	}
	return urls
}
