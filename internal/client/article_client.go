package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// MaxArticleChars caps the article text handed to the generator.
const MaxArticleChars = 5000

// ArticleClient fetches web pages and reduces them to plain text
type ArticleClient struct {
	httpClient *http.Client
	maxChars   int
}

func NewArticleClient() *ArticleClient {
	return &ArticleClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxChars:   MaxArticleChars,
	}
}

// FetchText downloads url and returns its visible text
func (c *ArticleClient) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; RemixBot/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("article fetch returned status %d", resp.StatusCode)
	}

	return ExtractText(resp.Body, c.maxChars)
}

// ExtractText strips markup from an HTML document, collapses whitespace and
// truncates the result to maxChars characters.
func ExtractText(r io.Reader, maxChars int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()

	// pad every element so text from adjacent tags does not run together
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml(" ")
		s.AppendHtml(" ")
	})

	text := strings.Join(strings.Fields(doc.Text()), " ")
	return truncateRunes(text, maxChars), nil
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
