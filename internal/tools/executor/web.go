package executor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

const maxPageBytes = 2 << 20 // 2 MiB cap on fetched pages

// WebFetch downloads a page and converts it to readable markdown.
type WebFetch struct {
	Client *http.Client
}

func (t *WebFetch) Name() string        { return "web_fetch" }
func (t *WebFetch) Description() string { return "Fetch a URL and convert it to markdown" }

func (t *WebFetch) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	rawURL, ok := input["url"].(string)
	if !ok || rawURL == "" {
		return NewErrorResult(fmt.Errorf("url parameter required")), nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return NewErrorResult(fmt.Errorf("url must be http or https: %s", rawURL)), nil
	}

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return NewErrorResult(err), nil
	}
	req.Header.Set("User-Agent", "argus/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return NewErrorResult(err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewErrorResult(fmt.Errorf("fetch %s: status %d", parsed.String(), resp.StatusCode)), nil
	}

	doc, err := goquery.NewDocumentFromReader(http.MaxBytesReader(nil, resp.Body, maxPageBytes))
	if err != nil {
		return NewErrorResult(err), nil
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, nav, footer, iframe").Remove()

	converter := md.NewConverter(parsed.Host, true, nil)
	markdown := converter.Convert(doc.Selection)

	return TimedResult(NewSuccessResult(map[string]any{
		"url":     parsed.String(),
		"title":   title,
		"content": markdown,
		"length":  len(markdown),
	}), start), nil
}
