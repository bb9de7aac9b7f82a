// Package knowledge answers encyclopedic questions from the Wikipedia REST API.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

// DefaultEndpoint is the page summary endpoint; the title is appended.
const DefaultEndpoint = "https://en.wikipedia.org/api/rest_v1/page/summary/"

// ErrNoSummary is returned for missing and disambiguation pages.
var ErrNoSummary = errors.New("no summary available")

// WikipediaClient implements ports.KnowledgeSource.
type WikipediaClient struct {
	endpoint   string
	httpClient *http.Client
	sentences  int
}

// NewWikipediaClient builds a client. An empty endpoint uses DefaultEndpoint.
func NewWikipediaClient(endpoint string, client *http.Client) *WikipediaClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultHTTPClientTimeout}
	}
	return &WikipediaClient{endpoint: endpoint, httpClient: client, sentences: 2}
}

type summaryResponse struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Summary returns the first two sentences of the page for topic.
func (c *WikipediaClient) Summary(ctx context.Context, topic string) (string, error) {
	title := pageTitle(topic)
	if title == "" {
		return "", ErrNoSummary
	}
	endpoint := strings.TrimSuffix(c.endpoint, "/") + "/" + url.PathEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", "aura-go/1 (voice assistant)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNoSummary
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("wikipedia: %s", resp.Status)
	}

	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		return "", err
	}
	var parsed summaryResponse
	if err := json.Unmarshal(body.Bytes(), &parsed); err != nil {
		return "", fmt.Errorf("wikipedia: decode summary: %w", err)
	}
	if parsed.Type == "disambiguation" || strings.TrimSpace(parsed.Extract) == "" {
		return "", ErrNoSummary
	}
	return firstSentences(parsed.Extract, c.sentences), nil
}

// pageTitle turns a spoken topic into a page title: words joined by underscores,
// first letter upper-cased.
func pageTitle(topic string) string {
	words := strings.Fields(topic)
	if len(words) == 0 {
		return ""
	}
	title := strings.Join(words, "_")
	return strings.ToUpper(title[:1]) + title[1:]
}

func firstSentences(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	count := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '.' && text[i] != '!' && text[i] != '?' {
			continue
		}
		if i+1 < len(text) && text[i+1] != ' ' {
			continue
		}
		count++
		if count == n {
			return text[:i+1]
		}
	}
	return text
}

var _ ports.KnowledgeSource = (*WikipediaClient)(nil)
