package scripture

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBibleAPIURL = "https://bible-api.com"

// BibleAPIClient fetches chapters from bible-api.com.
// API docs: https://bible-api.com/
type BibleAPIClient struct {
	httpClient  *http.Client
	baseURL     string
	translation string
}

// NewBibleAPIClient creates a client. An empty translation uses the API default.
func NewBibleAPIClient(baseURL, translation string, timeout time.Duration) *BibleAPIClient {
	if baseURL == "" {
		baseURL = DefaultBibleAPIURL
	}
	return &BibleAPIClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		translation: translation,
	}
}

// FetchChapter fetches one chapter.
func (c *BibleAPIClient) FetchChapter(ctx context.Context, book string, chapter int) (*ChapterData, error) {
	book = strings.TrimSpace(book)
	if book == "" || chapter < 1 {
		return nil, fmt.Errorf("invalid chapter reference %q %d", book, chapter)
	}

	endpoint := fmt.Sprintf("%s/%s+%d", c.baseURL, url.PathEscape(book), chapter)
	if c.translation != "" {
		endpoint += "?translation=" + url.QueryEscape(c.translation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "bible-study/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch chapter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %d: %w: %w", book, chapter, ErrChapterNotFound, &HTTPError{StatusCode: resp.StatusCode})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	var data ChapterData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	for i := range data.Verses {
		data.Verses[i].Text = normalizeVerseText(data.Verses[i].Text)
	}

	return &data, nil
}
