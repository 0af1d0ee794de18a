package bing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookmarks/internal/domain"
	"bookmarks/internal/logger"
)

// UpstreamError wraps a failure talking to the image archive
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("bing %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Client fetches the image of the day from the Bing HPImageArchive API
type Client struct {
	HTTPClient *http.Client
	apiURL     string
	baseURL    string
	logger     *logger.Logger
}

// NewClient creates a new image archive client. Relative image urls in the
// response are resolved against baseURL.
func NewClient(apiURL, baseURL string, log *logger.Logger) *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiURL:  apiURL,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  log,
	}
}

type archiveResponse struct {
	Images []struct {
		URL       string `json:"url"`
		Copyright string `json:"copyright"`
		Title     string `json:"title"`
	} `json:"images"`
}

// ImageOfTheDay returns today's image
func (c *Client) ImageOfTheDay(ctx context.Context) (*domain.Image, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return nil, &UpstreamError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &UpstreamError{Op: "read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Op: "request", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var archive archiveResponse
	if err := json.Unmarshal(body, &archive); err != nil {
		return nil, &UpstreamError{Op: "decode response", Err: err}
	}
	if len(archive.Images) == 0 || archive.Images[0].URL == "" {
		return nil, &UpstreamError{Op: "decode response", Err: fmt.Errorf("no images in response")}
	}

	first := archive.Images[0]
	img := &domain.Image{
		URL:       c.resolve(first.URL),
		Copyright: first.Copyright,
		Title:     first.Title,
	}

	c.logger.Debug("Fetched image of the day in %v", time.Since(start))
	return img, nil
}

func (c *Client) resolve(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return c.baseURL + u
}
