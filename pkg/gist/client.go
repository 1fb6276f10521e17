package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"policygen/internal/constant"
	"policygen/pkg/wizard"
)

const defaultBaseURL = "https://api.github.com"

// Client publishes generated documents as secret GitHub Gists.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		c.httpClient = oauth2.NewClient(context.Background(), src)
		c.httpClient.Timeout = 30 * time.Second
	}
	return c
}

type gistFile struct {
	Content string `json:"content"`
}

type createRequest struct {
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	Files       map[string]gistFile `json:"files"`
}

type createResponse struct {
	HTMLURL string `json:"html_url"`
}

// FileName is the name a document gets in gists and downloads.
func FileName(kind wizard.DocumentKind) string {
	return string(kind) + ".md"
}

// Create publishes content as a secret gist and returns its html_url.
func (c *Client) Create(ctx context.Context, kind wizard.DocumentKind, content string) (string, error) {
	if c.httpClient == nil {
		return "", fmt.Errorf("%w: github token not configured", wizard.ErrUpstreamUnavailable)
	}

	payload, err := json.Marshal(createRequest{
		Description: constant.GistDescriptionPrefix + c.now().Format(time.RFC3339),
		Public:      false,
		Files:       map[string]gistFile{FileName(kind): {Content: content}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gist: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/gists", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: github status %d: %s", wizard.ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	var out createResponse
	if err := json.Unmarshal(body, &out); err != nil || out.HTMLURL == "" {
		return "", fmt.Errorf("%w: unexpected gist response", wizard.ErrUpstreamUnavailable)
	}
	return out.HTMLURL, nil
}
