package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Config holds the Jira connection settings.
type Config struct {
	BaseURL string

	// Personal Access Token (preferred)
	Token string

	// Basic auth fallback
	Username string
	Password string
}

// AuthMethod is the kind of authentication a client sends.
type AuthMethod string

const (
	AuthMethodToken AuthMethod = "token"
	AuthMethodBasic AuthMethod = "basic"
	AuthMethodNone  AuthMethod = "none"
)

// Client is a thin HTTP client for the Jira Server/DC REST API v2.
// It retries with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	config     Config
	authMethod AuthMethod
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a Jira client. A token authenticates with a Bearer
// header; otherwise username and password are sent as basic auth.
func NewClient(ctx context.Context, config Config) *Client {
	var httpClient *http.Client
	var authMethod AuthMethod

	switch {
	case config.Token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token})
		httpClient = oauth2.NewClient(ctx, ts)
		authMethod = AuthMethodToken
	case config.Username != "":
		httpClient = &http.Client{}
		authMethod = AuthMethodBasic
	default:
		httpClient = &http.Client{}
		authMethod = AuthMethodNone
	}
	httpClient.Timeout = 30 * time.Second

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		config:     config,
		authMethod: authMethod,
		httpClient: httpClient,
		maxRetries: 3,
	}
}

// AuthMethod returns the authentication method in use.
func (c *Client) AuthMethod() AuthMethod {
	return c.authMethod
}

// BrowseURL is the web link of an issue.
func (c *Client) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + key
}

// FindIssue fetches one issue by key.
func (c *Client) FindIssue(ctx context.Context, key string) (*Issue, error) {
	var issue Issue
	if err := c.do(ctx, http.MethodGet, "/rest/api/2/issue/"+url.PathEscape(key), nil, &issue); err != nil {
		return nil, fmt.Errorf("finding issue %s: %w", key, err)
	}
	return &issue, nil
}

// CreateIssue creates an issue and returns its id and key.
func (c *Client) CreateIssue(ctx context.Context, issue *Issue) (*Issue, error) {
	var created Issue
	if err := c.do(ctx, http.MethodPost, "/rest/api/2/issue", issue, &created); err != nil {
		return nil, fmt.Errorf("creating issue %q: %w", issue.Fields.Summary, err)
	}
	return &created, nil
}

// LinkIssues creates an issue link.
func (c *Client) LinkIssues(ctx context.Context, link IssueLink) error {
	if err := c.do(ctx, http.MethodPost, "/rest/api/2/issueLink", link, nil); err != nil {
		return fmt.Errorf("linking %s to %s: %w", link.InwardIssue.Key, link.OutwardIssue.Key, err)
	}
	return nil
}

// ResolveIssue moves an issue through the transition named transition.
func (c *Client) ResolveIssue(ctx context.Context, key, transition string) error {
	path := "/rest/api/2/issue/" + url.PathEscape(key) + "/transitions"

	var resp TransitionsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return fmt.Errorf("fetching transitions for %s: %w", key, err)
	}

	var names []string
	for _, t := range resp.Transitions {
		if strings.EqualFold(t.Name, transition) {
			body := map[string]interface{}{
				"transition": map[string]string{"id": t.ID},
			}
			if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
				return fmt.Errorf("transitioning %s to %q: %w", key, transition, err)
			}
			return nil
		}
		names = append(names, t.Name)
	}
	return fmt.Errorf("issue %s has no transition %q (available: %s)", key, transition, strings.Join(names, ", "))
}

// SearchIssues returns every issue matched by jql, following pagination.
func (c *Client) SearchIssues(ctx context.Context, jql string, fields []string) ([]Issue, error) {
	const pageSize = 100

	var issues []Issue
	for startAt := 0; ; {
		body := map[string]interface{}{
			"jql":        jql,
			"fields":     fields,
			"startAt":    startAt,
			"maxResults": pageSize,
		}

		var page SearchResponse
		if err := c.do(ctx, http.MethodPost, "/rest/api/2/search", body, &page); err != nil {
			return nil, fmt.Errorf("searching issues: %w", err)
		}
		issues = append(issues, page.Issues...)

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			return issues, nil
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if data != nil {
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.authMethod == AuthMethodBasic {
			req.SetBasicAuth(c.config.Username, c.config.Password)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429) on %s %s", method, path)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfterDuration(resp, attempt)):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("authentication failed (401): check your credentials for %s", c.baseURL)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var jiraErr ErrorResponse
			if json.Unmarshal(respBody, &jiraErr) == nil && (len(jiraErr.ErrorMessages) > 0 || len(jiraErr.Errors) > 0) {
				return fmt.Errorf("jira API error (%d) on %s %s: %s %v",
					resp.StatusCode, method, path, strings.Join(jiraErr.ErrorMessages, "; "), jiraErr.Errors)
			}
			return fmt.Errorf("unexpected status %d on %s %s: %s", resp.StatusCode, method, path, string(respBody))
		}

		if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
		}
		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// retryAfterDuration honours Retry-After, falling back to exponential backoff.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
