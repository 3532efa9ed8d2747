package polarion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// Kind selects the importer a document is sent to.
type Kind string

const (
	KindTestCase Kind = "testcase"
	KindXUnit    Kind = "xunit"
)

// Job statuses reported by the import queue.
const (
	StatusReady   = "READY"
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
)

// DefaultPollInterval is the delay between two import queue checks.
const DefaultPollInterval = 2 * time.Second

// Client uploads documents to the Polarion importer.
type Client struct {
	baseURL      string
	username     string
	password     string
	httpClient   *http.Client
	PollInterval time.Duration
	Logger       *slog.Logger
}

// NewClient creates a client for the importer under baseURL, which is the
// Polarion root such as https://polarion.example.com/polarion.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		username:     username,
		password:     password,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		PollInterval: DefaultPollInterval,
	}
}

type importResponse struct {
	Files map[string]struct {
		JobIDs []int64 `json:"job-ids"`
	} `json:"files"`
}

type queueResponse struct {
	Jobs []struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	} `json:"jobs"`
}

// Upload submits document to the kind importer and waits for the import
// job to succeed. There is no deadline; cancel ctx to stop waiting.
func (c *Client) Upload(ctx context.Context, kind Kind, document []byte) error {
	jobID, err := c.submit(ctx, kind, document)
	if err != nil {
		return err
	}
	return c.wait(ctx, kind, jobID)
}

func (c *Client) submit(ctx context.Context, kind Kind, document []byte) (int64, error) {
	name := uuid.NewString() + ".xml"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return 0, fmt.Errorf("creating multipart body: %w", err)
	}
	if _, err := part.Write(document); err != nil {
		return 0, fmt.Errorf("creating multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("creating multipart body: %w", err)
	}

	var resp importResponse
	if err := c.do(ctx, http.MethodPost, "/import/"+string(kind), &body, mw.FormDataContentType(), &resp); err != nil {
		return 0, err
	}

	file, ok := resp.Files[name]
	if !ok || len(file.JobIDs) == 0 {
		return 0, fmt.Errorf("the %s importer did not return a job for %s", kind, name)
	}
	c.logger().Info("import job submitted", "kind", kind, "job", file.JobIDs[0], "file", name)
	return file.JobIDs[0], nil
}

func (c *Client) wait(ctx context.Context, kind Kind, jobID int64) error {
	interval := c.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	path := fmt.Sprintf("/import/%s-queue?jobIds=%s", kind, url.QueryEscape(strconv.FormatInt(jobID, 10)))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		var resp queueResponse
		if err := c.do(ctx, http.MethodGet, path, nil, "", &resp); err != nil {
			return err
		}

		status := ""
		for _, j := range resp.Jobs {
			if j.ID == jobID {
				status = j.Status
			}
		}

		switch status {
		case StatusReady, StatusRunning:
			c.logger().Debug("import job pending", "job", jobID, "status", status)
		case StatusSuccess:
			c.logger().Info("import job completed", "job", jobID)
			return nil
		default:
			return testcase.Preconditionf("unknown status %q for the %s import job %d", status, kind, jobID)
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("authentication failed (401): check your credentials for %s", c.baseURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d on %s %s: %s", resp.StatusCode, method, path, string(data))
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
