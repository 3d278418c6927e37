// Package cds is the upload side of the push command: it sends phrase
// records to the content delivery service and follows the resulting job.
package cds

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"txjs-cli/internal/phrase"
)

// DefaultHost is the production content delivery service.
const DefaultHost = "https://cds.svc.transifex.net"

// Job statuses reported by the service.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ErrJobFailed is returned by WaitJob when the job ends as failed.
var ErrJobFailed = errors.New("content job failed")

// UploadError is a non-success HTTP response.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("content delivery service returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the content delivery service.
type Client struct {
	host       string
	token      string
	secret     string
	httpClient *http.Client

	// PollInterval is the first wait between job polls; it doubles up to
	// MaxPollInterval.
	PollInterval    time.Duration
	MaxPollInterval time.Duration
}

// NewClient creates a client. An empty host selects DefaultHost.
func NewClient(host, token, secret string) *Client {
	if host == "" {
		host = DefaultHost
	}
	return &Client{
		host:   strings.TrimRight(host, "/"),
		token:  token,
		secret: secret,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		PollInterval:    time.Second,
		MaxPollInterval: 8 * time.Second,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// PushOptions are the job-level flags of a push.
type PushOptions struct {
	Purge               bool
	OverrideTags        bool
	OverrideOccurrences bool
	KeepTranslations    bool
	DryRun              bool
}

type pushRequest struct {
	Data map[string]pushString `json:"data"`
	Meta pushMeta              `json:"meta"`
}

type pushString struct {
	String string     `json:"string"`
	Meta   stringMeta `json:"meta"`
}

type stringMeta struct {
	Context          []string `json:"context,omitempty"`
	DeveloperComment string   `json:"developer_comment,omitempty"`
	CharacterLimit   int      `json:"character_limit,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Occurrences      []string `json:"occurrences,omitempty"`
}

type pushMeta struct {
	Purge               bool `json:"purge"`
	OverrideTags        bool `json:"override_tags"`
	OverrideOccurrences bool `json:"override_occurrences"`
	KeepTranslations    bool `json:"keep_translations"`
	DryRun              bool `json:"dry_run"`
}

type pushResponse struct {
	Data struct {
		ID    string `json:"id"`
		Links struct {
			Job string `json:"job"`
		} `json:"links"`
	} `json:"data"`
}

// JobDetails are the per-status counts of a finished job.
type JobDetails struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// JobError is one error entry reported for a job.
type JobError struct {
	Status string `json:"status,omitempty"`
	Code   string `json:"code,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (e JobError) String() string {
	switch {
	case e.Detail != "" && e.Title != "":
		return e.Title + ": " + e.Detail
	case e.Detail != "":
		return e.Detail
	default:
		return e.Title
	}
}

// JobStatus is the state of a content job.
type JobStatus struct {
	Status  string     `json:"status"`
	Details JobDetails `json:"details"`
	Errors  []JobError `json:"errors"`
}

// Done reports whether the job reached a terminal status.
func (s JobStatus) Done() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

type jobResponse struct {
	Data JobStatus `json:"data"`
}

// BuildPayload converts records into the push request body.
func BuildPayload(records []phrase.Record, opts PushOptions) ([]byte, error) {
	req := pushRequest{
		Data: make(map[string]pushString, len(records)),
		Meta: pushMeta{
			Purge:               opts.Purge,
			OverrideTags:        opts.OverrideTags,
			OverrideOccurrences: opts.OverrideOccurrences,
			KeepTranslations:    opts.KeepTranslations,
			DryRun:              opts.DryRun,
		},
	}
	for _, r := range records {
		req.Data[r.Key] = pushString{
			String: r.String,
			Meta: stringMeta{
				Context:          r.Contexts(),
				DeveloperComment: r.Comment,
				CharacterLimit:   r.CharLimit,
				Tags:             r.Tags,
				Occurrences:      r.Occurrences,
			},
		}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal push request: %w", err)
	}
	return body, nil
}

// Push uploads records and returns the id of the content job. The push is
// not retried.
func (c *Client) Push(ctx context.Context, records []phrase.Record, opts PushOptions) (string, error) {
	body, err := BuildPayload(records, opts)
	if err != nil {
		return "", err
	}

	respBody, err := c.do(ctx, http.MethodPost, "/content", body)
	if err != nil {
		return "", err
	}

	var resp pushResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("unmarshal push response: %w", err)
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("push response has no job id")
	}

	log.Debug().Str("job", resp.Data.ID).Int("strings", len(records)).Msg("content pushed")
	return resp.Data.ID, nil
}

// Job fetches the current state of a content job once.
func (c *Client) Job(ctx context.Context, id string) (JobStatus, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/jobs/content/"+id, nil)
	if err != nil {
		return JobStatus{}, err
	}
	var resp jobResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return JobStatus{}, fmt.Errorf("unmarshal job response: %w", err)
	}
	return resp.Data, nil
}

// WaitJob polls a content job until it completes or fails. A failed job
// returns its status together with ErrJobFailed. Server errors while
// polling are retried a few times before giving up.
func (c *Client) WaitJob(ctx context.Context, id string) (JobStatus, error) {
	interval := c.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	maxRetries := 3
	retries := 0

	for {
		status, err := c.Job(ctx, id)
		switch {
		case err == nil:
			retries = 0
			if status.Done() {
				if status.Status == StatusFailed {
					return status, ErrJobFailed
				}
				return status, nil
			}
			log.Debug().Str("job", id).Str("status", status.Status).Msg("waiting for content job")
		case ctx.Err() != nil:
			return JobStatus{}, ctx.Err()
		case retryable(err) && retries < maxRetries:
			retries++
			log.Warn().Err(err).Int("attempt", retries+1).Msg("retrying job status")
		default:
			return JobStatus{}, fmt.Errorf("job %s: %w", id, err)
		}

		select {
		case <-ctx.Done():
			return JobStatus{}, ctx.Err()
		case <-time.After(interval):
		}
		if c.MaxPollInterval > 0 {
			interval = min(interval*2, c.MaxPollInterval)
		}
	}
}

func retryable(err error) bool {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue.StatusCode == http.StatusTooManyRequests || ue.StatusCode >= 500
	}
	return false
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.host+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s:%s", c.token, c.secret))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UploadError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return respBody, nil
}
