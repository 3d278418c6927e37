package cds

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txjs-cli/internal/phrase"
)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient(srv.URL+"/", "tok", "sec").WithHTTPClient(srv.Client())
	c.PollInterval = time.Millisecond
	c.MaxPollInterval = 4 * time.Millisecond
	return c
}

func TestPushSendsPayload(t *testing.T) {
	t.Parallel()

	records := []phrase.Record{
		{
			Key:         "Text 1::foo",
			String:      "Text 1",
			Context:     "foo,bar",
			Comment:     "comment",
			CharLimit:   10,
			Tags:        []string{"tag1", "tag2"},
			Occurrences: []string{"src/app.js"},
		},
		{Key: "Bye", String: "Bye"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/content", r.URL.Path)
		assert.Equal(t, "Bearer tok:sec", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		data := body["data"].(map[string]any)
		first := data["Text 1::foo"].(map[string]any)
		assert.Equal(t, "Text 1", first["string"])
		meta := first["meta"].(map[string]any)
		assert.Equal(t, []any{"foo", "bar"}, meta["context"])
		assert.Equal(t, "comment", meta["developer_comment"])
		assert.EqualValues(t, 10, meta["character_limit"])
		assert.Equal(t, []any{"tag1", "tag2"}, meta["tags"])
		assert.Equal(t, []any{"src/app.js"}, meta["occurrences"])

		second := data["Bye"].(map[string]any)
		assert.Empty(t, second["meta"])

		jobMeta := body["meta"].(map[string]any)
		assert.Equal(t, true, jobMeta["purge"])
		assert.Equal(t, true, jobMeta["keep_translations"])
		assert.Equal(t, false, jobMeta["dry_run"])

		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"data":{"id":"job-1","links":{"job":"/jobs/content/job-1"}}}`)
	}))
	defer srv.Close()

	id, err := newTestClient(srv).Push(context.Background(), records, PushOptions{Purge: true, KeepTranslations: true})
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)
}

func TestPushUploadError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"errors":[{"detail":"bad token"}]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Push(context.Background(), nil, PushOptions{})
	var ue *UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusForbidden, ue.StatusCode)
	assert.Contains(t, ue.Body, "bad token")
}

func TestPushIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Push(context.Background(), nil, PushOptions{})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestWaitJobCompleted(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/content/job-1", r.URL.Path)
		switch polls.Add(1) {
		case 1:
			_, _ = io.WriteString(w, `{"data":{"status":"pending"}}`)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 3:
			_, _ = io.WriteString(w, `{"data":{"status":"processing"}}`)
		default:
			_, _ = io.WriteString(w, `{"data":{"status":"completed","details":{"created":2,"updated":1,"skipped":3,"deleted":0,"failed":0},"errors":[]}}`)
		}
	}))
	defer srv.Close()

	status, err := newTestClient(srv).WaitJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status.Status)
	assert.Equal(t, JobDetails{Created: 2, Updated: 1, Skipped: 3}, status.Details)
	assert.EqualValues(t, 4, polls.Load())
}

func TestWaitJobFailed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"status":"failed","details":{"failed":1},"errors":[{"title":"Invalid","detail":"bad key"}]}}`)
	}))
	defer srv.Close()

	status, err := newTestClient(srv).WaitJob(context.Background(), "job-2")
	require.ErrorIs(t, err, ErrJobFailed)
	assert.Equal(t, 1, status.Details.Failed)
	require.Len(t, status.Errors, 1)
	assert.Equal(t, "Invalid: bad key", status.Errors[0].String())
}

func TestWaitJobGivesUpOnClientError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).WaitJob(context.Background(), "missing")
	var ue *UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusNotFound, ue.StatusCode)
}

func TestWaitJobHonoursContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"status":"pending"}}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv).WaitJob(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClientDefaultHost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultHost, NewClient("", "a", "b").host)
}
