package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"videostudio/models"
)

// syncWarmupDelay gives the synchronous render service time to register a
// freshly submitted job before the first progress query.
const syncWarmupDelay = 3 * time.Second

// SyncServiceBackend talks to the synchronous render service over JSON HTTP.
type SyncServiceBackend struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

// NewSyncServiceBackend creates a backend for the render service at baseURL.
func NewSyncServiceBackend(baseURL string, log *logrus.Logger) *SyncServiceBackend {
	return &SyncServiceBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// FirstPollDelay implements Backend.
func (b *SyncServiceBackend) FirstPollDelay() time.Duration {
	return syncWarmupDelay
}

type submitResponse struct {
	JobID              string `json:"jobId"`
	BucketOrRegionHint string `json:"bucketOrRegionHint,omitempty"`
}

// Submit posts the composition to the render service and returns the assigned
// job id plus the service's storage hint.
func (b *SyncServiceBackend) Submit(ctx context.Context, input models.RenderInput) (string, string, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return "", "", fmt.Errorf("marshal render input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/renders", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("submit render job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("render service rejected submission with status %d: %s", resp.StatusCode, string(payload))
	}

	var parsed submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", fmt.Errorf("decode submit response: %w", err)
	}
	if parsed.JobID == "" {
		return "", "", fmt.Errorf("render service returned no job id")
	}

	b.log.WithField("job_id", parsed.JobID).Debug("Render service accepted submission")
	return parsed.JobID, parsed.BucketOrRegionHint, nil
}

type progressResponse struct {
	Type     string  `json:"type"`
	Progress float64 `json:"progress,omitempty"`
	URL      string  `json:"url,omitempty"`
	Size     int64   `json:"size,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// PollProgress queries the job's progress endpoint and maps the discriminated
// response onto a PollResult.
func (b *SyncServiceBackend) PollProgress(ctx context.Context, jobID, hint string) (PollResult, error) {
	endpoint := fmt.Sprintf("%s/renders/%s/progress", b.baseURL, url.PathEscape(jobID))
	if hint != "" {
		endpoint += "?hint=" + url.QueryEscape(hint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return PollResult{}, fmt.Errorf("create progress request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return PollResult{}, fmt.Errorf("poll render progress: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return PollResult{}, fmt.Errorf("progress query failed with status %d: %s", resp.StatusCode, string(payload))
	}

	var parsed progressResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return PollResult{}, fmt.Errorf("decode progress response: %w", err)
	}

	switch parsed.Type {
	case "progress":
		return PollResult{Type: PollProgress, Progress: parsed.Progress}, nil
	case "done":
		return PollResult{Type: PollDone, URL: parsed.URL, Size: parsed.Size}, nil
	case "error":
		return PollResult{Type: PollError, Message: parsed.Message}, nil
	}
	return PollResult{}, fmt.Errorf("unknown progress result type %q", parsed.Type)
}
