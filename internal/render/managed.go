package render

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"

	"videostudio/models"
)

const renderJobsTable = "render_jobs"

// Statuses the managed render service writes to its job table.
const (
	managedStatusPending    = "PENDING"
	managedStatusProcessing = "PROCESSING"
	managedStatusCompleted  = "COMPLETED"
	managedStatusFailed     = "FAILED"
)

// renderJobRow maps to the managed service's render_jobs table. Pointer fields
// are nullable columns; the input payload is stored as raw JSON.
type renderJobRow struct {
	JobID        string          `json:"job_id"`
	Status       string          `json:"status"`
	Progress     *float64        `json:"progress,omitempty"`
	InputPayload json.RawMessage `json:"input_payload,omitempty"`
	OutputURL    *string         `json:"output_url,omitempty"`
	OutputSize   *int64          `json:"output_size,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    *time.Time      `json:"created_at,omitempty"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}

// ManagedBackend submits jobs to the managed async render service by inserting
// into its job table; the service's own workers pick jobs up and write status,
// progress, and output back to the same row, which PollProgress reads.
type ManagedBackend struct {
	client *postgrest.Client
	log    *logrus.Logger
}

// NewManagedBackend connects to the managed service's PostgREST endpoint.
func NewManagedBackend(serviceURL, serviceKey string, log *logrus.Logger) (*ManagedBackend, error) {
	client := postgrest.NewClient(serviceURL+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": fmt.Sprintf("Bearer %s", serviceKey),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("initialize managed render client: %w", client.ClientError)
	}
	return &ManagedBackend{client: client, log: log}, nil
}

// FirstPollDelay implements Backend. The job row exists as soon as Submit
// returns, so polling can start immediately.
func (b *ManagedBackend) FirstPollDelay() time.Duration {
	return 0
}

// Submit inserts a pending job row carrying the composition payload.
func (b *ManagedBackend) Submit(ctx context.Context, input models.RenderInput) (string, string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", "", fmt.Errorf("marshal render input: %w", err)
	}

	row := renderJobRow{
		JobID:        uuid.NewString(),
		Status:       managedStatusPending,
		InputPayload: payload,
	}

	var results []renderJobRow
	if _, err := b.client.From(renderJobsTable).Insert(row, false, "representation", "", "").ExecuteTo(&results); err != nil {
		return "", "", fmt.Errorf("insert render job record: %w", err)
	}
	if len(results) == 0 {
		return "", "", fmt.Errorf("no record returned after inserting render job %s", row.JobID)
	}

	b.log.WithField("job_id", results[0].JobID).Debug("Managed render job enqueued")
	return results[0].JobID, "", nil
}

// PollProgress reads the job row and maps its status onto the discriminated
// poll result.
func (b *ManagedBackend) PollProgress(ctx context.Context, jobID, hint string) (PollResult, error) {
	var rows []renderJobRow
	if _, err := b.client.From(renderJobsTable).Select("*", "", false).Eq("job_id", jobID).Limit(1, "").ExecuteTo(&rows); err != nil {
		return PollResult{}, fmt.Errorf("query render job %s: %w", jobID, err)
	}
	if len(rows) == 0 {
		return PollResult{}, fmt.Errorf("render job %s not found", jobID)
	}

	row := rows[0]
	switch row.Status {
	case managedStatusCompleted:
		result := PollResult{Type: PollDone}
		if row.OutputURL != nil {
			result.URL = *row.OutputURL
		}
		if row.OutputSize != nil {
			result.Size = *row.OutputSize
		}
		return result, nil
	case managedStatusFailed:
		message := "render job failed"
		if row.ErrorMessage != nil && *row.ErrorMessage != "" {
			message = *row.ErrorMessage
		}
		return PollResult{Type: PollError, Message: message}, nil
	case managedStatusPending, managedStatusProcessing:
		result := PollResult{Type: PollProgress}
		if row.Progress != nil {
			result.Progress = *row.Progress
		}
		return result, nil
	}
	return PollResult{}, fmt.Errorf("render job %s reported unknown status %q", jobID, row.Status)
}
