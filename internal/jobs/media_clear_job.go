package jobs

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"videostudio/internal/media"
)

// MediaClearJob removes every media item for a user in the background. Rows
// whose remote delete fails stay indexed so a later clear retries them.
type MediaClearJob struct {
	UserID   string
	Pipeline *media.Pipeline
	Log      *logrus.Logger
}

func NewMediaClearJob(userID string, pipeline *media.Pipeline, log *logrus.Logger) *MediaClearJob {
	return &MediaClearJob{UserID: userID, Pipeline: pipeline, Log: log}
}

func (j *MediaClearJob) ID() string {
	return "media-clear:" + j.UserID
}

func (j *MediaClearJob) Execute(ctx context.Context) error {
	removed, failed, err := j.Pipeline.Clear(ctx, j.UserID)
	if err != nil {
		return fmt.Errorf("clear media for user %s: %w", j.UserID, err)
	}
	j.Log.WithFields(logrus.Fields{
		"user_id": j.UserID,
		"removed": removed,
		"failed":  failed,
	}).Info("Media clear finished")
	return nil
}
