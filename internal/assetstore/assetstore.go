// Package assetstore is the client adapter for the platform's remote object
// store. Uploaded bytes land in a storage bucket under a server-assigned path;
// the asset-store service itself is a black box behind this interface.
package assetstore

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"
)

// UploadResult is the asset store's answer to a successful upload.
type UploadResult struct {
	ID         string `json:"id"`
	ServerPath string `json:"serverPath"`
	Size       int64  `json:"size"`
}

// Client uploads and removes user media objects in the storage bucket.
type Client struct {
	supabase *supa.Client
	bucket   string
	log      *logrus.Logger
}

// New connects to the asset store.
func New(projectURL, serviceKey, bucket string, log *logrus.Logger) (*Client, error) {
	client, err := supa.NewClient(projectURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize asset store client: %w", err)
	}
	return &Client{supabase: client, bucket: bucket, log: log}, nil
}

// Upload stores raw bytes under a freshly assigned id and returns the id,
// storage path, and byte size.
func (c *Client) Upload(ctx context.Context, userID, fileName, contentType string, data []byte) (UploadResult, error) {
	id := uuid.NewString()
	serverPath := fmt.Sprintf("%s/%s%s", userID, id, filepath.Ext(fileName))

	_, err := c.supabase.Storage.UploadFile(c.bucket, serverPath, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload %s to bucket %s: %w", serverPath, c.bucket, err)
	}

	c.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"server_path": serverPath,
		"size":        len(data),
	}).Info("Uploaded media object")

	return UploadResult{ID: id, ServerPath: serverPath, Size: int64(len(data))}, nil
}

// Remove deletes the object at serverPath from the bucket.
func (c *Client) Remove(ctx context.Context, serverPath string) error {
	if _, err := c.supabase.Storage.RemoveFile(c.bucket, []string{serverPath}); err != nil {
		return fmt.Errorf("remove %s from bucket %s: %w", serverPath, c.bucket, err)
	}
	return nil
}
