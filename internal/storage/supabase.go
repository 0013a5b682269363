// Package storage hands uploaded paper files to an object store and removes
// them again.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SupabaseStorage struct {
	URL            string
	ServiceRoleKey string
	BucketName     string
	client         *http.Client
}

func NewSupabaseStorage(url, serviceRoleKey, bucketName string) *SupabaseStorage {
	return &SupabaseStorage{
		URL:            strings.TrimRight(url, "/"),
		ServiceRoleKey: serviceRoleKey,
		BucketName:     bucketName,
		client:         &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores data under a fresh object name ending in ext and returns the
// public URL.
func (s *SupabaseStorage) Upload(ctx context.Context, ext, contentType string, data []byte) (string, error) {
	filename := uuid.New().String() + ext

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.URL, s.BucketName, filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.ServiceRoleKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return s.publicURL(filename), nil
}

// Delete removes the object behind a URL returned by Upload.
func (s *SupabaseStorage) Delete(ctx context.Context, fileURL string) error {
	filename, ok := strings.CutPrefix(fileURL, s.publicURL(""))
	if !ok || filename == "" {
		return fmt.Errorf("file %q is not in bucket %s", fileURL, s.BucketName)
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.URL, s.BucketName, filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.ServiceRoleKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (s *SupabaseStorage) publicURL(filename string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.URL, s.BucketName, filename)
}
