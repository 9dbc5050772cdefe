// Package blob talks to the hosted object storage over its REST API.
package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"igmirror/pkg/errors"
	"igmirror/pkg/logger"
)

// Store is a path-addressed blob collaborator backed by Supabase Storage.
type Store struct {
	client  *resty.Client
	baseURL string
	bucket  string
	logger  logger.Logger
}

// New creates a blob store for the given project URL and bucket.
func New(baseURL, serviceKey, bucket string, timeout time.Duration, log logger.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(serviceKey)

	return &Store{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
		logger:  log,
	}
}

// Upload stores data at the given path with overwrite-on-conflict
// semantics and returns the public URL of the blob.
func (s *Store) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(fmt.Sprintf("/storage/v1/object/%s/%s", s.bucket, path))
	if err != nil {
		return "", errors.Newf(errors.ErrorTypePersistence, "upload %s: %v", path, err)
	}

	if resp.IsError() {
		return "", &errors.Error{
			Type:    errors.ErrorTypePersistence,
			Message: fmt.Sprintf("upload %s returned %s: %s", path, resp.Status(), resp.String()),
			Code:    resp.StatusCode(),
		}
	}

	s.logger.DebugWithFields("blob uploaded", map[string]interface{}{
		"bucket": s.bucket,
		"path":   path,
		"size":   len(data),
	})

	return s.PublicURL(path), nil
}

// Remove deletes the blob at the given path.
func (s *Store) Remove(ctx context.Context, path string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/storage/v1/object/%s/%s", s.bucket, path))
	if err != nil {
		return errors.Newf(errors.ErrorTypePersistence, "remove %s: %v", path, err)
	}

	if resp.IsError() {
		return &errors.Error{
			Type:    errors.ErrorTypePersistence,
			Message: fmt.Sprintf("remove %s returned %s", path, resp.Status()),
			Code:    resp.StatusCode(),
		}
	}

	return nil
}

// PublicURL resolves a storage path to its publicly fetchable URL.
func (s *Store) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, path)
}

// PathFromURL recovers the storage path from a public URL. Used by
// retention to delete the blob belonging to an evicted record.
func (s *Store) PathFromURL(publicURL string) (string, bool) {
	marker := "/" + s.bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return "", false
	}

	path := publicURL[idx+len(marker):]
	if q := strings.IndexByte(path, '?'); q >= 0 {
		path = path[:q]
	}
	if path == "" {
		return "", false
	}

	return path, true
}
