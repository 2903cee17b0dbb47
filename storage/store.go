package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Uploaded audio always lands under a fixed logical folder, coerced to a fixed
// encoding. The server picks the object name; nothing client-supplied reaches
// the final placement.
const (
	songFolder       = "songs"
	audioExtension   = ".mp3"
	audioContentType = "audio/mpeg"
)

// ObjectStore accepts a binary payload and returns the public reference URL
// where the object can be retrieved.
type ObjectStore interface {
	UploadAudio(ctx context.Context, reader io.Reader, size int64) (string, error)
}

// minioStore implements ObjectStore on a MinIO bucket.
type minioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore creates an ObjectStore backed by the given MinIO client.
// publicURL is the externally reachable base under which the bucket is served.
func NewMinioStore(client *minio.Client, bucket, publicURL string) ObjectStore {
	return &minioStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func (s *minioStore) UploadAudio(ctx context.Context, reader io.Reader, size int64) (string, error) {
	objectName := fmt.Sprintf("%s/%s%s", songFolder, uuid.NewString(), audioExtension)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: audioContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audio object %s: %w", objectName, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName), nil
}
