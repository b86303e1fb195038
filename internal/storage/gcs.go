package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

type GCSStorage struct {
	client *storage.Client
}

// NewGCSStorage uses application default credentials unless opts say otherwise.
func NewGCSStorage(ctx context.Context, opts ...option.ClientOption) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{client: client}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) Read(ctx context.Context, location string) ([]byte, error) {
	bucket, object, err := ParseGCSURL(location)
	if err != nil {
		return nil, err
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", location, err)
	}

	return data, nil
}

func ParseGCSURL(location string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(location, gcsScheme)
	if !ok {
		return "", "", fmt.Errorf("not a gs:// url: %q", location)
	}

	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs:// url needs a bucket and an object: %q", location)
	}

	return bucket, object, nil
}
