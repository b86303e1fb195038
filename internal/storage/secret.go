package storage

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SecretStorage reads secret versions named
// projects/<project>/secrets/<secret>/versions/<version>.
type SecretStorage struct {
	client *secretmanager.Client
}

func NewSecretStorage(ctx context.Context, opts ...option.ClientOption) (*SecretStorage, error) {
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}

	return &SecretStorage{client: client}, nil
}

func (s *SecretStorage) Close() error {
	return s.client.Close()
}

func (s *SecretStorage) Read(ctx context.Context, name string) ([]byte, error) {
	if KindOf(name) != KindSecret {
		return nil, fmt.Errorf("not a secret version name: %q", name)
	}

	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access secret %s: %w", name, err)
	}

	if resp.GetPayload() == nil {
		return nil, fmt.Errorf("%w: secret %s has no payload", ErrNotFound, name)
	}

	return resp.GetPayload().GetData(), nil
}
