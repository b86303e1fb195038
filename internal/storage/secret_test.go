package storage

import (
	"context"
	"errors"
	"net"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

type fakeSecretManager struct {
	secretmanagerpb.UnimplementedSecretManagerServiceServer
	versions map[string][]byte
}

func (f *fakeSecretManager) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	data, ok := f.versions[req.GetName()]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "secret version %s not found", req.GetName())
	}
	if data == nil {
		return nil, status.Error(codes.PermissionDenied, "caller cannot access secret")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Name:    req.GetName(),
		Payload: &secretmanagerpb.SecretPayload{Data: data},
	}, nil
}

func newTestSecretStorage(t *testing.T, fake *fakeSecretManager) *SecretStorage {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	server := grpc.NewServer()
	secretmanagerpb.RegisterSecretManagerServiceServer(server, fake)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	s, err := NewSecretStorage(context.Background(),
		option.WithEndpoint(lis.Addr().String()),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("NewSecretStorage() error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSecretStorageRead(t *testing.T) {
	const (
		present = "projects/p/secrets/sa-key/versions/3"
		denied  = "projects/p/secrets/other/versions/1"
	)
	fake := &fakeSecretManager{versions: map[string][]byte{
		present: []byte(`{"type": "service_account"}`),
		denied:  nil,
	}}
	s := newTestSecretStorage(t, fake)

	tests := []struct {
		name         string
		location     string
		want         string
		wantNotFound bool
		wantErr      bool
	}{
		{name: "existingVersion", location: present, want: `{"type": "service_account"}`},
		{name: "missingVersion", location: "projects/p/secrets/sa-key/versions/9", wantNotFound: true, wantErr: true},
		{name: "permissionDenied", location: denied, wantErr: true},
		{name: "notASecretName", location: "./local/sa.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Read(context.Background(), tt.location)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Read() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, ErrNotFound) != tt.wantNotFound {
				t.Errorf("errors.Is(err, ErrNotFound) = %v, want %v", !tt.wantNotFound, tt.wantNotFound)
			}
			if string(got) != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}
