// Package storage reads small documents (the config file, the service
// account key) from wherever the operator keeps them: the local disk, a
// Cloud Storage object or a Secret Manager secret version.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Kind int

const (
	KindLocal Kind = iota
	KindGCS
	KindSecret
)

func (k Kind) String() string {
	switch k {
	case KindGCS:
		return "gcs"
	case KindSecret:
		return "secretmanager"
	default:
		return "local"
	}
}

var ErrNotFound = errors.New("document not found")

var secretVersionPattern = regexp.MustCompile(`^projects/[^/]+/secrets/[^/]+/versions/[^/]+$`)

type Reader interface {
	Read(ctx context.Context, location string) ([]byte, error)
}

func KindOf(location string) Kind {
	switch {
	case strings.HasPrefix(location, gcsScheme):
		return KindGCS
	case secretVersionPattern.MatchString(location):
		return KindSecret
	default:
		return KindLocal
	}
}

// Documents dispatches each read to the backend the location names. Remote
// clients are created per read since a run reads at most two documents.
type Documents struct {
	local      *LocalStorage
	newGCS     func(ctx context.Context) (remoteReader, error)
	newSecrets func(ctx context.Context) (remoteReader, error)
}

type remoteReader interface {
	Reader
	Close() error
}

var _ Reader = (*Documents)(nil)

func NewDocuments() *Documents {
	return &Documents{
		local: NewLocalStorage(),
		newGCS: func(ctx context.Context) (remoteReader, error) {
			return NewGCSStorage(ctx)
		},
		newSecrets: func(ctx context.Context) (remoteReader, error) {
			return NewSecretStorage(ctx)
		},
	}
}

func (d *Documents) Read(ctx context.Context, location string) ([]byte, error) {
	switch KindOf(location) {
	case KindGCS:
		return readRemote(ctx, d.newGCS, location)
	case KindSecret:
		return readRemote(ctx, d.newSecrets, location)
	default:
		return d.local.Read(ctx, location)
	}
}

func readRemote(ctx context.Context, open func(context.Context) (remoteReader, error), location string) ([]byte, error) {
	r, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s reader: %w", KindOf(location), err)
	}
	defer func() { _ = r.Close() }()

	return r.Read(ctx, location)
}
