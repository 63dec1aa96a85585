// Package core defines the blob storage contract save archives are written
// through.
package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem stores saves under a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 stores saves in an S3 or MinIO bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps saves in process memory (tests).
	DriverMemory Driver = "memory"
)

// ContentType is attached to every save blob.
const ContentType = "application/x-extframe-save"

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is the minimal S3-like surface save archives need. Keys are
// slash-separated and never begin with "/".
type Store interface {
	// Put stores a new blob and fails with ErrExists when key is taken.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get fails with ErrNotFound when key is missing.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	// Delete reports whether the blob existed.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns blobs under prefix ordered by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

var (
	// ErrNotFound reports a missing blob.
	ErrNotFound = errors.New("blob: not found")
	// ErrExists reports a Put over an existing key.
	ErrExists = errors.New("blob: already exists")
	// ErrInvalidKey reports an empty, absolute or escaping key.
	ErrInvalidKey = errors.New("blob: invalid key")
)

// CleanKey validates key and normalises its separators.
func CleanKey(key string) (string, error) {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	switch {
	case key == "":
		return "", ErrInvalidKey
	case strings.HasPrefix(key, "/"):
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", ErrInvalidKey
		}
	}
	return key, nil
}

// CloneMetadata copies m, preserving nil.
func CloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
