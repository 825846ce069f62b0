// Package fixture creates the transient files and storage names that debug
// output checks run against.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NamePrefix is prepended to generated bucket names so leaked test buckets
// are recognizable and safe to sweep.
const NamePrefix = "gsprobe-test"

// BucketName returns a unique, DNS-safe bucket name.
func BucketName() string {
	return fmt.Sprintf("%s-%s", NamePrefix, uuid.New().String())
}

// ObjectName returns a unique object name.
func ObjectName() string {
	return uuid.New().String()
}

// BucketURI returns the storage URI for a bucket, e.g. "gs://name".
func BucketURI(bucket string) string {
	return "gs://" + bucket
}

// ObjectURI returns the storage URI for an object within a bucket.
func ObjectURI(bucket, object string) string {
	return "gs://" + bucket + "/" + strings.TrimPrefix(object, "/")
}

// TempFile writes contents to a new file under dir and returns its path.
// Pass name "" for a generated unique name. The caller owns cleanup; tests
// typically pass a t.TempDir() so cleanup is automatic.
func TempFile(dir, name string, contents []byte) (string, error) {
	if name == "" {
		name = uuid.New().String()
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create fixture dir: %w", err)
	}
	if err := os.WriteFile(path, contents, 0644); err != nil {
		return "", fmt.Errorf("failed to write fixture file: %w", err)
	}
	return path, nil
}
