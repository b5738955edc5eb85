package core

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const publicObjectMarker = "/object/public/"

var (
	ErrObjectNotFound   = errors.New("Object not found")
	ErrInvalidPublicURL = errors.New("Invalid storage public URL")
	ErrInvalidObjectRef = errors.New("Invalid bucket or path")
)

type (
	ObjectInfo struct {
		Bucket      string
		Key         string
		Size        int64
		ContentType string
		UpdatedAt   time.Time
	}

	// ObjectStore keeps uploaded files in named buckets.
	ObjectStore interface {
		Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (ObjectInfo, error)
		// Get returns ErrObjectNotFound when the key does not exist. The caller closes the reader.
		Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
		Delete(ctx context.Context, bucket, key string) error
	}
)

// PublicObjectURL builds the public URL of an object served by this API.
func PublicObjectURL(baseURL, bucket, key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.TrimRight(baseURL, "/") + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + strings.Join(segs, "/")
}

// ParsePublicObjectURL extracts the bucket and object key from a public storage URL.
// It accepts any host: only the path after "/object/public/" matters.
func ParsePublicObjectURL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Path == "" {
		return "", "", ErrInvalidPublicURL
	}
	idx := strings.Index(u.Path, publicObjectMarker)
	if idx < 0 {
		return "", "", ErrInvalidPublicURL
	}

	rest := u.Path[idx+len(publicObjectMarker):]
	parts := strings.SplitN(rest, "/", 2)
	bucket = parts[0]
	if len(parts) > 1 {
		key = parts[1]
	}
	if bucket == "" || key == "" {
		return "", "", ErrInvalidObjectRef
	}
	return bucket, key, nil
}

// ObjectFilename is the last path segment of key, or "file".
func ObjectFilename(key string) string {
	name := path.Base(key)
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
