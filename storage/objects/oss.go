package objstore

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
)

type ossStore struct {
	client *oss.Client

	mu      sync.Mutex
	buckets map[string]*oss.Bucket
}

var _ core.ObjectStore = (*ossStore)(nil)

func NewOSSStore(conf core.StorageConfig) (core.ObjectStore, error) {
	client, err := oss.New(conf.Endpoint, conf.AccessKeyID, conf.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "oss.New")
	}
	return &ossStore{client: client, buckets: make(map[string]*oss.Bucket)}, nil
}

func (s *ossStore) bucket(name string) (*oss.Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.buckets[name]; ok {
		return b, nil
	}
	b, err := s.client.Bucket(name)
	if err != nil {
		return nil, errors.Wrap(err, "opening bucket "+name)
	}
	s.buckets[name] = b
	return b, nil
}

func isNotFound(err error) bool {
	if se, ok := errors.Cause(err).(oss.ServiceError); ok {
		return se.StatusCode == http.StatusNotFound || se.Code == "NoSuchKey"
	}
	return false
}

func (s *ossStore) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (core.ObjectInfo, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return core.ObjectInfo{}, err
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
	}
	if err := b.PutObject(key, r, opts...); err != nil {
		return core.ObjectInfo{}, errors.Wrap(err, "putting object")
	}
	return core.ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        size,
		ContentType: contentType,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

func (s *ossStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, core.ObjectInfo, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, core.ObjectInfo{}, err
	}

	meta, err := b.GetObjectDetailedMeta(key, oss.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, core.ObjectInfo{}, core.ErrObjectNotFound
		}
		return nil, core.ObjectInfo{}, errors.Wrap(err, "getting object meta")
	}
	info := core.ObjectInfo{Bucket: bucket, Key: key, ContentType: meta.Get("Content-Type")}
	info.Size, _ = strconv.ParseInt(meta.Get("Content-Length"), 10, 64)
	info.UpdatedAt, _ = http.ParseTime(meta.Get("Last-Modified"))

	body, err := b.GetObject(key, oss.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, core.ObjectInfo{}, core.ErrObjectNotFound
		}
		return nil, core.ObjectInfo{}, errors.Wrap(err, "getting object")
	}
	return body, info, nil
}

func (s *ossStore) Delete(ctx context.Context, bucket, key string) error {
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	if ok, err := b.IsObjectExist(key, oss.WithContext(ctx)); err != nil {
		return errors.Wrap(err, "checking object")
	} else if !ok {
		return core.ErrObjectNotFound
	}
	return errors.Wrap(b.DeleteObject(key, oss.WithContext(ctx)), "deleting object")
}
