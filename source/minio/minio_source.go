// Package minio provides a source.Source implementation using the MinIO client.
//
// MinIO is a high-performance, S3-compatible object storage system. This
// package uses the official MinIO Go client for compatibility with MinIO and
// other S3-compatible systems like Ceph, SeaweedFS, and Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src := miniosource.New(client, "my-bucket", "embeddings/")
//	store, err := wordvec.LoadFrom(ctx, src, "vectors.bin.zst")
package minio

import (
	"context"
	"path"

	"github.com/hupe1980/wordvec/source"
	"github.com/minio/minio-go/v7"
)

// Source implements source.Source for MinIO and S3-compatible storage.
type Source struct {
	client *minio.Client
	bucket string
	prefix string
}

// New creates a new MinIO source.
// rootPrefix is prepended to all keys (e.g. "embeddings/").
func New(client *minio.Client, bucket, rootPrefix string) *Source {
	return &Source{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *Source) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens the named object as a stream.
func (s *Source) Open(ctx context.Context, name string) (source.Reader, error) {
	key := s.key(name)

	// Stat first so the size is known and a missing key maps cleanly.
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, mapNotFound(err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	return &object{obj: obj, size: info.Size}, nil
}

// Stat returns the size of the named object without fetching it.
func (s *Source) Stat(ctx context.Context, name string) (int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{})
	if err != nil {
		return 0, mapNotFound(err)
	}
	return info.Size, nil
}

func mapNotFound(err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
		return source.ErrNotFound
	}
	return err
}

type object struct {
	obj  *minio.Object
	size int64
}

func (o *object) Read(p []byte) (int, error) {
	return o.obj.Read(p)
}

func (o *object) Close() error {
	return o.obj.Close()
}

func (o *object) Size() int64 {
	return o.size
}
