package s3

import (
	"context"
	"errors"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/wordvec/source"
)

// Client is the subset of the S3 API the source uses. *s3.Client satisfies it.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Source implements source.Source for Amazon S3.
type Source struct {
	client Client
	bucket string
	prefix string
}

// New creates a new S3 source.
// rootPrefix is prepended to all keys (e.g. "embeddings/").
func New(client Client, bucket, rootPrefix string) *Source {
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
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}

	return &object{ReadCloser: out.Body, size: size}, nil
}

// Stat returns the size of the named object without fetching it.
func (s *Source) Stat(ctx context.Context, name string) (int64, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return 0, mapNotFound(err)
	}
	if head.ContentLength == nil {
		return -1, nil
	}
	return *head.ContentLength, nil
}

// Download fetches the whole object into memory using parallel ranged reads.
// Faster than Open for large objects when the full content is needed anyway.
func (s *Source) Download(ctx context.Context, name string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	downloader := manager.NewDownloader(s.client)

	if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	}); err != nil {
		return nil, mapNotFound(err)
	}

	return buf.Bytes(), nil
}

func mapNotFound(err error) error {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return source.ErrNotFound
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return source.ErrNotFound
	}
	return err
}

type object struct {
	io.ReadCloser
	size int64
}

func (o *object) Size() int64 {
	return o.size
}
