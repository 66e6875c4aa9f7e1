// Package s3 provides an Amazon S3 implementation of the source.Source interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//
//	src := s3source.New(s3.NewFromConfig(cfg), "my-bucket", "embeddings/")
//	store, err := wordvec.LoadFrom(ctx, src, "glove.6B.100d.txt.gz")
//
// Open streams the object; Download fetches it whole with parallel ranged
// reads, which is faster on high-latency links.
package s3
