// Package wordvec loads pretrained word embedding collections into an
// immutable in-memory store for Go.
//
// Wordvec reads the text and packed binary formats that embedding
// toolkits emit, freezes the vectors into a queryable store, and keeps
// hot paths allocation-free.
//
// # Quick Start
//
// Load a file and look up a vector:
//
//	st, _ := wordvec.Load("vectors.txt")
//	vec, _ := st.Embedding("apple")
//	fmt.Println(st.Len(), st.Dimension(), vec[:4])
//
// Similarity queries live in the search subpackage:
//
//	matches, _ := search.Similar(ctx, st, "apple", 10)
//	matches, _ := search.Analogy(ctx, st, []string{"king", "woman"}, []string{"man"}, 5)
//
// # Format Detection
//
// The loader decides between the text and binary layouts from the file
// extension first and a content sniff second, so renamed or
// extensionless files still load:
//
//	st, _ := wordvec.Load("vectors.bin")                         // extension wins
//	st, _ := wordvec.Load("download")                            // sniffed
//	st, _ := wordvec.Load("odd.dat", wordvec.WithFormat(format.Binary))  // pinned
//
// # Compression
//
// Files ending in .gz, .zst, or .lz4 are decompressed transparently and
// format detection applies to the inner name:
//
//	st, _ := wordvec.Load("vectors.txt.gz")
//
// # Remote Sources
//
// Collections can be streamed from object storage through the source
// subpackage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	src := s3source.New(s3.NewFromConfig(cfg), "my-bucket", "embeddings/")
//	st, _ := wordvec.LoadFrom(ctx, src, "glove.6B.100d.txt.gz")
//
// # Snapshots
//
// Parsing large text collections is the slow part. The snapshot
// subpackage persists a loaded store in a checksummed binary container
// that reloads in a fraction of the time:
//
//	snapshot.SaveFile("vectors.snap", st, func(o *snapshot.SaveOptions) {
//	    o.Codec = snapshot.CodecZstd
//	})
//	st, _ = snapshot.LoadFile("vectors.snap")
//
// # Key Features
//
//   - Text and packed binary parsers with strict shape validation
//   - Extension plus content-sniff format detection
//   - Transparent gzip/zstd/lz4 decompression
//   - SIMD-accelerated similarity and analogy queries
//   - Local, in-memory, S3, and MinIO sources
//   - Resource admission (memory budget, load slots, IO rate limits)
package wordvec
