// Package codec compresses and decompresses byte buffers into
// self-describing blobs.
//
// A blob carries the original length in front of the codec frame, so it can
// be decoded without any external length hint:
//
//	[uint64 little-endian original length][codec frame]
//
// The codec frame is produced by one of six algorithms. On decode the
// algorithm is detected from the frame's magic bytes, so a reader never needs
// to know which configuration the writer used.
//
// # Algorithms
//
//   - zlib:   default, level 9; the frame layout older configuration space files use
//   - gzip:   widely supported
//   - zstd:   best ratio/speed balance
//   - lz4:    fastest
//   - brotli: best compression, no magic bytes (detected as the fallback)
//   - snappy: lowest CPU, framed format
//
// # Quick Start
//
//	blob, err := codec.Compress(voxels)
//	if err != nil {
//	    return err
//	}
//	voxels, err = codec.Decompress(blob)
//
// Use New with a Config (or a preset such as FastestConfig) to choose the
// algorithm, the level and the decode size limit.
package codec
