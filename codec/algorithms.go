package codec

import (
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// createCompressor creates a compressor for the specified algorithm
func createCompressor(algo Algorithm, w io.Writer, level int) (io.WriteCloser, error) {
	if err := validateLevel(algo, level); err != nil {
		return nil, err
	}
	switch algo {
	case AlgorithmZlib:
		return createZlibCompressor(w, level)
	case AlgorithmGzip:
		return createGzipCompressor(w, level)
	case AlgorithmZstd:
		return createZstdCompressor(w, level)
	case AlgorithmLZ4:
		return createLZ4Compressor(w, level)
	case AlgorithmBrotli:
		return createBrotliCompressor(w, level)
	case AlgorithmSnappy:
		return createSnappyCompressor(w)
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// createDecompressor creates a decompressor for the specified algorithm
func createDecompressor(algo Algorithm, r io.Reader) (io.ReadCloser, error) {
	switch algo {
	case AlgorithmZlib:
		return zlib.NewReader(r)
	case AlgorithmGzip:
		return gzip.NewReader(r)
	case AlgorithmZstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	case AlgorithmLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case AlgorithmBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	case AlgorithmSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// levelRanges holds the accepted non-default levels per algorithm.
var levelRanges = map[Algorithm][2]int{
	AlgorithmZlib:   {1, 9},
	AlgorithmGzip:   {1, 9},
	AlgorithmZstd:   {1, 22},
	AlgorithmLZ4:    {1, 9},
	AlgorithmBrotli: {1, 11},
	AlgorithmSnappy: {0, 0},
}

func validateLevel(algo Algorithm, level int) error {
	bounds, ok := levelRanges[algo]
	if !ok {
		return ErrUnsupportedAlgorithm
	}
	if level == 0 {
		return nil
	}
	if level < bounds[0] || level > bounds[1] {
		return fmt.Errorf("%w: %s accepts %d-%d, got %d", ErrInvalidLevel, algo, bounds[0], bounds[1], level)
	}
	return nil
}

// Zlib uses level 9 unless told otherwise, matching stored raster payloads
func createZlibCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = zlib.BestCompression
	}
	return zlib.NewWriterLevel(w, level)
}

func createGzipCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return gzip.NewWriterLevel(w, level)
}

func createZstdCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = 3
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1,
	lz4.Level2,
	lz4.Level3,
	lz4.Level4,
	lz4.Level5,
	lz4.Level6,
	lz4.Level7,
	lz4.Level8,
	lz4.Level9,
}

func createLZ4Compressor(w io.Writer, level int) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
		return nil, err
	}
	return zw, nil
}

func createBrotliCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = brotli.DefaultCompression
	}
	return brotli.NewWriterLevel(w, level), nil
}

// Snappy always uses the framed format so the stream identifier is detectable
func createSnappyCompressor(w io.Writer) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(w), nil
}
