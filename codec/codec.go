package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Algorithm represents a compression algorithm
type Algorithm string

const (
	AlgorithmZlib   Algorithm = "zlib"
	AlgorithmGzip   Algorithm = "gzip"
	AlgorithmZstd   Algorithm = "zstd"
	AlgorithmLZ4    Algorithm = "lz4"
	AlgorithmBrotli Algorithm = "brotli"
	AlgorithmSnappy Algorithm = "snappy"
)

// Algorithms lists every supported algorithm in detection order.
var Algorithms = []Algorithm{
	AlgorithmGzip,
	AlgorithmZstd,
	AlgorithmLZ4,
	AlgorithmSnappy,
	AlgorithmZlib,
	AlgorithmBrotli,
}

// HeaderSize is the size of the original-length prefix of every blob.
const HeaderSize = 8

// DefaultMaxDecodedSize bounds the declared original length accepted on decode.
const DefaultMaxDecodedSize = 1 << 30

var (
	ErrUnsupportedAlgorithm = errors.New("codec: unsupported compression algorithm")
	ErrInvalidLevel         = errors.New("codec: invalid compression level")
	ErrCorruptedData        = errors.New("codec: corrupted compressed data")
	ErrTooLarge             = errors.New("codec: declared length exceeds limit")
)

// Config holds codec configuration
type Config struct {
	// Algorithm used by Compress (default: zlib)
	Algorithm Algorithm

	// Compression level (algorithm-specific, 0 selects the algorithm default)
	// zlib: 1-9 (9 default)
	// gzip: 1-9 (6 default)
	// zstd: 1-22 (3 default)
	// lz4: 1-9 (fast default)
	// brotli: 1-11 (6 default)
	// snappy: ignored (no levels)
	Level int

	// Upper bound on the original length a blob may declare (default: 1GiB)
	MaxDecodedSize uint64
}

// Stats holds codec statistics
type Stats struct {
	BlobsCompressed   int64
	BlobsDecompressed int64
	Failures          int64

	BytesIn  int64
	BytesOut int64

	algorithmCounts sync.Map // map[Algorithm]*int64
}

// AlgorithmCount returns how many blobs were decoded with algo.
func (s *Stats) AlgorithmCount(algo Algorithm) int64 {
	if val, ok := s.algorithmCounts.Load(algo); ok {
		return atomic.LoadInt64(val.(*int64))
	}
	return 0
}

func (s *Stats) incrementAlgorithm(algo Algorithm) {
	val, _ := s.algorithmCounts.LoadOrStore(algo, new(int64))
	atomic.AddInt64(val.(*int64), 1)
}

// Codec compresses byte buffers into self-describing blobs.
// A Codec is safe for concurrent use.
type Codec struct {
	config Config
	stats  Stats
}

// New creates a codec, validating the algorithm and level.
func New(config *Config) (*Codec, error) {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmZlib
	}
	if cfg.MaxDecodedSize == 0 {
		cfg.MaxDecodedSize = DefaultMaxDecodedSize
	}
	if err := validateLevel(cfg.Algorithm, cfg.Level); err != nil {
		return nil, err
	}
	return &Codec{config: cfg}, nil
}

// Config returns a copy of the codec configuration.
func (c *Codec) Config() Config {
	return c.config
}

// Compress encodes data into a blob with the configured algorithm.
func (c *Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(data)/2)

	var header [HeaderSize]byte
	binary.LittleEndian.PutUint64(header[:], uint64(len(data)))
	buf.Write(header[:])

	w, err := createCompressor(c.config.Algorithm, &buf, c.config.Level)
	if err != nil {
		atomic.AddInt64(&c.stats.Failures, 1)
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		atomic.AddInt64(&c.stats.Failures, 1)
		return nil, fmt.Errorf("codec: %s compress: %w", c.config.Algorithm, err)
	}
	if err := w.Close(); err != nil {
		atomic.AddInt64(&c.stats.Failures, 1)
		return nil, fmt.Errorf("codec: %s compress: %w", c.config.Algorithm, err)
	}

	atomic.AddInt64(&c.stats.BlobsCompressed, 1)
	atomic.AddInt64(&c.stats.BytesIn, int64(len(data)))
	atomic.AddInt64(&c.stats.BytesOut, int64(buf.Len()))
	return buf.Bytes(), nil
}

// Decompress decodes a blob produced by any Codec, whatever its algorithm.
func (c *Codec) Decompress(blob []byte) ([]byte, error) {
	out, algo, err := c.decompress(blob)
	if err != nil {
		atomic.AddInt64(&c.stats.Failures, 1)
		return nil, err
	}
	atomic.AddInt64(&c.stats.BlobsDecompressed, 1)
	if algo != "" {
		c.stats.incrementAlgorithm(algo)
	}
	return out, nil
}

func (c *Codec) decompress(blob []byte) ([]byte, Algorithm, error) {
	if len(blob) < HeaderSize {
		return nil, "", fmt.Errorf("%w: blob shorter than header", ErrCorruptedData)
	}
	size := binary.LittleEndian.Uint64(blob[:HeaderSize])
	if size > c.config.MaxDecodedSize {
		return nil, "", fmt.Errorf("%w: %d > %d", ErrTooLarge, size, c.config.MaxDecodedSize)
	}
	if size == 0 {
		return []byte{}, "", nil
	}

	frame := blob[HeaderSize:]
	algo := DetectAlgorithm(frame)
	r, err := createDecompressor(algo, bytes.NewReader(frame))
	if err != nil {
		return nil, algo, fmt.Errorf("%w: %v", ErrCorruptedData, err)
	}
	defer r.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, algo, fmt.Errorf("%w: %s frame: %v", ErrCorruptedData, algo, err)
	}
	// the frame must end exactly at the declared length
	var extra [1]byte
	n, err := io.ReadFull(r, extra[:])
	if n != 0 {
		return nil, algo, fmt.Errorf("%w: frame longer than declared length", ErrCorruptedData)
	}
	if err != nil && err != io.EOF {
		return nil, algo, fmt.Errorf("%w: %s frame: %v", ErrCorruptedData, algo, err)
	}
	return out, algo, nil
}

// Stats returns a snapshot of the codec counters.
func (c *Codec) Stats() *Stats {
	s := &Stats{
		BlobsCompressed:   atomic.LoadInt64(&c.stats.BlobsCompressed),
		BlobsDecompressed: atomic.LoadInt64(&c.stats.BlobsDecompressed),
		Failures:          atomic.LoadInt64(&c.stats.Failures),
		BytesIn:           atomic.LoadInt64(&c.stats.BytesIn),
		BytesOut:          atomic.LoadInt64(&c.stats.BytesOut),
	}
	c.stats.algorithmCounts.Range(func(k, v any) bool {
		n := atomic.LoadInt64(v.(*int64))
		s.algorithmCounts.Store(k, &n)
		return true
	})
	return s
}

// Ratio returns compressed bytes over uncompressed bytes for everything
// compressed so far, 0 when nothing was compressed.
func (s *Stats) Ratio() float64 {
	if s.BytesIn == 0 {
		return 0
	}
	return float64(s.BytesOut) / float64(s.BytesIn)
}

// DecodedLength returns the original length a blob declares without decoding it.
func DecodedLength(blob []byte) (uint64, error) {
	if len(blob) < HeaderSize {
		return 0, fmt.Errorf("%w: blob shorter than header", ErrCorruptedData)
	}
	return binary.LittleEndian.Uint64(blob[:HeaderSize]), nil
}

var (
	defaultOnce  sync.Once
	defaultCodec *Codec
)

// Default returns the shared codec built from DefaultConfig.
func Default() *Codec {
	defaultOnce.Do(func() {
		defaultCodec, _ = New(DefaultConfig())
	})
	return defaultCodec
}

// Compress encodes data with the default codec.
func Compress(data []byte) ([]byte, error) {
	return Default().Compress(data)
}

// Decompress decodes a blob with the default codec.
func Decompress(blob []byte) ([]byte, error) {
	return Default().Decompress(blob)
}
