package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"
)

func testPayloads() map[string][]byte {
	rng := rand.New(rand.NewSource(7))
	random := make([]byte, 64*1024)
	rng.Read(random)

	// classified voxel buffers are long runs of a few byte values
	voxels := make([]byte, 32*32*32)
	for i := range voxels {
		voxels[i] = byte((i / 97) % 5)
	}

	return map[string][]byte{
		"empty":   {},
		"single":  {0x04},
		"text":    []byte("Hello, World! This is test data for compression algorithms."),
		"random":  random,
		"voxels":  voxels,
		"zeroes":  make([]byte, 1<<20),
		"pattern": bytes.Repeat([]byte{0, 1, 2, 3, 4}, 4096),
	}
}

// Test all compression algorithms with the same data
func TestRoundTripAllAlgorithms(t *testing.T) {
	algorithms := []struct {
		name  string
		algo  Algorithm
		level int
	}{
		{"zlib-default", AlgorithmZlib, 0},
		{"zlib-level1", AlgorithmZlib, 1},
		{"zlib-level9", AlgorithmZlib, 9},
		{"gzip-default", AlgorithmGzip, 0},
		{"gzip-level9", AlgorithmGzip, 9},
		{"zstd-default", AlgorithmZstd, 0},
		{"zstd-level6", AlgorithmZstd, 6},
		{"lz4-default", AlgorithmLZ4, 0},
		{"lz4-level9", AlgorithmLZ4, 9},
		{"brotli-default", AlgorithmBrotli, 0},
		{"brotli-level11", AlgorithmBrotli, 11},
		{"snappy", AlgorithmSnappy, 0},
	}

	for _, tt := range algorithms {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(&Config{Algorithm: tt.algo, Level: tt.level})
			if err != nil {
				t.Fatalf("Failed to create codec: %v", err)
			}

			for name, data := range testPayloads() {
				blob, err := c.Compress(data)
				if err != nil {
					t.Fatalf("%s: compress failed: %v", name, err)
				}

				// any codec decodes any blob
				got, err := Default().Decompress(blob)
				if err != nil {
					t.Fatalf("%s: decompress failed: %v", name, err)
				}
				if !bytes.Equal(got, data) {
					t.Fatalf("%s: round trip mismatch: expected %d bytes, got %d", name, len(data), len(got))
				}

				if len(data) > 0 {
					algo, ok := DetectBlobAlgorithm(blob)
					if !ok || algo != tt.algo {
						t.Errorf("%s: detected %q, expected %q", name, algo, tt.algo)
					}
				}
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	blob, err := Compress(nil)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	n, err := DecodedLength(blob)
	if err != nil || n != 0 {
		t.Fatalf("Expected declared length 0, got %d (%v)", n, err)
	}
	out, err := Decompress(blob)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("Expected empty non-nil slice, got %v", out)
	}
}

func TestHeaderCarriesOriginalLength(t *testing.T) {
	data := bytes.Repeat([]byte("voxel"), 1000)
	blob, err := Compress(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint64(blob[:HeaderSize]); got != uint64(len(data)) {
		t.Errorf("Header length = %d, expected %d", got, len(data))
	}
	if !isZlibHeader(blob[HeaderSize:]) {
		t.Errorf("Default codec frame is not zlib: % x", blob[HeaderSize:HeaderSize+2])
	}
}

func TestCorruptedBlobs(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3, 4}, 2048)
	blob, err := Compress(data)
	if err != nil {
		t.Fatal(err)
	}

	truncated := blob[:len(blob)/2]

	flipped := append([]byte(nil), blob...)
	flipped[len(flipped)-3] ^= 0xff

	wrongLength := append([]byte(nil), blob...)
	binary.LittleEndian.PutUint64(wrongLength, uint64(len(data)+10))

	shortLength := append([]byte(nil), blob...)
	binary.LittleEndian.PutUint64(shortLength, uint64(len(data)-10))

	tests := []struct {
		name string
		blob []byte
		want error
	}{
		{"nil", nil, ErrCorruptedData},
		{"short header", []byte{1, 2, 3}, ErrCorruptedData},
		{"truncated", truncated, ErrCorruptedData},
		{"flipped checksum", flipped, ErrCorruptedData},
		{"declared too long", wrongLength, ErrCorruptedData},
		{"declared too short", shortLength, ErrCorruptedData},
		{"header only", blob[:HeaderSize], ErrCorruptedData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompress(tt.blob)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMaxDecodedSize(t *testing.T) {
	c, err := New(&Config{Algorithm: AlgorithmZstd, MaxDecodedSize: 1024})
	if err != nil {
		t.Fatal(err)
	}
	blob, err := c.Compress(make([]byte, 4096))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decompress(blob); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Expected ErrTooLarge, got %v", err)
	}
	if _, err := Default().Decompress(blob); err != nil {
		t.Fatalf("Default codec should accept the blob: %v", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   error
	}{
		{"unknown algorithm", &Config{Algorithm: "bzip2"}, ErrUnsupportedAlgorithm},
		{"zlib level 10", &Config{Algorithm: AlgorithmZlib, Level: 10}, ErrInvalidLevel},
		{"zstd level 23", &Config{Algorithm: AlgorithmZstd, Level: 23}, ErrInvalidLevel},
		{"lz4 negative", &Config{Algorithm: AlgorithmLZ4, Level: -1}, ErrInvalidLevel},
		{"snappy level", &Config{Algorithm: AlgorithmSnappy, Level: 3}, ErrInvalidLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.config); !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNilConfigUsesDefault(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg := c.Config()
	if cfg.Algorithm != AlgorithmZlib || cfg.Level != 9 {
		t.Errorf("Unexpected default config: %+v", cfg)
	}
}

func TestPresetConfigs(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"Default", DefaultConfig()},
		{"Fastest", FastestConfig()},
		{"Recommended", RecommendedConfig()},
		{"BestCompression", BestCompressionConfig()},
		{"Compatible", CompatibleConfig()},
		{"LowCPU", LowCPUConfig()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.config)
			if err != nil {
				t.Fatalf("Preset rejected: %v", err)
			}
			data := bytes.Repeat([]byte("preset"), 512)
			blob, err := c.Compress(data)
			if err != nil {
				t.Fatal(err)
			}
			got, err := c.Decompress(blob)
			if err != nil || !bytes.Equal(got, data) {
				t.Fatalf("Round trip failed: %v", err)
			}
		})
	}
}

func TestStats(t *testing.T) {
	c, err := New(RecommendedConfig())
	if err != nil {
		t.Fatal(err)
	}
	data := make([]byte, 10000)
	blob, _ := c.Compress(data)
	c.Decompress(blob)
	c.Decompress([]byte{1})

	stats := c.Stats()
	if stats.BlobsCompressed != 1 {
		t.Errorf("Expected 1 blob compressed, got %d", stats.BlobsCompressed)
	}
	if stats.BlobsDecompressed != 1 {
		t.Errorf("Expected 1 blob decompressed, got %d", stats.BlobsDecompressed)
	}
	if stats.Failures != 1 {
		t.Errorf("Expected 1 failure, got %d", stats.Failures)
	}
	if stats.AlgorithmCount(AlgorithmZstd) != 1 {
		t.Errorf("Expected 1 zstd decode, got %d", stats.AlgorithmCount(AlgorithmZstd))
	}
	if r := stats.Ratio(); r <= 0 || r >= 1 {
		t.Errorf("Expected ratio in (0,1), got %f", r)
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, algo := range Algorithms {
		got, err := ParseAlgorithm(string(algo))
		if err != nil || got != algo {
			t.Errorf("ParseAlgorithm(%q) = %q, %v", algo, got, err)
		}
	}
	if _, err := ParseAlgorithm("lzma"); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("Expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestGetCompressionHelpers(t *testing.T) {
	if r := GetCompressionRatio(100, 25); r != 0.25 {
		t.Errorf("Expected ratio 0.25, got %f", r)
	}
	if p := GetCompressionPercentage(100, 25); p != 75 {
		t.Errorf("Expected 75%%, got %f", p)
	}
	if GetCompressionRatio(0, 10) != 0 || GetCompressionPercentage(0, 10) != 0 {
		t.Error("Expected 0 for empty original")
	}
}
