package codec

import (
	"bytes"
)

// Magic bytes for codec frame detection. Zlib and brotli are handled
// separately: zlib has a checksummed two-byte header, brotli has no magic.
var magicBytes = map[Algorithm][]byte{
	AlgorithmGzip:   {0x1f, 0x8b},
	AlgorithmZstd:   {0x28, 0xb5, 0x2f, 0xfd},
	AlgorithmLZ4:    {0x04, 0x22, 0x4d, 0x18},
	AlgorithmSnappy: {0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50, 0x70, 0x59},
}

// isZlibHeader reports whether b starts with a deflate CMF/FLG pair.
func isZlibHeader(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	if b[0]&0x0f != 8 || b[0]>>4 > 7 {
		return false
	}
	return (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}

// DetectAlgorithm detects the algorithm of a codec frame (a blob without its
// length header). Frames matching no magic are assumed to be brotli.
func DetectAlgorithm(frame []byte) Algorithm {
	if algo, ok := IsCompressed(frame); ok {
		return algo
	}
	return AlgorithmBrotli
}

// IsCompressed checks if frame starts with a recognizable codec header.
// Brotli frames are never recognized.
func IsCompressed(frame []byte) (Algorithm, bool) {
	for _, algo := range Algorithms {
		magic, ok := magicBytes[algo]
		if !ok {
			continue
		}
		if len(frame) >= len(magic) && bytes.Equal(frame[:len(magic)], magic) {
			return algo, true
		}
	}
	if isZlibHeader(frame) {
		return AlgorithmZlib, true
	}
	return "", false
}

// DetectBlobAlgorithm detects the algorithm of a full blob.
// It returns false for blobs that are too short or declare an empty payload.
func DetectBlobAlgorithm(blob []byte) (Algorithm, bool) {
	size, err := DecodedLength(blob)
	if err != nil || size == 0 {
		return "", false
	}
	return DetectAlgorithm(blob[HeaderSize:]), true
}
