package codec

// Preset configurations for common use cases

// DefaultConfig returns zlib at level 9, the layout raster payloads have
// always been stored in.
func DefaultConfig() *Config {
	return &Config{
		Algorithm:      AlgorithmZlib,
		Level:          9,
		MaxDecodedSize: DefaultMaxDecodedSize,
	}
}

// FastestConfig returns a configuration optimized for speed
func FastestConfig() *Config {
	return &Config{
		Algorithm:      AlgorithmLZ4,
		Level:          0,
		MaxDecodedSize: DefaultMaxDecodedSize,
	}
}

// RecommendedConfig returns zstd level 3, a good ratio at good speed
func RecommendedConfig() *Config {
	return &Config{
		Algorithm:      AlgorithmZstd,
		Level:          3,
		MaxDecodedSize: DefaultMaxDecodedSize,
	}
}

// BestCompressionConfig returns a configuration optimized for maximum compression
// Use for write-once/read-many archives
func BestCompressionConfig() *Config {
	return &Config{
		Algorithm:      AlgorithmBrotli,
		Level:          11,
		MaxDecodedSize: DefaultMaxDecodedSize,
	}
}

// CompatibleConfig returns a configuration using gzip for maximum compatibility
func CompatibleConfig() *Config {
	return &Config{
		Algorithm:      AlgorithmGzip,
		Level:          6,
		MaxDecodedSize: DefaultMaxDecodedSize,
	}
}

// LowCPUConfig returns a configuration optimized for low CPU usage
func LowCPUConfig() *Config {
	return &Config{
		Algorithm:      AlgorithmSnappy,
		Level:          0, // Snappy has no levels
		MaxDecodedSize: DefaultMaxDecodedSize,
	}
}

// ParseAlgorithm maps a name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, algo := range Algorithms {
		if string(algo) == name {
			return algo, nil
		}
	}
	return "", ErrUnsupportedAlgorithm
}

// GetCompressionRatio calculates the compression ratio for given original and compressed sizes
// Returns a value between 0 and 1, where lower is better
func GetCompressionRatio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}

// GetCompressionPercentage calculates the percentage of space saved (0-100)
func GetCompressionPercentage(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(compressedSize)/float64(originalSize)) * 100
}
