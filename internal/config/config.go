// Package config loads the YAML configuration of the cspace command.
//
//	codec:
//	  algorithm: zstd
//	  level: 3
//	  max_decoded_size: 67108864
//	render:
//	  renderer: texture3d
//	log:
//	  level: debug
//	  format: json
//
// Missing keys keep their defaults; unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/absfs/absfs"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/absfs/cspace"
	"github.com/absfs/cspace/codec"
	"github.com/absfs/cspace/internal/logging"
	"github.com/absfs/cspace/vfs"
)

var validate = validator.New()

// Config is the complete command configuration.
type Config struct {
	Codec  CodecConfig  `yaml:"codec"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

// CodecConfig selects how raster payloads are compressed on save.
type CodecConfig struct {
	Algorithm      string `yaml:"algorithm" validate:"oneof=zlib gzip zstd lz4 brotli snappy"`
	Level          int    `yaml:"level" validate:"gte=0,lte=22"`
	MaxDecodedSize uint64 `yaml:"max_decoded_size" validate:"gt=0"`
}

type RenderConfig struct {
	Renderer string `yaml:"renderer" validate:"oneof=gaussian-splatter texture3d"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	d := codec.DefaultConfig()
	return Config{
		// level 0 is the algorithm default, 9 for zlib
		Codec: CodecConfig{
			Algorithm:      string(d.Algorithm),
			MaxDecodedSize: d.MaxDecodedSize,
		},
		Render: RenderConfig{Renderer: cspace.GaussianSplatter.String()},
		Log:    LogConfig{Level: "info", Format: logging.FormatText},
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("config: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Load reads and parses the file name from fsys. An empty name yields the
// defaults.
func Load(fsys absfs.Filer, name string) (Config, error) {
	if name == "" {
		return Default(), nil
	}
	data, err := vfs.ReadFile(fsys, name)
	if err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate checks field ranges, then that the codec accepts the level.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	if _, err := c.Codec.New(); err != nil {
		return fmt.Errorf("config: invalid codec: %w", err)
	}
	return nil
}

// New builds the codec.
func (c CodecConfig) New() (*codec.Codec, error) {
	algo, err := codec.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return nil, err
	}
	return codec.New(&codec.Config{Algorithm: algo, Level: c.Level, MaxDecodedSize: c.MaxDecodedSize})
}

// Type returns the volume renderer type.
func (c RenderConfig) Type() (cspace.VolumeRendererType, error) {
	return cspace.ParseVolumeRendererType(c.Renderer)
}

// Logger builds a logger writing to out.
func (c LogConfig) Logger(out io.Writer) (*slog.Logger, error) {
	return logging.New(logging.Config{Level: c.Level, Format: c.Format, Output: out})
}

// Options assembles the cspace options for c.
func (c Config) Options(logger *slog.Logger) (*cspace.Options, error) {
	cd, err := c.Codec.New()
	if err != nil {
		return nil, err
	}
	renderer, err := c.Render.Type()
	if err != nil {
		return nil, err
	}
	return &cspace.Options{Logger: logger, Codec: cd, Renderer: renderer}, nil
}
