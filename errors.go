package cspace

import "errors"

var (
	// ErrInvalidResolution is returned when a raster resolution is not a
	// power of two in [1, MaxResolution].
	ErrInvalidResolution = errors.New("cspace: resolution must be a power of two")

	// ErrInvalidParameters is returned for other construction parameters out
	// of range.
	ErrInvalidParameters = errors.New("cspace: invalid parameters")

	// ErrMalformedStream is returned when a persisted space cannot be decoded.
	ErrMalformedStream = errors.New("cspace: malformed stream")

	// ErrUnsupported is returned by operations a representation does not
	// implement, such as persisting cell and exact spaces.
	ErrUnsupported = errors.New("cspace: operation not supported")

	// ErrLoadFailed is the only error LoadObject and ReadObject report.
	ErrLoadFailed = errors.New("cspace: failed to load configuration object")

	// ErrSaveFailed is the only error SaveObject and WriteObject report.
	ErrSaveFailed = errors.New("cspace: failed to save configuration object")
)
