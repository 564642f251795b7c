package cspace

import (
	"log/slog"

	"gonum.org/v1/gonum/num/quat"

	"github.com/absfs/cspace/codec"
)

// ConfigurationSpace is a computed configuration space as the render loop
// sees it. Render must only be called while the backend's graphics context
// is current.
type ConfigurationSpace interface {
	Render()
	// Router returns nil when the space cannot search for routes.
	Router() Router
	NeedsLighting() bool
	NeedsShaderLighting() bool
}

// Router searches for routes between two orientations.
type Router interface {
	// FindRoute returns nil when no route exists.
	FindRoute(begin, end quat.Number) Route
}

// Route is a path through free space, t in [0, 1].
type Route interface {
	Evaluate(t float64) quat.Number
}

// Options are shared by the space constructors and the loaders.
type Options struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Backend defaults to a new HeadlessBackend.
	Backend Backend
	// Codec compresses raster payloads; defaults to codec.Default().
	Codec *codec.Codec
	// Renderer selects the raster volume renderer. The zero value is
	// GaussianSplatter.
	Renderer VolumeRendererType
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Backend == nil {
		out.Backend = NewHeadlessBackend()
	}
	if out.Codec == nil {
		out.Codec = codec.Default()
	}
	return out
}

// baseSpace carries the defaults of the ConfigurationSpace contract.
type baseSpace struct {
	router Router
}

func (b *baseSpace) Router() Router { return b.router }

func (b *baseSpace) NeedsLighting() bool       { return false }
func (b *baseSpace) NeedsShaderLighting() bool { return false }
