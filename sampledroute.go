package cspace

import "github.com/absfs/cspace/spin"

// Route sampling parameters.
const (
	RouteSamples    = 100
	RouteTubeRadius = 0.03
	RouteTubeSides  = 12
)

// SampledRoute draws a route as a tube through its RouteSamples+1 spin
// samples at t = i/RouteSamples. It has no router.
type SampledRoute struct {
	baseSpace
	backend Backend
	samples []spin.Spin
	mesh    Mesh
}

// NewSampledRoute samples route and builds its tube mesh.
func NewSampledRoute(route Route, opts *Options) *SampledRoute {
	o := opts.withDefaults()
	samples := make([]spin.Spin, RouteSamples+1)
	for i := range samples {
		t := float64(i) / RouteSamples
		samples[i] = spin.FromQuaternion(route.Evaluate(t))
	}
	return &SampledRoute{
		backend: o.Backend,
		samples: samples,
		mesh:    o.Backend.NewPolyConeMesh(samples, RouteTubeRadius, RouteTubeSides),
	}
}

func (r *SampledRoute) Render() {
	r.backend.SetMaterial(CurveMaterial)
	r.mesh.Render()
}

func (r *SampledRoute) NeedsLighting() bool       { return true }
func (r *SampledRoute) NeedsShaderLighting() bool { return true }

// Samples returns a copy of the spin samples.
func (r *SampledRoute) Samples() []spin.Spin { return append([]spin.Spin(nil), r.samples...) }
