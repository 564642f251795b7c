// Package cspace models the configuration space of a rigid-body rotation
// problem over the double cover of the rotation group.
//
// A configuration space is computed by an external representation engine in
// one of three forms:
//
//   - RasterSpace: a dense, power-of-two voxel grid over the spin cube
//   - CellSpace:   a sampled cell decomposition with explicit coordinates
//   - ExactSpace:  spin quadrics, their intersection curves and points
//
// Each form implements ConfigurationSpace, the contract a render loop needs,
// and may expose a Router that searches for routes between orientations.
// Orientations are gonum quaternions; the conversion to the engine's spin
// coordinates happens in GenericRouter and nowhere else.
//
// # Objects and files
//
// An Object owns exactly one space or one found route. Raster objects
// persist to ".csp" files:
//
//	uint32 type tag (0 raster, 1 cell, 2 exact, 3 route)
//	uint32 resolution
//	uint32 blob length, blob
//
// All integers are big-endian. The blob is a codec blob holding resolution³
// voxel bytes. Cell, exact and route objects are not persisted: saving them
// fails and loading their tags fails.
//
//	obj, err := cspace.LoadObject(fsys, "space.csp", nil)
//	if err != nil {
//	    return err // cspace.ErrLoadFailed; the cause is logged
//	}
//	fmt.Println(obj.Kind(), obj.Raster().Histogram())
//
// # Rendering
//
// Spaces draw through a Backend. HeadlessBackend is the default; it prepares
// textures, splats and meshes without a graphics context and records the
// draw calls.
package cspace
