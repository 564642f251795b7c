// Package scene models the input of a rotational motion-planning problem: a
// set of ball-list or triangle-list objects, some of which rotate, plus the
// begin and end orientations of the motion.
//
// Scenes are stored in ".arr" archives (see ReadArchive) and can be imported
// from text meshes and sphere trees.
package scene

import (
	"image/color"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/absfs/cspace/spin"
)

// Vec3 is a point with exact decimal coordinates.
type Vec3 struct {
	X, Y, Z Decimal
}

// Float returns the nearest float64 vector.
func (v Vec3) Float() r3.Vec {
	return r3.Vec{X: v.X.Float64(), Y: v.Y.Float64(), Z: v.Z.Float64()}
}

// Ball is a solid sphere.
type Ball struct {
	Center Vec3
	Radius Decimal
}

// Triangle is a triangle given by its three vertices.
type Triangle struct {
	Vertices [3]Vec3
}

// ObjectKind tags the geometry an object carries. The values are stored in
// archives.
type ObjectKind int32

const (
	KindBallList     ObjectKind = 0
	KindTriangleList ObjectKind = 1
)

func (k ObjectKind) String() string {
	switch k {
	case KindBallList:
		return "DecimalBallList"
	case KindTriangleList:
		return "DecimalTriangleList"
	}
	return "<unknown>"
}

// DefaultColor is the color of newly created objects.
var DefaultColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Object is one scene object. Exactly one of Balls and Triangles is used,
// according to Kind.
type Object struct {
	Kind      ObjectKind
	Balls     []Ball
	Triangles []Triangle
	Rotating  bool
	Visible   bool
	Color     color.NRGBA

	id uuid.UUID
}

// NewBallList returns a visible, static ball-list object.
func NewBallList(balls []Ball) *Object {
	return &Object{Kind: KindBallList, Balls: balls, Visible: true, Color: DefaultColor, id: uuid.New()}
}

// NewTriangleList returns a visible, static triangle-list object.
func NewTriangleList(triangles []Triangle) *Object {
	return &Object{Kind: KindTriangleList, Triangles: triangles, Visible: true, Color: DefaultColor, id: uuid.New()}
}

// ID identifies the object for the lifetime of the process. It is not stored
// in archives.
func (o *Object) ID() uuid.UUID {
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}
	return o.id
}

// Len returns the number of primitives.
func (o *Object) Len() int {
	if o.Kind == KindBallList {
		return len(o.Balls)
	}
	return len(o.Triangles)
}

// Motion holds the begin and end orientations as Euler angles in radians.
type Motion struct {
	BeginYaw, BeginPitch, BeginRoll float64
	EndYaw, EndPitch, EndRoll       float64
}

// Begin returns the begin orientation.
func (m Motion) Begin() quat.Number {
	return spin.QuaternionFromEuler(m.BeginRoll, m.BeginPitch, m.BeginYaw)
}

// End returns the end orientation.
func (m Motion) End() quat.Number {
	return spin.QuaternionFromEuler(m.EndRoll, m.EndPitch, m.EndYaw)
}

// Scene is an ordered list of objects and a motion.
type Scene struct {
	Objects []*Object
	Motion  Motion
}

// Add appends objects to the scene.
func (s *Scene) Add(objects ...*Object) {
	s.Objects = append(s.Objects, objects...)
}

// Remove deletes the object with the given id and reports whether it was
// present.
func (s *Scene) Remove(id uuid.UUID) bool {
	for i, o := range s.Objects {
		if o.ID() == id {
			s.Objects = append(s.Objects[:i], s.Objects[i+1:]...)
			return true
		}
	}
	return false
}
