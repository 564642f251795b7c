package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/absfs/absfs"

	"github.com/absfs/cspace/internal/qstream"
	"github.com/absfs/cspace/vfs"
)

// ErrMalformedArchive is returned when an archive cannot be decoded.
var ErrMalformedArchive = errors.New("scene: malformed archive")

// ReadArchive decodes a scene archive:
//
//	int32 count
//	count objects:
//	    int32 kind, int32 n
//	    n balls (x y z r) or n triangles (9 coordinates), each a decimal string
//	    bool rotating, bool visible, color
//	float64 begin yaw, pitch, roll, end yaw, pitch, roll
//
// The first malformed field rejects the whole archive.
func ReadArchive(r io.Reader) (*Scene, error) {
	qr := qstream.NewReader(r)
	fail := func(what string, err error) (*Scene, error) {
		if err == nil {
			err = qr.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedArchive, what, err)
	}

	count := qr.Int32()
	if qr.Err() != nil {
		return fail("object count", nil)
	}
	if count < 0 {
		return fail("object count", fmt.Errorf("negative count %d", count))
	}

	s := &Scene{}
	for i := int32(0); i < count; i++ {
		o, err := readObject(qr)
		if err != nil {
			return fail(fmt.Sprintf("object %d", i), err)
		}
		s.Objects = append(s.Objects, o)
	}

	m := &s.Motion
	for _, f := range []*float64{&m.BeginYaw, &m.BeginPitch, &m.BeginRoll, &m.EndYaw, &m.EndPitch, &m.EndRoll} {
		*f = qr.Float64()
	}
	if qr.Err() != nil {
		return fail("motion", nil)
	}
	return s, nil
}

func readObject(qr *qstream.Reader) (*Object, error) {
	kind := ObjectKind(qr.Int32())
	n := qr.Int32()
	if err := qr.Err(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative primitive count %d", n)
	}

	var o *Object
	switch kind {
	case KindBallList:
		balls := make([]Ball, 0, min(int(n), 1<<16))
		for j := int32(0); j < n; j++ {
			c, err := readVec(qr)
			if err != nil {
				return nil, err
			}
			r, err := readDecimal(qr)
			if err != nil {
				return nil, err
			}
			balls = append(balls, Ball{Center: c, Radius: r})
		}
		o = NewBallList(balls)
	case KindTriangleList:
		triangles := make([]Triangle, 0, min(int(n), 1<<16))
		for j := int32(0); j < n; j++ {
			var t Triangle
			for v := range t.Vertices {
				p, err := readVec(qr)
				if err != nil {
					return nil, err
				}
				t.Vertices[v] = p
			}
			triangles = append(triangles, t)
		}
		o = NewTriangleList(triangles)
	default:
		return nil, fmt.Errorf("unknown object kind %d", kind)
	}

	o.Rotating = qr.Bool()
	o.Visible = qr.Bool()
	spec, c := qr.Color()
	if err := qr.Err(); err != nil {
		return nil, err
	}
	if spec != qstream.SpecRgb && spec != qstream.SpecInvalid {
		return nil, fmt.Errorf("unsupported color spec %d", spec)
	}
	o.Color = c
	return o, nil
}

func readVec(qr *qstream.Reader) (Vec3, error) {
	var v Vec3
	var err error
	for _, d := range []*Decimal{&v.X, &v.Y, &v.Z} {
		if *d, err = readDecimal(qr); err != nil {
			return Vec3{}, err
		}
	}
	return v, nil
}

func readDecimal(qr *qstream.Reader) (Decimal, error) {
	s := qr.QString()
	if err := qr.Err(); err != nil {
		return Decimal{}, err
	}
	return ParseDecimal(s)
}

// WriteArchive encodes s in the layout ReadArchive accepts.
func WriteArchive(w io.Writer, s *Scene) error {
	qw := qstream.NewWriter(w)
	qw.Int32(int32(len(s.Objects)))
	for _, o := range s.Objects {
		qw.Int32(int32(o.Kind))
		switch o.Kind {
		case KindBallList:
			qw.Int32(int32(len(o.Balls)))
			for _, b := range o.Balls {
				writeVec(qw, b.Center)
				qw.QString(b.Radius.String())
			}
		case KindTriangleList:
			qw.Int32(int32(len(o.Triangles)))
			for _, t := range o.Triangles {
				for _, v := range t.Vertices {
					writeVec(qw, v)
				}
			}
		default:
			return fmt.Errorf("scene: cannot archive object kind %d", o.Kind)
		}
		qw.Bool(o.Rotating)
		qw.Bool(o.Visible)
		qw.Color(o.Color)
	}
	m := s.Motion
	for _, f := range []float64{m.BeginYaw, m.BeginPitch, m.BeginRoll, m.EndYaw, m.EndPitch, m.EndRoll} {
		qw.Float64(f)
	}
	return qw.Err()
}

func writeVec(qw *qstream.Writer, v Vec3) {
	qw.QString(v.X.String())
	qw.QString(v.Y.String())
	qw.QString(v.Z.String())
}

// LoadArchive reads the named archive from fsys.
func LoadArchive(fsys absfs.Filer, name string) (*Scene, error) {
	data, err := vfs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return ReadArchive(bytes.NewReader(data))
}

// SaveArchive encodes s in memory and writes it to the named file.
func SaveArchive(fsys absfs.Filer, name string, s *Scene) error {
	var buf bytes.Buffer
	if err := WriteArchive(&buf, s); err != nil {
		return err
	}
	return vfs.WriteFile(fsys, name, buf.Bytes(), 0o644)
}
