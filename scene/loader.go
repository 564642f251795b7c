package scene

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"path"
	"strconv"
	"strings"

	"github.com/absfs/absfs"

	"github.com/absfs/cspace/vfs"
)

// ErrMalformedMesh is returned for unreadable text meshes and sphere trees.
var ErrMalformedMesh = errors.New("scene: malformed mesh")

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []Vec3
	Faces    [][3]int
}

// Triangles resolves the faces into triangles.
func (m *Mesh) Triangles() ([]Triangle, error) {
	out := make([]Triangle, len(m.Faces))
	for i, f := range m.Faces {
		for v, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return nil, fmt.Errorf("%w: face %d references vertex %d of %d", ErrMalformedMesh, i, idx, len(m.Vertices))
			}
			out[i].Vertices[v] = m.Vertices[idx]
		}
	}
	return out, nil
}

// ReadMesh parses the whitespace separated mesh format: a vertex count, that
// many "x y z" decimal triples, a face count and that many "a b c" vertex
// index triples.
func ReadMesh(r io.Reader) (*Mesh, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	next := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("%w: missing %s", ErrMalformedMesh, what)
		}
		return sc.Text(), nil
	}
	count := func(what string) (int, error) {
		tok, err := next(what)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseUint(tok, 10, 31)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q", ErrMalformedMesh, what, tok)
		}
		return int(n), nil
	}

	nv, err := count("vertex count")
	if err != nil {
		return nil, err
	}
	m := &Mesh{Vertices: make([]Vec3, 0, min(nv, 1<<16))}
	for i := 0; i < nv; i++ {
		var v Vec3
		for _, d := range []*Decimal{&v.X, &v.Y, &v.Z} {
			tok, err := next("vertex coordinate")
			if err != nil {
				return nil, err
			}
			if *d, err = ParseDecimal(tok); err != nil {
				return nil, fmt.Errorf("%w: vertex %d: %v", ErrMalformedMesh, i, err)
			}
		}
		m.Vertices = append(m.Vertices, v)
	}

	nf, err := count("face count")
	if err != nil {
		return nil, err
	}
	m.Faces = make([][3]int, 0, min(nf, 1<<16))
	for i := 0; i < nf; i++ {
		var f [3]int
		for k := range f {
			if f[k], err = count("face index"); err != nil {
				return nil, err
			}
		}
		m.Faces = append(m.Faces, f)
	}
	return m, nil
}

// LoadText imports a text mesh as a static triangle-list object.
func LoadText(fsys absfs.Filer, name string) (*Object, error) {
	data, err := vfs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	m, err := ReadMesh(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	triangles, err := m.Triangles()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return NewTriangleList(triangles), nil
}

// Directory file names read by LoadDirectory.
const (
	RobotFile    = "robot.txt"
	ObstacleFile = "obstacle.txt"
)

// LoadDirectory imports a robot/obstacle pair from dir: robot.txt becomes a
// rotating object and obstacle.txt a static one.
func LoadDirectory(fsys absfs.Filer, dir string) (robot, obstacle *Object, err error) {
	if obstacle, err = LoadText(fsys, path.Join(dir, ObstacleFile)); err != nil {
		return nil, nil, err
	}
	if robot, err = LoadText(fsys, path.Join(dir, RobotFile)); err != nil {
		return nil, nil, err
	}
	robot.Rotating = true
	return robot, obstacle, nil
}

// SphereTree is a hierarchy of ball approximations. Level k holds
// Degree^k balls, minus lines that could not be parsed.
type SphereTree struct {
	Degree int
	Levels [][]Ball
}

// ReadSphereTree parses a sphere tree: a "levels degree" header line, then
// one "x y z r extra" line per node, level by level. A node line that does
// not parse is skipped; a missing line fails. With normalize set, every
// center and radius is divided by the largest absolute center coordinate.
func ReadSphereTree(r io.Reader, normalize bool) (*SphereTree, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedMesh)
	}
	var levels, degree int
	if _, err := fmt.Sscan(sc.Text(), &levels, &degree); err != nil {
		return nil, fmt.Errorf("%w: header %q", ErrMalformedMesh, sc.Text())
	}
	if levels <= 0 || degree <= 0 {
		return nil, fmt.Errorf("%w: header %q", ErrMalformedMesh, sc.Text())
	}

	t := &SphereTree{Degree: degree}
	maxAbs := new(big.Rat)
	nodes := 1
	for k := 0; k < levels; k++ {
		var level []Ball
		for i := 0; i < nodes; i++ {
			if !sc.Scan() {
				return nil, fmt.Errorf("%w: level %d has fewer than %d nodes", ErrMalformedMesh, k, nodes)
			}
			b, ok := parseSphere(sc.Text())
			if !ok {
				continue
			}
			for _, c := range []Decimal{b.Center.X, b.Center.Y, b.Center.Z} {
				if a := c.Abs().Rat(); a.Cmp(maxAbs) > 0 {
					maxAbs = a
				}
			}
			level = append(level, b)
		}
		t.Levels = append(t.Levels, level)
		if nodes > 1<<24/degree {
			return nil, fmt.Errorf("%w: tree too large", ErrMalformedMesh)
		}
		nodes *= degree
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if normalize && maxAbs.Sign() > 0 {
		scale := decimalFromRat(new(big.Rat).Inv(maxAbs))
		for _, level := range t.Levels {
			for i := range level {
				b := &level[i]
				b.Center = Vec3{X: b.Center.X.Mul(scale), Y: b.Center.Y.Mul(scale), Z: b.Center.Z.Mul(scale)}
				b.Radius = b.Radius.Mul(scale)
			}
		}
	}
	return t, nil
}

func parseSphere(line string) (Ball, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Ball{}, false
	}
	var d [4]Decimal
	for i := range d {
		var err error
		if d[i], err = ParseDecimal(fields[i]); err != nil {
			return Ball{}, false
		}
	}
	return Ball{Center: Vec3{X: d[0], Y: d[1], Z: d[2]}, Radius: d[3]}, true
}

// LoadSphereTree imports one level of a sphere tree as a static ball-list
// object. A negative level selects the deepest one.
func LoadSphereTree(fsys absfs.Filer, name string, normalize bool, level int) (*Object, error) {
	data, err := vfs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	t, err := ReadSphereTree(bytes.NewReader(data), normalize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if level < 0 {
		level = len(t.Levels) - 1
	}
	if level >= len(t.Levels) {
		return nil, fmt.Errorf("scene: %s: level %d out of range [0, %d]", name, level, len(t.Levels)-1)
	}
	return NewBallList(append([]Ball(nil), t.Levels[level]...)), nil
}
