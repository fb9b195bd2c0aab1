package mesh

import (
	"math"

	"github.com/pkg/errors"
)

type Mesh struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
	Indices   []uint16
}

func (m *Mesh) TrianglesCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the vertex positions of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c [3]float32) {
	return m.Positions[m.Indices[i*3]], m.Positions[m.Indices[i*3+1]], m.Positions[m.Indices[i*3+2]]
}

// Radius is the distance from the origin to the farthest vertex.
func (m *Mesh) Radius() float32 {
	var r float64
	for _, p := range m.Positions {
		d := math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2]))
		if d > r {
			r = d
		}
	}
	return float32(r)
}

func ByName(name string) (*Mesh, error) {
	switch name {
	case "", "cube":
		return Cube(), nil
	case "sphere":
		return Sphere(8, 12), nil
	default:
		return nil, errors.Errorf("unknown mesh %q", name)
	}
}

// Cube is a unit cube centered on the origin with per-face normals,
// 4 vertices and 2 counter-clockwise triangles per face.
func Cube() *Mesh {
	faces := [6]struct {
		normal, u, v [3]float32
	}{
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
	}

	m := &Mesh{Name: "cube"}
	for _, f := range faces {
		base := uint16(len(m.Positions))
		for _, c := range [4][2]float32{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}} {
			var p [3]float32
			for k := 0; k < 3; k++ {
				p[k] = f.normal[k]*0.5 + f.u[k]*c[0] + f.v[k]*c[1]
			}
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, f.normal)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// Sphere is a UV sphere of diameter 1 with smooth normals.
func Sphere(rings, segments int) *Mesh {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}

	m := &Mesh{Name: "sphere"}
	for r := 0; r <= rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			n := [3]float32{
				float32(math.Sin(theta) * math.Sin(phi)),
				float32(math.Cos(theta)),
				float32(math.Sin(theta) * math.Cos(phi)),
			}
			m.Normals = append(m.Normals, n)
			m.Positions = append(m.Positions, [3]float32{n[0] * 0.5, n[1] * 0.5, n[2] * 0.5})
		}
	}

	stride := uint16(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint16(r)*stride + uint16(s)
			b := a + stride
			if r != 0 {
				m.Indices = append(m.Indices, a, b, a+1)
			}
			if r != rings-1 {
				m.Indices = append(m.Indices, a+1, b, b+1)
			}
		}
	}
	return m
}
