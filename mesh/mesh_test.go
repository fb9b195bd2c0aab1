package mesh

import (
	"testing"
)

func TestCube(t *testing.T) {
	m := Cube()
	if len(m.Positions) != 24 || len(m.Normals) != 24 {
		t.Fatalf("Cube() has %d positions, %d normals; expected 24", len(m.Positions), len(m.Normals))
	}
	if m.TrianglesCount() != 12 {
		t.Errorf("Cube().TrianglesCount()=%d; expected 12", m.TrianglesCount())
	}
	for i, p := range m.Positions {
		for k := 0; k < 3; k++ {
			if p[k] != 0.5 && p[k] != -0.5 {
				t.Errorf("vertex %d component %d = %v; expected +-0.5", i, k, p[k])
			}
		}
	}

	// every triangle winds counter-clockwise when seen from outside
	for i := 0; i < m.TrianglesCount(); i++ {
		a, b, c := m.Triangle(i)
		n := m.Normals[m.Indices[i*3]]
		e1 := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		e2 := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
		cross := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		if dot := cross[0]*n[0] + cross[1]*n[1] + cross[2]*n[2]; dot <= 0 {
			t.Errorf("triangle %d winds against its normal (dot=%v)", i, dot)
		}
	}
}

func TestSphere(t *testing.T) {
	m := Sphere(8, 12)
	if got := m.Radius(); got < 0.499 || got > 0.501 {
		t.Errorf("Sphere radius=%v; expected 0.5", got)
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			t.Fatalf("index %d out of range %d", idx, len(m.Positions))
		}
	}
	if m.TrianglesCount() != 2*12*(8-1) {
		t.Errorf("Sphere(8,12).TrianglesCount()=%d; expected %d", m.TrianglesCount(), 2*12*7)
	}
}

var byNameTests = []struct {
	in  string
	out string
	err bool
}{
	{"", "cube", false},
	{"cube", "cube", false},
	{"sphere", "sphere", false},
	{"teapot", "", true},
}

func TestByName(t *testing.T) {
	for _, test := range byNameTests {
		m, err := ByName(test.in)
		if test.err {
			if err == nil {
				t.Errorf("ByName(%q) expected error", test.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ByName(%q) error: %v", test.in, err)
		} else if m.Name != test.out {
			t.Errorf("ByName(%q).Name=%q; expected %q", test.in, m.Name, test.out)
		}
	}
}
