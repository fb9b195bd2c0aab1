package utils

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/fractal_browser/r3d"
)

var eulerTests = []struct {
	in, out mgl32.Vec3
}{
	{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 0}},
	{mgl32.Vec3{0, 0, -90}, mgl32.Vec3{0, 0, -90}},
	{mgl32.Vec3{30, 45, 60}, mgl32.Vec3{30, 45, 60}},
	{mgl32.Vec3{-20, 170, 5}, mgl32.Vec3{-20, 170, 5}},
	// gimbal lock: roll folds into yaw
	{mgl32.Vec3{90, 0, 0}, mgl32.Vec3{90, 0, 0}},
	{mgl32.Vec3{90, 0, 10}, mgl32.Vec3{90, -10, 0}},
	{mgl32.Vec3{-90, 30, 20}, mgl32.Vec3{-90, 50, 0}},
}

func TestQuatToEulerDegrees(t *testing.T) {
	for _, test := range eulerTests {
		q := r3d.Euler(test.in[0], test.in[1], test.in[2])
		out := QuatToEulerDegrees(q)
		if out.Sub(test.out).Len() > 1e-2 {
			t.Errorf("QuatToEulerDegrees(Euler(%v))=%v; expected %v", test.in, out, test.out)
		}
		if back := r3d.Euler(out[0], out[1], out[2]); !back.OrientationEqualThreshold(q, 1e-5) {
			t.Errorf("Euler(%v) does not rotate like Euler(%v)", out, test.in)
		}
	}
}

func TestRandomName(t *testing.T) {
	SeedNames(1)
	var rng RandomNameGenerator
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		name := rng.RandomName()
		if name == "" || seen[name] {
			t.Fatalf("RandomName returned %q twice or empty", name)
		}
		seen[name] = true
	}
}
