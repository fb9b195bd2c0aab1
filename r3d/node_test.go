package r3d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestWorldTransform(t *testing.T) {
	root := NewNode("root")
	root.Position = mgl32.Vec3{1, 0, 0}
	root.Scale = mgl32.Vec3{2, 2, 2}

	child := NewNode("child")
	child.SetParent(root)
	child.Position = mgl32.Vec3{0, 1, 0}
	child.Scale = mgl32.Vec3{0.5, 0.5, 0.5}

	if p := child.WorldPosition(); p.Sub(mgl32.Vec3{1, 2, 0}).Len() > 1e-5 {
		t.Errorf("world position %v", p)
	}
	if s := child.WorldScale(); s != 1 {
		t.Errorf("world scale %v", s)
	}
	if child.Root() != root || child.Depth() != 1 {
		t.Error("bad hierarchy")
	}

	root.Rotation = Euler(0, 0, 90)
	if p := child.WorldPosition(); p.Sub(mgl32.Vec3{-1, 0, 0}).Len() > 1e-5 {
		t.Errorf("rotated world position %v", p)
	}
}

func TestSetParentDetaches(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	c := NewNode("c")
	c.SetParent(a)
	c.SetParent(b)
	if len(a.Childs) != 0 || len(b.Childs) != 1 || c.Parent != b {
		t.Errorf("a=%d b=%d", len(a.Childs), len(b.Childs))
	}

	n := 0
	b.Walk(func(*Node) bool { n++; return true })
	if n != 2 {
		t.Errorf("walked %d nodes", n)
	}

	c.SetParent(nil)
	if len(b.Childs) != 0 || c.Parent != nil {
		t.Error("SetParent(nil) did not detach")
	}
}

func TestProjectorCentersTarget(t *testing.T) {
	cam := NewOrbitController(mgl32.Vec3{}, 10, 20, 30)
	p := NewProjector(cam, cam.Position(), 100, 50, 2)
	x, y, depth, ok := p.Project(mgl32.Vec3{})
	if !ok || mgl32.Abs(x-50) > 1e-3 || mgl32.Abs(y-25) > 1e-3 {
		t.Errorf("target projected to %v,%v ok=%v", x, y, ok)
	}
	if mgl32.Abs(depth-10) > 1e-3 {
		t.Errorf("depth %v", depth)
	}
	if _, _, _, ok := p.Project(cam.Position().Mul(2)); ok {
		t.Error("point behind the camera projected")
	}

	cam.Orbit(350, 100)
	if cam.Yaw != 20 || cam.Pitch != 89 {
		t.Errorf("orbit yaw %v pitch %v", cam.Yaw, cam.Pitch)
	}
}
