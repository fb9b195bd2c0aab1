package r3d

import (
	"github.com/go-gl/mathgl/mgl32"
)

var (
	AxisX = mgl32.Vec3{1, 0, 0}
	AxisY = mgl32.Vec3{0, 1, 0}
	AxisZ = mgl32.Vec3{0, 0, 1}
)

/*
local transform: translate * rotate * scale
world transform: parent world * local, composed on demand up to the root
*/

type Node struct {
	Name string

	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Parent *Node
	Childs []*Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// SetParent moves n under parent, detaching it from its previous parent first.
// A nil parent makes n a root.
func (n *Node) SetParent(parent *Node) {
	if n.Parent == parent {
		return
	}
	n.Detach()
	if parent != nil {
		n.Parent = parent
		parent.Childs = append(parent.Childs, n)
	}
}

func (n *Node) Detach() {
	if n.Parent == nil {
		return
	}
	childs := n.Parent.Childs
	for i, c := range childs {
		if c == n {
			n.Parent.Childs = append(childs[:i], childs[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

// Euler builds a rotation from angles in degrees, applied around Z, then X, then Y.
func Euler(x, y, z float32) mgl32.Quat {
	qx := mgl32.QuatRotate(mgl32.DegToRad(x), AxisX)
	qy := mgl32.QuatRotate(mgl32.DegToRad(y), AxisY)
	qz := mgl32.QuatRotate(mgl32.DegToRad(z), AxisZ)
	return qy.Mul(qx).Mul(qz).Normalize()
}

// Rotate applies Euler angles in degrees relative to the node's own axes.
func (n *Node) Rotate(x, y, z float32) {
	n.Rotation = n.Rotation.Mul(Euler(x, y, z)).Normalize()
}

func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(n.Rotation.Mat4()).Mul4(s)
}

func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

// WorldScale returns the product of the X scale factors up the chain.
// Fractal nodes are scaled uniformly so a single factor is enough.
func (n *Node) WorldScale() float32 {
	s := n.Scale[0]
	for p := n.Parent; p != nil; p = p.Parent {
		s *= p.Scale[0]
	}
	return s
}

func (n *Node) WorldRotation() mgl32.Quat {
	q := n.Rotation
	for p := n.Parent; p != nil; p = p.Parent {
		q = p.Rotation.Mul(q)
	}
	return q.Normalize()
}

func (n *Node) Root() *Node {
	r := n
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Walk visits n and its subtree depth first. Returning false from fn skips the
// children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Childs {
		c.Walk(fn)
	}
}
