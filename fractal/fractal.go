// Package fractal grows a tree of scaled, rotated copies of a mesh. Every node
// spawns up to five children one after another, each child offset along one
// of five fixed directions from its parent, and spins on its own axis for as
// long as it stays active.
package fractal

import (
	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/mogaika/fractal_browser/material"
	"github.com/mogaika/fractal_browser/mesh"
	"github.com/mogaika/fractal_browser/r3d"
)

const ChildCount = 5

const (
	RootName  = "Fractal"
	ChildName = "Fractal Child"
)

// Directions and Orientations are indexed by child index, which is also the
// spawn order: up, right, left, forward, back.
var Directions = [ChildCount]mgl32.Vec3{
	{0, 1, 0},
	{1, 0, 0},
	{-1, 0, 0},
	{0, 0, 1},
	{0, 0, -1},
}

var Orientations = [ChildCount]mgl32.Quat{
	mgl32.QuatIdent(),
	r3d.Euler(0, 0, -90),
	r3d.Euler(0, 0, 90),
	r3d.Euler(90, 0, 0),
	r3d.Euler(-90, 0, 0),
}

type SpawnState int

const (
	SpawnIdle SpawnState = iota
	SpawnWaiting
	SpawnDone
)

func (s SpawnState) String() string {
	switch s {
	case SpawnIdle:
		return "idle"
	case SpawnWaiting:
		return "waiting"
	case SpawnDone:
		return "done"
	}
	return "unknown"
}

// Random is the uniform source the tree draws from. *rand.Rand satisfies it.
type Random interface {
	Float32() float32
}

func randomRange(r Random, min, max float32) float32 {
	return min + r.Float32()*(max-min)
}

type Settings struct {
	MaxDepth         int
	ChildScale       float32
	MaxRotationSpeed float32 // degrees per second
	MaxTwist         float32 // degrees
	SpawnDelayMin    float32 // seconds
	SpawnDelayMax    float32
	LowColor         colorful.Color
	HighColor        colorful.Color
}

type Fractal struct {
	Transform *r3d.Node

	Mesh     *mesh.Mesh
	Material *material.Material // template, cloned per depth by the root
	Settings

	depth         int
	rotationSpeed float32
	twist         float32
	materials     material.Table
	random        Random

	parent   *Fractal
	children []*Fractal

	active    bool
	state     SpawnState
	nextChild int
	remaining float32
}

// New returns an inactive root. Call Activate to build the materials table and
// start spawning.
func New(s Settings, m *mesh.Mesh, template *material.Material, random Random) *Fractal {
	return &Fractal{
		Transform: r3d.NewNode(RootName),
		Mesh:      m,
		Material:  template,
		Settings:  s,
		random:    random,
	}
}

// Initialize turns an empty child into the childIndex-th child of parent.
// Placement depends only on the parent's settings and childIndex.
func (f *Fractal) Initialize(parent *Fractal, childIndex int) error {
	if childIndex < 0 || childIndex >= ChildCount {
		return errors.Errorf("child index %d out of range [0, %d)", childIndex, ChildCount)
	}
	if f.Transform == nil {
		f.Transform = r3d.NewNode(ChildName)
	}

	f.Mesh = parent.Mesh
	f.Material = parent.Material
	f.materials = parent.materials
	f.Settings = parent.Settings
	f.random = parent.random
	f.depth = parent.depth + 1

	f.parent = parent
	parent.children = append(parent.children, f)
	f.Transform.SetParent(parent.Transform)

	s := f.ChildScale
	f.Transform.Scale = mgl32.Vec3{s, s, s}
	f.Transform.Position = Directions[childIndex].Mul(s + s*s)
	f.Transform.Rotation = Orientations[childIndex]
	return nil
}

func (f *Fractal) Activate() {
	if f.active || f.state == SpawnDone {
		return
	}
	f.active = true

	if f.materials == nil {
		template := f.Material
		if template == nil {
			template = material.Default()
		}
		f.materials = material.NewTable(template, f.LowColor, f.HighColor, f.MaxDepth)
	}

	f.rotationSpeed = randomRange(f.random, -f.MaxRotationSpeed, f.MaxRotationSpeed)
	f.twist = randomRange(f.random, -f.MaxTwist, f.MaxTwist)
	f.Transform.Rotate(f.twist, 0, 0)

	if f.depth < f.MaxDepth {
		f.wait()
	} else {
		f.state = SpawnDone
	}
}

func (f *Fractal) wait() {
	f.state = SpawnWaiting
	f.remaining = randomRange(f.random, f.SpawnDelayMin, f.SpawnDelayMax)
}

// Tick advances the node by dt seconds: it spins about its local Y axis and,
// once the pending delay has elapsed, creates at most one child. The new
// child, already activated, is returned so the caller can track it.
func (f *Fractal) Tick(dt float32) *Fractal {
	if !f.active {
		return nil
	}
	f.Transform.Rotate(0, f.rotationSpeed*dt, 0)

	if f.state != SpawnWaiting {
		return nil
	}
	f.remaining -= dt
	if f.remaining > 0 {
		return nil
	}

	child := &Fractal{}
	if err := child.Initialize(f, f.nextChild); err != nil {
		// nextChild stays in range while waiting
		panic(errors.Wrapf(err, "Broken spawn sequence at depth %d", f.depth))
	}
	child.Activate()

	f.nextChild++
	if f.nextChild < ChildCount {
		f.wait()
	} else {
		f.state = SpawnDone
		f.remaining = 0
	}
	return child
}

// Deactivate stops the node and its subtree. Pending spawns never fire and the
// nodes stop spinning; the subtree stays attached until Detach.
func (f *Fractal) Deactivate() {
	f.Walk(func(n *Fractal) bool {
		n.active = false
		n.state = SpawnDone
		n.remaining = 0
		return true
	})
}

// Detach removes f from its parent, both in the fractal tree and the
// transform hierarchy.
func (f *Fractal) Detach() {
	if p := f.parent; p != nil {
		for i, c := range p.children {
			if c == f {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
		f.parent = nil
	}
	f.Transform.Detach()
}

// Walk visits f and its subtree depth first, in spawn order.
func (f *Fractal) Walk(fn func(*Fractal) bool) {
	if !fn(f) {
		return
	}
	for _, c := range f.children {
		c.Walk(fn)
	}
}

func (f *Fractal) Depth() int { return f.depth }
func (f *Fractal) RotationSpeed() float32 { return f.rotationSpeed }
func (f *Fractal) Twist() float32 { return f.twist }
func (f *Fractal) Materials() material.Table { return f.materials }
func (f *Fractal) Parent() *Fractal { return f.parent }
func (f *Fractal) Children() []*Fractal { return f.children }
func (f *Fractal) Active() bool { return f.active }
func (f *Fractal) State() SpawnState { return f.state }
func (f *Fractal) NextChild() int { return f.nextChild }
func (f *Fractal) Remaining() float32 { return f.remaining }
func (f *Fractal) IsLeaf() bool { return f.depth >= f.MaxDepth }
func (f *Fractal) RenderMaterial() *material.Material { return f.materials.At(f.depth) }

// TreeSize is the number of nodes of a completely grown tree.
func TreeSize(maxDepth int) int {
	total, level := 0, 1
	for d := 0; d <= maxDepth; d++ {
		total += level
		level *= ChildCount
	}
	return total
}
