package r3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Camera interface {
	GetViewMatrix() mgl32.Mat4
	GetProjectionMatrix(aspect float32) mgl32.Mat4
}

type OrbitController struct {
	Target   mgl32.Vec3
	Distance float32
	Pitch    float32 // x rotation
	Yaw      float32 // y rotation
	Fov      float32 // vertical, degrees
}

func NewOrbitController(target mgl32.Vec3, dist, pitch, yaw float32) *OrbitController {
	return &OrbitController{
		Target:   target,
		Distance: dist,
		Pitch:    pitch,
		Yaw:      yaw,
		Fov:      45,
	}
}

func (c *OrbitController) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, AxisY)
}

func (c *OrbitController) GetProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, 0.05, 1000)
}

func (c *OrbitController) Position() mgl32.Vec3 {
	pitch := float64(mgl32.DegToRad(c.Pitch))
	yaw := float64(mgl32.DegToRad(c.Yaw))
	return mgl32.Vec3{
		c.Distance * float32(math.Cos(pitch)*math.Sin(yaw)),
		c.Distance * float32(math.Sin(pitch)),
		c.Distance * float32(math.Cos(pitch)*math.Cos(yaw)),
	}.Add(c.Target)
}

// Orbit turns the camera around its target by the given degrees.
func (c *OrbitController) Orbit(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 360))
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -89, 89)
}

// Projector maps world points onto a width x height viewport, y growing down.
type Projector struct {
	Eye           mgl32.Vec3
	Width, Height int

	viewProj mgl32.Mat4
}

// NewProjector captures the camera matrices once, aspect is the width/height
// ratio of the target in world units (terminal cells are twice as tall as wide).
func NewProjector(cam Camera, eye mgl32.Vec3, width, height int, aspect float32) *Projector {
	return &Projector{
		Eye:      eye,
		Width:    width,
		Height:   height,
		viewProj: cam.GetProjectionMatrix(aspect).Mul4(cam.GetViewMatrix()),
	}
}

// Project returns screen coordinates and the view depth of p. ok is false for
// points behind the near plane.
func (p *Projector) Project(v mgl32.Vec3) (x, y, depth float32, ok bool) {
	clip := p.viewProj.Mul4x1(v.Vec4(1))
	w := clip.W()
	if w <= 0.05 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	x = (ndc.X() + 1) * 0.5 * float32(p.Width)
	y = (1 - ndc.Y()) * 0.5 * float32(p.Height)
	return x, y, w, true
}

// PixelsPerUnit is the on-screen size of one world unit at the given view depth.
func (p *Projector) PixelsPerUnit(cam *OrbitController, depth float32) float32 {
	if depth <= 0 {
		return 0
	}
	half := float32(math.Tan(float64(mgl32.DegToRad(cam.Fov)) / 2))
	return float32(p.Height) / (2 * half * depth)
}
