package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const gimbalLockThreshold = 1 - 1e-6

// result in radians, rotation order Z then X then Y.
// At gimbal lock (x at +-90 degrees) only y-z or y+z is defined, so z is 0.
func QuatToEuler(q mgl32.Quat) (e mgl32.Vec3) {
	q = q.Normalize()
	x, y, z, w := float64(q.X()), float64(q.Y()), float64(q.Z()), float64(q.W)

	sinp := 2 * (w*x - y*z)
	if math.Abs(sinp) >= gimbalLockThreshold {
		e[0] = float32(math.Copysign(math.Pi/2, sinp))
		e[1] = float32(math.Atan2(2*(w*y-x*z), 1-2*(y*y+z*z)))
		return e
	}
	e[0] = float32(math.Asin(sinp))
	e[1] = float32(math.Atan2(2*(w*y+x*z), 1-2*(x*x+y*y)))
	e[2] = float32(math.Atan2(2*(w*z+x*y), 1-2*(x*x+z*z)))

	return e
}

func RadiansToDegreeV3(v mgl32.Vec3) mgl32.Vec3 {
	return v.Mul(180 / math.Pi)
}

func QuatToEulerDegrees(q mgl32.Quat) mgl32.Vec3 {
	return RadiansToDegreeV3(QuatToEuler(q))
}
