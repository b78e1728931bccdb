package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PushOut nudges box horizontally away from every obstacle it overlaps
// vertically, capped per obstacle and per call, then sweeps the nudge
// against the block store.
func PushOut(box Box, pos mgl64.Vec3, blockStore BlockStore, obstacles []AABB) mgl64.Vec3 {
	if len(obstacles) == 0 {
		return pos
	}

	var pushX, pushZ float64
	self := box.At(pos)

	for _, other := range obstacles {
		if self.MaxY <= other.MinY || self.MinY >= other.MaxY {
			continue
		}

		center := other.Center()
		dx := pos.X() - center.X()
		dz := pos.Z() - center.Z()
		dist2 := dx*dx + dz*dz

		otherHalf := math.Max(other.MaxX-other.MinX, other.MaxZ-other.MinZ) * 0.5
		minDist := math.Max(box.HalfWidth, box.HalfDepth) + otherHalf
		if dist2 >= minDist*minDist {
			continue
		}

		dist := math.Sqrt(dist2)
		if dist < CollisionAxisTolerance {
			dx = 1
			dz = 0
			dist = 1
		}

		overlap := minDist - dist
		if overlap <= 0 {
			continue
		}

		mag := math.Min(overlap*PushStrength, PushMaxPerBody)
		pushX += (dx / dist) * mag
		pushZ += (dz / dist) * mag
	}

	length := math.Hypot(pushX, pushZ)
	if length <= CollisionAxisTolerance {
		return pos
	}
	if length > PushMaxPerFrame {
		scale := PushMaxPerFrame / length
		pushX *= scale
		pushZ *= scale
	}

	newPos, _ := ResolveMovement(box, pos, mgl64.Vec3{pushX, 0, pushZ}, blockStore)
	return newPos
}
