package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type BlockHit struct {
	Distance float64
	Point    mgl64.Vec3
	Cell     [3]int
}

// RaycastBlocks walks the voxel grid along a unit direction and returns the
// first solid cell within maxDist.
func RaycastBlocks(origin, dir mgl64.Vec3, maxDist float64, blocks BlockStore) (BlockHit, bool) {
	if blocks == nil || maxDist < 0 {
		return BlockHit{}, false
	}
	if nearlyZero(dir.X()) && nearlyZero(dir.Y()) && nearlyZero(dir.Z()) {
		return BlockHit{}, false
	}

	x := int(math.Floor(origin.X()))
	y := int(math.Floor(origin.Y()))
	z := int(math.Floor(origin.Z()))

	stepX, tMaxX, tDeltaX := ddaAxis(origin.X(), dir.X(), x)
	stepY, tMaxY, tDeltaY := ddaAxis(origin.Y(), dir.Y(), y)
	stepZ, tMaxZ, tDeltaZ := ddaAxis(origin.Z(), dir.Z(), z)

	distance := 0.0
	for distance <= maxDist {
		if blocks.IsSolid(x, y, z) {
			return BlockHit{
				Distance: distance,
				Point:    origin.Add(dir.Mul(distance)),
				Cell:     [3]int{x, y, z},
			}, true
		}

		switch {
		case tMaxX <= tMaxY && tMaxX <= tMaxZ:
			x += stepX
			distance = tMaxX
			tMaxX += tDeltaX
		case tMaxY <= tMaxX && tMaxY <= tMaxZ:
			y += stepY
			distance = tMaxY
			tMaxY += tDeltaY
		default:
			z += stepZ
			distance = tMaxZ
			tMaxZ += tDeltaZ
		}
	}

	return BlockHit{}, false
}

func ddaAxis(origin, dir float64, cell int) (step int, tMax float64, tDelta float64) {
	if nearlyZero(dir) {
		return 0, math.Inf(1), math.Inf(1)
	}
	if dir > 0 {
		step = 1
		tMax = (float64(cell+1) - origin) / dir
		tDelta = 1.0 / dir
		return
	}
	step = -1
	inv := -dir
	tMax = (origin - float64(cell)) / inv
	tDelta = 1.0 / inv
	return
}

// RayBox intersects a ray with box using the slab method. A ray starting
// inside the box hits at distance 0.
func RayBox(origin, dir mgl64.Vec3, maxDist float64, box AABB) (float64, bool) {
	lo := [3]float64{box.MinX, box.MinY, box.MinZ}
	hi := [3]float64{box.MaxX, box.MaxY, box.MaxZ}

	tNear := 0.0
	tFar := maxDist
	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], dir[axis]
		if nearlyZero(d) {
			if o < lo[axis] || o > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - o) / d
		t2 := (hi[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tNear = math.Max(tNear, t1)
		tFar = math.Min(tFar, t2)
		if tNear > tFar {
			return 0, false
		}
	}
	return tNear, true
}
