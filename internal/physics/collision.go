package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type BlockStore interface {
	IsSolid(x, y, z int) bool
}

type AABB struct {
	MinX float64
	MinY float64
	MinZ float64
	MaxX float64
	MaxY float64
	MaxZ float64
}

// Box is an axis-aligned collision shape anchored to a body origin. Base is
// the distance from the origin down to the bottom face: 0 for feet-anchored
// characters, half the height for centre-anchored rigid bodies.
type Box struct {
	HalfWidth float64
	HalfDepth float64
	Height    float64
	Base      float64
}

// CenteredBox builds a Box whose origin sits at its centre.
func CenteredBox(halfExtents mgl64.Vec3) Box {
	return Box{
		HalfWidth: halfExtents.X(),
		HalfDepth: halfExtents.Z(),
		Height:    halfExtents.Y() * 2,
		Base:      halfExtents.Y(),
	}
}

func (b Box) At(pos mgl64.Vec3) AABB {
	return AABB{
		MinX: pos.X() - b.HalfWidth,
		MinY: pos.Y() - b.Base,
		MinZ: pos.Z() - b.HalfDepth,
		MaxX: pos.X() + b.HalfWidth,
		MaxY: pos.Y() - b.Base + b.Height,
		MaxZ: pos.Z() + b.HalfDepth,
	}
}

func (a AABB) Center() mgl64.Vec3 {
	return mgl64.Vec3{(a.MinX + a.MaxX) / 2, (a.MinY + a.MaxY) / 2, (a.MinZ + a.MaxZ) / 2}
}

func (a AABB) Intersects(b AABB) bool {
	return a.MinX < b.MaxX &&
		a.MaxX > b.MinX &&
		a.MinY < b.MaxY &&
		a.MaxY > b.MinY &&
		a.MinZ < b.MaxZ &&
		a.MaxZ > b.MinZ
}

func CollidesWithBlock(aabb AABB, blockStore BlockStore) bool {
	if blockStore == nil {
		return false
	}

	minX := floorForMin(aabb.MinX)
	maxX := floorForMax(aabb.MaxX)
	minY := floorForMin(aabb.MinY)
	maxY := floorForMax(aabb.MaxY)
	minZ := floorForMin(aabb.MinZ)
	maxZ := floorForMax(aabb.MaxZ)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				if !blockStore.IsSolid(x, y, z) {
					continue
				}
				if aabb.Intersects(blockAABB(x, y, z)) {
					return true
				}
			}
		}
	}

	return false
}

// ResolveMovement sweeps box from pos by delta one axis at a time (Y, X, Z)
// and returns the reached position together with the displacement actually
// applied. Any axis that hit a block is shortened to the contact distance.
func ResolveMovement(box Box, pos, delta mgl64.Vec3, blockStore BlockStore) (mgl64.Vec3, mgl64.Vec3) {
	newPos := pos
	var applied mgl64.Vec3

	for _, axis := range [3]int{1, 0, 2} {
		allowed := resolveAxis(box, newPos, axis, delta[axis], blockStore)
		newPos[axis] += allowed
		applied[axis] = allowed
	}

	return newPos, applied
}

// Blocked reports whether the sweep shortened the requested motion on axis.
func Blocked(requested, applied mgl64.Vec3, axis int) bool {
	return !nearlyEqual(requested[axis], applied[axis])
}

// resolveAxis clips delta along one axis against every solid block the
// swept face would cross.
func resolveAxis(box Box, pos mgl64.Vec3, axis int, delta float64, blockStore BlockStore) float64 {
	if blockStore == nil || nearlyZero(delta) {
		return delta
	}

	aabb := box.At(pos)
	lo := [3]float64{aabb.MinX, aabb.MinY, aabb.MinZ}
	hi := [3]float64{aabb.MaxX, aabb.MaxY, aabb.MaxZ}

	// the two axes the swept face spans
	u, v := (axis+1)%3, (axis+2)%3
	minU, maxU := floorForMin(lo[u]), floorForMax(hi[u])
	minV, maxV := floorForMin(lo[v]), floorForMax(hi[v])

	allowed := delta
	cell := [3]int{}

	if delta > 0 {
		start := int(math.Floor(hi[axis]))
		end := int(math.Floor(hi[axis] + delta))
		for c := start; c <= end; c++ {
			for i := minU; i <= maxU; i++ {
				for j := minV; j <= maxV; j++ {
					cell[axis], cell[u], cell[v] = c, i, j
					if !blockStore.IsSolid(cell[0], cell[1], cell[2]) {
						continue
					}
					candidate := float64(c) - hi[axis]
					if candidate < allowed {
						allowed = candidate
					}
				}
			}
		}
		return allowed
	}

	start := int(math.Floor(lo[axis] + delta))
	end := int(math.Floor(lo[axis] - CollisionAxisTolerance))
	for c := end; c >= start; c-- {
		for i := minU; i <= maxU; i++ {
			for j := minV; j <= maxV; j++ {
				cell[axis], cell[u], cell[v] = c, i, j
				if !blockStore.IsSolid(cell[0], cell[1], cell[2]) {
					continue
				}
				candidate := float64(c+1) - lo[axis]
				if candidate > allowed {
					allowed = candidate
				}
			}
		}
	}
	return allowed
}

// StandingOn probes a hair below box for solid ground.
func StandingOn(box Box, pos mgl64.Vec3, blockStore BlockStore, probe float64) bool {
	if blockStore == nil {
		return false
	}
	aabb := box.At(pos)
	aabb.MinY -= probe
	aabb.MaxY -= probe
	return CollidesWithBlock(aabb, blockStore)
}

func blockAABB(x, y, z int) AABB {
	return AABB{
		MinX: float64(x),
		MinY: float64(y),
		MinZ: float64(z),
		MaxX: float64(x + 1),
		MaxY: float64(y + 1),
		MaxZ: float64(z + 1),
	}
}

func floorForMin(v float64) int {
	return int(math.Floor(v + CollisionAxisTolerance))
}

func floorForMax(v float64) int {
	return int(math.Floor(v - CollisionAxisTolerance))
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionAxisTolerance
}
