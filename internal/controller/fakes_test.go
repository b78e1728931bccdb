package controller

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

type fakeCharacter struct {
	grounded bool
	velocity mgl64.Vec3
	rotation mgl64.Quat
	moves    []mgl64.Vec3
}

func newFakeCharacter(grounded bool) *fakeCharacter {
	return &fakeCharacter{grounded: grounded, rotation: mgl64.QuatIdent()}
}

func (f *fakeCharacter) IsGrounded() bool         { return f.grounded }
func (f *fakeCharacter) Velocity() mgl64.Vec3     { return f.velocity }
func (f *fakeCharacter) Move(delta mgl64.Vec3)    { f.moves = append(f.moves, delta) }
func (f *fakeCharacter) Rotation() mgl64.Quat     { return f.rotation }
func (f *fakeCharacter) SetRotation(q mgl64.Quat) { f.rotation = q }
func (f *fakeCharacter) lastMove() mgl64.Vec3     { return f.moves[len(f.moves)-1] }

type forceCall struct {
	force mgl64.Vec3
	mode  ForceMode
}

type pointForce struct {
	force mgl64.Vec3
	point mgl64.Vec3
}

type fakeRigidBody struct {
	position mgl64.Vec3
	rotation mgl64.Quat
	velocity mgl64.Vec3
	angular  mgl64.Vec3
	mass     float64

	forces      []forceCall
	torques     []mgl64.Vec3
	pointForces []pointForce
}

func newFakeRigidBody() *fakeRigidBody {
	return &fakeRigidBody{rotation: mgl64.QuatIdent(), mass: 1}
}

func (f *fakeRigidBody) Position() mgl64.Vec3        { return f.position }
func (f *fakeRigidBody) Rotation() mgl64.Quat        { return f.rotation }
func (f *fakeRigidBody) Velocity() mgl64.Vec3        { return f.velocity }
func (f *fakeRigidBody) SetVelocity(v mgl64.Vec3)    { f.velocity = v }
func (f *fakeRigidBody) AngularVelocity() mgl64.Vec3 { return f.angular }
func (f *fakeRigidBody) Mass() float64               { return f.mass }

func (f *fakeRigidBody) AddForce(force mgl64.Vec3, mode ForceMode) {
	f.forces = append(f.forces, forceCall{force: force, mode: mode})
}

func (f *fakeRigidBody) AddTorque(torque mgl64.Vec3) {
	f.torques = append(f.torques, torque)
}

func (f *fakeRigidBody) AddForceAtPosition(force, point mgl64.Vec3) {
	f.pointForces = append(f.pointForces, pointForce{force: force, point: point})
}

func (f *fakeRigidBody) forcesOf(mode ForceMode) []mgl64.Vec3 {
	var out []mgl64.Vec3
	for _, c := range f.forces {
		if c.mode == mode {
			out = append(out, c.force)
		}
	}
	return out
}

type fakeRaycaster struct {
	hit RaycastHit
	ok  bool

	origin  mgl64.Vec3
	dir     mgl64.Vec3
	maxDist float64
	mask    LayerMask
}

func (f *fakeRaycaster) Raycast(origin, dir mgl64.Vec3, maxDistance float64, mask LayerMask) (RaycastHit, bool) {
	f.origin, f.dir, f.maxDist, f.mask = origin, dir, maxDistance, mask
	return f.hit, f.ok
}

type fakeView struct{ yaw float64 }

func (f fakeView) Yaw() float64 { return f.yaw }

type fakeLookTarget struct{ rotation mgl64.Quat }

func (f *fakeLookTarget) SetLocalRotation(q mgl64.Quat) { f.rotation = q }

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]any
}

func (p *recordingPublisher) Publish(name string, evt any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = make(map[string][]any)
	}
	p.events[name] = append(p.events[name], evt)
}

func (p *recordingPublisher) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[name])
}

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func approxVec(a, b mgl64.Vec3, eps float64) bool {
	return approx(a.X(), b.X(), eps) && approx(a.Y(), b.Y(), eps) && approx(a.Z(), b.Z(), eps)
}
