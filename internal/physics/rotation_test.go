package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func approxVec(t *testing.T, got, want mgl64.Vec3, field string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("%s = %v, want %v", field, got, want)
		}
	}
}

func TestYawRotation_TurnsForwardTowardRight(t *testing.T) {
	approxVec(t, YawRotation(90).Rotate(Forward), Right, "yaw(90)*forward")
	approxVec(t, YawRotation(90).Rotate(Right), mgl64.Vec3{0, 0, -1}, "yaw(90)*right")
}

func TestPitchRotation_PositiveLooksDown(t *testing.T) {
	f := PitchRotation(30).Rotate(Forward)
	if f.Y() >= 0 {
		t.Fatalf("pitch(30)*forward = %v, want negative y", f)
	}
}

func TestYawOf(t *testing.T) {
	approxEqual(t, YawOf(YawRotation(270)), 270, 1e-9, "yaw(270)")
	approxEqual(t, YawOf(YawRotation(-90)), 270, 1e-9, "yaw(-90)")
	approxEqual(t, YawOf(mgl64.QuatIdent()), 0, 1e-9, "yaw(identity)")
}

func TestLookRotation(t *testing.T) {
	approxEqual(t, YawOf(LookRotation(Right)), 90, 1e-9, "look(right)")
	approxVec(t, LookRotation(mgl64.Vec3{0, 0, -2}).Rotate(Forward), mgl64.Vec3{0, 0, -1}, "look(back)")

	up := LookRotation(mgl64.Vec3{1, 0, 1}).Rotate(Up)
	approxVec(t, up, Up, "look(diag)*up")

	if LookRotation(mgl64.Vec3{}) != mgl64.QuatIdent() {
		t.Fatalf("LookRotation(zero) != identity")
	}
}

func TestShortestRotation_NegativeDotTakesShortArc(t *testing.T) {
	a := YawRotation(10)
	b := YawRotation(20).Scale(-1)
	if a.Dot(b) >= 0 {
		t.Fatalf("fixture dot = %.4f, want negative", a.Dot(b))
	}

	angle, axis := ToAngleAxis(ShortestRotation(a, b))
	approxEqual(t, angle, 10, 1e-6, "short angle")
	approxVec(t, axis, Down, "short axis")

	naive, _ := ToAngleAxis(a.Mul(b.Inverse()))
	if naive <= 180 {
		t.Fatalf("naive angle = %.4f, fixture should produce the reflex angle", naive)
	}
}

func TestShortestRotation_NeverExceedsHalfTurn(t *testing.T) {
	for a := 0.0; a < 360; a += 37 {
		for b := 0.0; b < 360; b += 41 {
			qa := YawRotation(a).Mul(PitchRotation(a / 3))
			qb := YawRotation(b).Mul(PitchRotation(-b / 5)).Scale(-1)
			angle, _ := ToAngleAxis(ShortestRotation(qa, qb))
			if angle > 180+1e-9 {
				t.Fatalf("a=%.0f b=%.0f: angle %.6f > 180", a, b, angle)
			}
		}
	}
}

func TestToAngleAxis(t *testing.T) {
	angle, axis := ToAngleAxis(YawRotation(90))
	approxEqual(t, angle, 90, 1e-9, "angle")
	approxVec(t, axis, Up, "axis")

	angle, axis = ToAngleAxis(mgl64.QuatIdent())
	approxEqual(t, angle, 0, 1e-9, "identity angle")
	approxVec(t, axis, Right, "identity axis")
}
