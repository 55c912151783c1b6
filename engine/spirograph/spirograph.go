package spirograph

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-spiro/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Parameter limits. Values outside them are clamped.
const (
	RadiusLimit = 100
	PenLimit    = 50
	SpeedLimit  = 100
)

// MinEyeDistance keeps the camera off its look-at target when r+R+p cancels out.
const MinEyeDistance = 1

// Params describes the curve traced by a pen on a circle of radius Rolling rolling around a fixed
// circle of radius Fixed.
type Params struct {
	// Rolling is the radius of the rolling circle (r).
	Rolling float32 `yaml:"r"`

	// Fixed is the radius of the fixed circle (R).
	Fixed float32 `yaml:"R"`

	// Pen is the distance of the pen from the rolling circle's center (p).
	Pen float32 `yaml:"p"`

	// Speed scales animation time into curve parameter (S).
	Speed float32 `yaml:"S"`
}

// DefaultParams returns r=0.0893, R=1.854, p=0.8, S=1.
func DefaultParams() Params {
	return Params{
		Rolling: 0.0893,
		Fixed:   1.854,
		Pen:     0.8,
		Speed:   1,
	}
}

// Clamp limits r, R and S to [-100, 100] and p to [-50, 50].
//
// Returns:
//   - Params: the clamped copy
func (p Params) Clamp() Params {
	return Params{
		Rolling: common.Clamp[float32](p.Rolling, -RadiusLimit, RadiusLimit),
		Fixed:   common.Clamp[float32](p.Fixed, -RadiusLimit, RadiusLimit),
		Pen:     common.Clamp[float32](p.Pen, -PenLimit, PenLimit),
		Speed:   common.Clamp[float32](p.Speed, -SpeedLimit, SpeedLimit),
	}
}

// Point returns the curve position for an animation time:
//
//	t = time·S
//	x = (R+r)·cos t + p·cos((R+r)·t/r)
//	y = (R+r)·sin t + p·sin((R+r)·t/r)
//
// Parameters:
//   - time: the animation time
//
// Returns:
//   - mgl32.Vec3: the point on the z=0 plane
//   - bool: false if the point is not finite (r = 0)
func (p Params) Point(time float32) (mgl32.Vec3, bool) {
	t := float64(time) * float64(p.Speed)
	sum := float64(p.Fixed) + float64(p.Rolling)
	inner := sum * t / float64(p.Rolling)

	x := sum*math.Cos(t) + float64(p.Pen)*math.Cos(inner)
	y := sum*math.Sin(t) + float64(p.Pen)*math.Sin(inner)
	if !finite(x) || !finite(y) {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{float32(x), float32(y), 0}, true
}

// EyeDistance is how far from the origin the camera must sit to keep the curve in view: 4(r+R+p).
func (p Params) EyeDistance() float32 {
	return 4 * (p.Rolling + p.Fixed + p.Pen)
}

// CameraDistance is EyeDistance pushed out to at least MinEyeDistance from the origin, keeping
// its sign.
//
// Returns:
//   - float32: the distance along z to place the eye at
//   - bool: false when EyeDistance was too close to zero and had to be adjusted
func (p Params) CameraDistance() (float32, bool) {
	d := p.EyeDistance()
	switch {
	case d >= MinEyeDistance || d <= -MinEyeDistance:
		return d, true
	case d < 0:
		return -MinEyeDistance, false
	default:
		return MinEyeDistance, false
	}
}

func (p Params) String() string {
	return fmt.Sprintf("r=%g R=%g p=%g S=%g", p.Rolling, p.Fixed, p.Pen, p.Speed)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
