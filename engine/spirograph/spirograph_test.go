package spirograph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, Params{Rolling: 0.0893, Fixed: 1.854, Pen: 0.8, Speed: 1}, p)
	assert.InDelta(t, 4*(0.0893+1.854+0.8), p.EyeDistance(), 1e-4)
}

func TestClamp(t *testing.T) {
	p := Params{Rolling: 250, Fixed: -101, Pen: 75, Speed: -1e6}.Clamp()
	assert.Equal(t, Params{Rolling: 100, Fixed: -100, Pen: 50, Speed: -100}, p)

	in := DefaultParams()
	assert.Equal(t, in, in.Clamp())
}

func TestPointAtZero(t *testing.T) {
	p := DefaultParams()
	v, ok := p.Point(0)
	require.True(t, ok)
	// t = 0: x = R + r + p, y = 0.
	assert.InDelta(t, 1.854+0.0893+0.8, v.X(), 1e-5)
	assert.InDelta(t, 0, v.Y(), 1e-6)
	assert.Equal(t, float32(0), v.Z())
}

func TestPointFollowsFormula(t *testing.T) {
	p := Params{Rolling: 0.5, Fixed: 2, Pen: 0.25, Speed: 2}
	for _, tm := range []float32{0.1, 1, 3.7} {
		v, ok := p.Point(tm)
		require.True(t, ok)

		tt := float64(tm) * 2
		x := 2.5*math.Cos(tt) + 0.25*math.Cos(2.5*tt/0.5)
		y := 2.5*math.Sin(tt) + 0.25*math.Sin(2.5*tt/0.5)
		assert.InDelta(t, x, v.X(), 1e-5)
		assert.InDelta(t, y, v.Y(), 1e-5)
	}
}

func TestPointStaysWithinEyeRadius(t *testing.T) {
	p := DefaultParams()
	limit := p.Fixed + p.Rolling + p.Pen
	for i := range 5000 {
		v, ok := p.Point(float32(i) * 0.001)
		require.True(t, ok)
		assert.LessOrEqual(t, v.Len(), limit+1e-4)
	}
}

func TestPointRejectsZeroRollingRadius(t *testing.T) {
	p := DefaultParams()
	p.Rolling = 0

	_, ok := p.Point(0.5)
	assert.False(t, ok)
}

func TestCameraDistance(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want float32
		ok   bool
	}{
		{"default", DefaultParams(), DefaultParams().EyeDistance(), true},
		{"cancelled radii", Params{Rolling: -1, Fixed: 1, Pen: 0, Speed: 1}, MinEyeDistance, false},
		{"small negative", Params{Rolling: -0.1, Fixed: 0, Pen: 0, Speed: 1}, -MinEyeDistance, false},
		{"large negative", Params{Rolling: -2, Fixed: -3, Pen: 0, Speed: 1}, -20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := tt.p.CameraDistance()
			assert.InDelta(t, tt.want, d, 1e-5)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
