package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, float32(1.5), Coalesce[float32](0, 1.5))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 100.0, Clamp(250.0, -100, 100))
	assert.Equal(t, -50.0, Clamp(-70.0, -50, 50))
	assert.Equal(t, 0.25, Clamp(0.25, 0, 1))
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, SliceToBytes([]float32{1}))
}
