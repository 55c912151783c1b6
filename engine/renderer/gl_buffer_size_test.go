package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These cases return before any GL call, so they run without a context.

func TestGLBufferSizeBeforeFirstUpload(t *testing.T) {
	b := &glRendererBackendImpl{uploaded: map[geometry.BufferID]int{7: 0}}

	n, err := b.BufferSize(7)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGLBufferSizeUnknownBuffer(t *testing.T) {
	b := &glRendererBackendImpl{uploaded: map[geometry.BufferID]int{}}

	_, err := b.BufferSize(3)
	assert.Error(t, err)
}

func TestGLDeleteUnknownBufferIsNoop(t *testing.T) {
	b := &glRendererBackendImpl{uploaded: map[geometry.BufferID]int{}}

	assert.NotPanics(t, func() { b.DeleteBuffer(9) })
	assert.Empty(t, b.uploaded)
}
