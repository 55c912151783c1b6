package geometry

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
)

func TestValidateDetectsMismatch(t *testing.T) {
	b := &Buffers{streams: []*Stream{
		{Attribute: shader.Position, Components: 3, data: []float32{1, 2, 3, 4, 5, 6}},
		{Attribute: shader.Normal, Components: 3, data: []float32{0, 0, 1}},
	}}
	assert.ErrorIs(t, b.Validate(), ErrVertexCountMismatch)

	// Upload validates before touching the uploader.
	assert.ErrorIs(t, b.Upload(), ErrVertexCountMismatch)

	b.streams[1].data = append(b.streams[1].data, 0, 0)
	assert.ErrorIs(t, b.Validate(), ErrVertexCountMismatch)

	b.streams[1].data = append(b.streams[1].data, 1)
	assert.NoError(t, b.Validate())
}
