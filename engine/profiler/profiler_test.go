package profiler

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickLogsOncePerInterval(t *testing.T) {
	var out bytes.Buffer
	p := NewProfiler(WithLogger(log.New(&out, "", 0)), WithInterval(time.Second))

	clock := p.lastTime
	p.now = func() time.Time { return clock }

	for range 29 {
		clock = clock.Add(time.Second / 60)
		assert.False(t, p.Tick(100))
	}
	assert.Zero(t, out.Len())

	clock = clock.Add(600 * time.Millisecond)
	require.True(t, p.Tick(250))

	elapsed := 29*(time.Second/60) + 600*time.Millisecond
	s := p.Last()
	assert.InDelta(t, 30/elapsed.Seconds(), s.FPS, 1e-9)
	assert.Equal(t, 250, s.Vertices)
	assert.Contains(t, out.String(), "[Profiler] FPS:")
	assert.Contains(t, out.String(), "Vertices: 250")

	clock = clock.Add(time.Millisecond)
	assert.False(t, p.Tick(250))
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
