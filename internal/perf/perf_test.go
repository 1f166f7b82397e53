package perf_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borkshop/roomba/internal/ecs"
	"github.com/borkshop/roomba/internal/perf"
)

func TestPerf(t *testing.T) {
	var (
		p     perf.Perf
		clock ecs.Clock
	)
	p.Init(ecs.ProcFunc(func() {
		clock.Process()
		time.Sleep(time.Millisecond)
	}))
	assert.Equal(t, time.Duration(0), p.Mean())

	for i := 0; i < 3; i++ {
		p.Process()
	}
	assert.Equal(t, 3, p.Rounds())
	assert.Equal(t, ecs.Time(3), clock.Now())
	assert.GreaterOrEqual(t, p.Last(), time.Millisecond)
	assert.GreaterOrEqual(t, p.Mean(), time.Millisecond)
	assert.Contains(t, p.Summary(), "Δt=")
	assert.NoError(t, p.Close(), "closing without profiling is fine")
}

func TestPerf_Profile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prof")
	var p perf.Perf
	p.Init(ecs.ProcFunc(func() {}))
	require.NoError(t, p.Profile(dir))
	p.Process()
	require.NoError(t, p.Close())

	for _, name := range []string{"cpu", "heap", "goroutine"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
