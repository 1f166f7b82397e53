package sim_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borkshop/roomba/internal/ecs"
	"github.com/borkshop/roomba/internal/grid"
	"github.com/borkshop/roomba/internal/perf"
	"github.com/borkshop/roomba/internal/point"
	"github.com/borkshop/roomba/internal/roomba"
	"github.com/borkshop/roomba/internal/search"
	"github.com/borkshop/roomba/internal/sim"
	"github.com/borkshop/roomba/internal/stats"
)

func TestScenario_Validate(t *testing.T) {
	ok := sim.DefaultScenario()
	require.NoError(t, ok.Validate())

	for _, tc := range []struct {
		name string
		edit func(*sim.Scenario)
	}{
		{"zero width", func(sc *sim.Scenario) { sc.Width = 0 }},
		{"negative height", func(sc *sim.Scenario) { sc.Height = -3 }},
		{"negative agents", func(sc *sim.Scenario) { sc.Agents = -1 }},
		{"negative dirt", func(sc *sim.Scenario) { sc.Dirt = -1 }},
		{"threshold too high", func(sc *sim.Scenario) { sc.LowBattery = 101 }},
		{"zero charge rate", func(sc *sim.Scenario) { sc.ChargeRate = 0 }},
		{"negative memory", func(sc *sim.Scenario) { sc.MemoryCap = -1 }},
		{"unknown layout", func(sc *sim.Scenario) { sc.Stations = "ring" }},
		{"overfull corner", func(sc *sim.Scenario) { sc.Dirt = 64 - 9 - 20 + 1 }},
		{"overfull per-agent", func(sc *sim.Scenario) {
			sc.Stations = sim.PerAgent
			sc.Dirt = 64 - 20 + 1
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sc := sim.DefaultScenario()
			tc.edit(&sc)
			err := sc.Validate()
			assert.True(t, errors.Is(err, sim.ErrConfig), "got %v", err)
			_, err = sim.New(sc)
			assert.True(t, errors.Is(err, sim.ErrConfig), "got %v", err)
		})
	}
}

func TestNew_default(t *testing.T) {
	s, err := sim.New(sim.DefaultScenario())
	require.NoError(t, err)
	g := s.Grid()

	assert.Equal(t, point.Pt(8, 8), g.Size())
	assert.Equal(t, 9, s.Stations().Len())
	assert.Equal(t, 9, g.Count(grid.Station))
	assert.Len(t, s.Agents(), 10)
	assert.Equal(t, 10, g.Count(grid.Agent))
	assert.Equal(t, 10, g.Count(grid.Obstacle))
	assert.Equal(t, 10, s.Dirt().Len())
	assert.Equal(t, 10, g.Count(grid.Dirt))
	assert.NotEmpty(t, s.RunID())

	corner := point.Bx(0, 0, 2, 2)
	for _, pt := range s.Stations().List() {
		assert.True(t, corner.Contains(pt), "station %v", pt)
	}
	for _, a := range s.Agents() {
		assert.False(t, corner.Contains(a.Pos), "agent %d starts off the charging block", a.ID)
		want, err := search.Nearest(s.Stations().List(), []point.Point{a.Pos})
		require.NoError(t, err)
		assert.Equal(t, want, a.Home)
		assert.Equal(t, roomba.MaxBattery, a.Battery)
	}
}

func TestNew_perAgent(t *testing.T) {
	sc := sim.Scenario{
		Width: 6, Height: 5, Agents: 3, Dirt: 4, Obstacles: 2,
		LowBattery: 50, ChargeRate: 5, Seed: 7, Stations: sim.PerAgent,
	}
	s, err := sim.New(sc)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Stations().Len())
	for _, a := range s.Agents() {
		assert.Equal(t, a.Pos, a.Home)
		assert.True(t, s.Grid().Kinds(a.Pos).All(grid.Station|grid.Agent))
	}
}

func TestRun_deterministic(t *testing.T) {
	run := func() (stats.Report, []stats.Snapshot, []point.Point) {
		mem := stats.NewMemory()
		s, err := sim.New(sim.DefaultScenario(), sim.WithRunID("r"), sim.WithSink(mem))
		require.NoError(t, err)
		rep, err := s.Run(context.Background(), 2000)
		require.NoError(t, err)
		var pos []point.Point
		for _, a := range s.Agents() {
			pos = append(pos, a.Pos)
		}
		return rep, mem.Snapshots("r"), pos
	}
	rep1, snaps1, pos1 := run()
	rep2, snaps2, pos2 := run()
	assert.Equal(t, rep1.Outcome, rep2.Outcome)
	assert.Equal(t, rep1.Ticks, rep2.Ticks)
	assert.Equal(t, rep1.Final, rep2.Final)
	assert.Equal(t, snaps1, snaps2)
	assert.Equal(t, pos1, pos2)
}

func TestRun_invariants(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 42} {
		sc := sim.DefaultScenario()
		sc.Seed = seed
		s, err := sim.New(sc)
		require.NoError(t, err)

		gone := map[point.Point]bool{}
		dirty := map[point.Point]bool{}
		for _, pt := range s.Dirt().List() {
			dirty[pt] = true
		}
		prevDirt := s.Dirt().Len()
		for s.Now() < 1000 && s.Tick(context.Background()) == sim.Running {
			now := map[point.Point]bool{}
			for _, pt := range s.Dirt().List() {
				now[pt] = true
				assert.False(t, gone[pt], "seed %d: dirt at %v came back", seed, pt)
			}
			for pt := range dirty {
				if !now[pt] {
					gone[pt] = true
				}
			}
			dirty = now
			s.Grid().Each(func(pt point.Point, k grid.Kind) {
				assert.Equal(t, now[pt], k.Any(grid.Dirt), "seed %d: grid and registry disagree at %v", seed, pt)
			})
			assert.LessOrEqual(t, s.Dirt().Len(), prevDirt)
			prevDirt = s.Dirt().Len()
			for _, a := range s.Agents() {
				assert.GreaterOrEqual(t, a.Battery, 0)
				assert.LessOrEqual(t, a.Battery, roomba.MaxBattery)
				if a.Dead {
					assert.Equal(t, 0, a.Battery)
					assert.Equal(t, roomba.Dead, a.State)
				}
			}
		}
	}
}

func TestRun_singleAgentCleans(t *testing.T) {
	sc := sim.Scenario{
		Width: 8, Height: 8, Agents: 1, Dirt: 1,
		LowBattery: 50, ChargeRate: 5, Seed: 3, Stations: sim.PerAgent,
	}
	var events []roomba.Event
	s, err := sim.New(sc, sim.WithEvents(func(ev roomba.Event) { events = append(events, ev) }))
	require.NoError(t, err)

	rep, err := s.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "clean", rep.Outcome)
	assert.Equal(t, 0, rep.Final.DirtRemaining)
	assert.Equal(t, 1, rep.Final.Cleaned)
	assert.Equal(t, 0.0, rep.Final.DirtRemainingPct)
	assert.Equal(t, 0, rep.Deaths)
	require.NotEmpty(t, events)
	assert.Equal(t, roomba.EventDone, events[len(events)-1].Kind)
	assert.Equal(t, sim.Clean, s.Tick(context.Background()), "over is over")
}

func TestRun_noDirt(t *testing.T) {
	sc := sim.DefaultScenario()
	sc.Dirt = 0
	s, err := sim.New(sc)
	require.NoError(t, err)

	assert.Equal(t, sim.Clean, s.Tick(context.Background()))
	for _, act := range s.Actions() {
		assert.NotEqual(t, roomba.ActClean, act.Kind)
		assert.NotEqual(t, roomba.ActExplore, act.Kind)
	}
	for _, a := range s.Agents() {
		assert.NotEqual(t, roomba.Cleaning, a.State)
		assert.NotEqual(t, roomba.Exploring, a.State)
	}
}

func TestRun_noAgents(t *testing.T) {
	sc := sim.DefaultScenario()
	sc.Agents = 0
	s, err := sim.New(sc)
	require.NoError(t, err)
	rep, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "all-dead", rep.Outcome)
	assert.Equal(t, uint64(0), rep.Ticks)
}

func TestRun_limits(t *testing.T) {
	s, err := sim.New(sim.DefaultScenario())
	require.NoError(t, err)
	rep, err := s.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "exhausted", rep.Outcome)
	assert.Equal(t, uint64(1), rep.Ticks)

	s, err = sim.New(sim.DefaultScenario())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err = s.Run(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "stopped", rep.Outcome)
	assert.Equal(t, uint64(0), rep.Ticks)
}

type failingSink struct{ stats.Sink }

var errSink = errors.New("disk full")

func (failingSink) Record(context.Context, stats.Snapshot) error { return errSink }

func TestRun_sink(t *testing.T) {
	mem := stats.NewMemory()
	s, err := sim.New(sim.DefaultScenario(),
		sim.WithRunID("run-1"),
		sim.WithSink(stats.Multi(mem, failingSink{stats.Discard})))
	require.NoError(t, err)

	rep, err := s.Run(context.Background(), 3)
	assert.True(t, errors.Is(err, errSink), "sink errors are reported")
	assert.Equal(t, "exhausted", rep.Outcome, "but do not stop the run")

	snaps := mem.Snapshots("run-1")
	require.Len(t, snaps, 3)
	for i, snap := range snaps {
		assert.Equal(t, uint64(i), snap.Tick)
		assert.Equal(t, "run-1", snap.RunID)
	}
	assert.Equal(t, 100.0, snaps[0].DirtRemainingPct)
	assert.Equal(t, 100.0, snaps[0].AvgBattery)
	assert.Equal(t, 10, snaps[0].Live)

	got, done := mem.Report("run-1")
	require.True(t, done)
	assert.Equal(t, rep.Ticks, got.Ticks)
	assert.Equal(t, int64(42), got.Seed)
	assert.Contains(t, string(got.Scenario), `"stations":"corner"`)
}

func TestRun_delayHonoursContext(t *testing.T) {
	s, err := sim.New(sim.DefaultScenario(), sim.WithDelay(time.Hour))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	rep, err := s.Run(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "stopped", rep.Outcome)
	assert.Equal(t, uint64(1), rep.Ticks)
}

func TestRun_perf(t *testing.T) {
	var p perf.Perf
	s, err := sim.New(sim.DefaultScenario(), sim.WithPerf(&p))
	require.NoError(t, err)
	_, err = s.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Same(t, &p, s.Perf())
	assert.Equal(t, 2, p.Rounds())
	assert.Equal(t, ecs.Time(2), s.Now())
}
