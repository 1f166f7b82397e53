// Package sim runs cleaning agents over a shared grid: it builds the world
// from a Scenario, then advances every live agent once per tick in a freshly
// shuffled order until the floor is clean, every agent is dead, or the run is
// stopped.
package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/borkshop/roomba/internal/ecs"
	"github.com/borkshop/roomba/internal/grid"
	"github.com/borkshop/roomba/internal/moremath"
	"github.com/borkshop/roomba/internal/perf"
	"github.com/borkshop/roomba/internal/point"
	"github.com/borkshop/roomba/internal/registry"
	"github.com/borkshop/roomba/internal/roomba"
	"github.com/borkshop/roomba/internal/search"
	"github.com/borkshop/roomba/internal/stats"
)

// Outcome is the state of a run.
type Outcome uint8

// Outcomes.
const (
	Running Outcome = iota
	// Clean means an agent found no dirt left to clean.
	Clean
	// AllDead means no agent is left alive.
	AllDead
	// Stopped means the run's context was cancelled.
	Stopped
	// Exhausted means the run hit its tick limit.
	Exhausted
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Clean:
		return "clean"
	case AllDead:
		return "all-dead"
	case Stopped:
		return "stopped"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// Option customises a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger for the simulation and its agents.
func WithLogger(log *slog.Logger) Option {
	return func(sim *Simulation) { sim.log = log }
}

// WithSink sends a snapshot to sink at the start of every tick, and the
// report when Run finishes.
func WithSink(sink stats.Sink) Option {
	return func(sim *Simulation) { sim.sink = sink }
}

// WithEvents calls fn with every agent event.
func WithEvents(fn func(roomba.Event)) Option {
	return func(sim *Simulation) { sim.events = fn }
}

// WithDelay makes Run wait d between ticks, pacing the run for live
// watchers.
func WithDelay(d time.Duration) Option {
	return func(sim *Simulation) { sim.delay = d }
}

// WithPerf times every tick with p.
func WithPerf(p *perf.Perf) Option {
	return func(sim *Simulation) { sim.perf = p }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(sim *Simulation) { sim.runID = id }
}

// Simulation owns the world and its agents.
type Simulation struct {
	ecs.System

	clock   ecs.Clock
	sc      Scenario
	runID   string
	rng     *rand.Rand
	log     *slog.Logger
	delay   time.Duration
	perf    *perf.Perf
	sink    stats.Sink
	events  func(roomba.Event)
	env     roomba.Env
	agents  []*roomba.Agent
	actions []roomba.Action

	ctx      context.Context
	outcome  Outcome
	done     bool
	deaths   int
	sinkErrs []error
	started  time.Time
}

// New builds the world described by sc. Placement draws from a generator
// seeded with sc.Seed, so equal scenarios build equal worlds.
func New(sc Scenario, opts ...Option) (*Simulation, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	sim := &Simulation{
		sc:      sc,
		rng:     rand.New(rand.NewSource(sc.Seed)),
		sink:    stats.Discard,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(sim)
	}
	if sim.log == nil {
		sim.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if sim.runID == "" {
		entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
		sim.runID = ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	}
	sim.log = sim.log.With("run", sim.runID)

	topo := grid.Bounded
	if sc.Torus {
		topo = grid.Torus
	}
	g, err := grid.New(sc.Width, sc.Height, topo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	sim.env = roomba.Env{
		Grid:     g,
		Dirt:     registry.NewDirt(sim.log),
		Stations: registry.NewStations(),
		Params:   sc.Params(),
		Log:      sim.log,
		Events:   sim.events,
	}
	if err := sim.populate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	sim.AddProcFunc(sim.record)
	sim.AddProc(&sim.clock)
	sim.AddProcFunc(sim.visitAgents, sim.checkOver)
	if sim.perf != nil {
		sim.perf.Init(&sim.System)
	}

	sim.log.Info("simulation built",
		"size", g.Size(), "topology", topo,
		"agents", len(sim.agents), "dirt", sim.env.Dirt.Len(),
		"stations", sim.env.Stations.Len(), "seed", sc.Seed)
	return sim, nil
}

// populate places stations, agents, obstacles and dirt, in that order.
func (sim *Simulation) populate() error {
	if sim.sc.layout() == Corner {
		var err error
		sim.sc.cornerBlock().Each(func(pt point.Point) {
			if err == nil {
				err = sim.addStation(pt)
			}
		})
		if err != nil {
			return err
		}
	}

	starts := sim.pick(sim.sc.Agents)
	for i, pt := range starts {
		home := pt
		if sim.sc.layout() == PerAgent {
			if err := sim.addStation(pt); err != nil {
				return err
			}
		} else {
			var err error
			if home, err = search.Nearest(sim.env.Stations.List(), []point.Point{pt}); err != nil {
				return fmt.Errorf("home station for agent %d: %w", i+1, err)
			}
		}
		if err := sim.env.Grid.Place(grid.Agent, pt); err != nil {
			return err
		}
		sim.agents = append(sim.agents, roomba.New(i+1, pt, home, sim.sc.MemoryCap))
	}

	for _, pt := range sim.pick(sim.sc.Obstacles) {
		if err := sim.env.Grid.Place(grid.Obstacle, pt); err != nil {
			return err
		}
	}

	for _, pt := range sim.pick(sim.sc.Dirt) {
		if err := sim.env.Grid.Place(grid.Dirt, pt); err != nil {
			return err
		}
		if err := sim.env.Dirt.Register(pt); err != nil {
			return err
		}
	}
	return nil
}

func (sim *Simulation) addStation(pt point.Point) error {
	if err := sim.env.Grid.Place(grid.Station, pt); err != nil {
		return err
	}
	return sim.env.Stations.Register(pt)
}

// pick draws n distinct empty cells.
func (sim *Simulation) pick(n int) []point.Point {
	if n == 0 {
		return nil
	}
	empties := sim.env.Grid.Empties()
	order := moremath.Shuffle(sim.rng, len(empties))
	pts := make([]point.Point, n)
	for i := range pts {
		pts[i] = empties[order[i]]
	}
	return pts
}

// Tick runs one tick, unless the run is already over, and returns the
// outcome after it.
func (sim *Simulation) Tick(ctx context.Context) Outcome {
	if sim.outcome != Running {
		return sim.outcome
	}
	if sim.live() == 0 {
		sim.outcome = AllDead
		return sim.outcome
	}
	sim.ctx = ctx
	if sim.perf != nil {
		sim.perf.Process()
	} else {
		sim.Process()
	}
	sim.ctx = nil
	return sim.outcome
}

// Run ticks until the run is over, ctx is done, or maxTicks ticks have run
// in total (0 for no limit). Sink errors do not stop the run; they are
// returned, joined, after the report has been sent.
func (sim *Simulation) Run(ctx context.Context, maxTicks uint64) (stats.Report, error) {
	for sim.outcome == Running {
		if ctx.Err() != nil {
			sim.outcome = Stopped
			break
		}
		if maxTicks > 0 && uint64(sim.clock.Now()) >= maxTicks {
			sim.outcome = Exhausted
			break
		}
		sim.Tick(ctx)
		if sim.delay > 0 && sim.outcome == Running {
			sim.wait(ctx)
		}
	}

	rep := sim.Report()
	sim.log.Info("simulation over", "outcome", rep.Outcome, "ticks", rep.Ticks,
		"dirt_remaining", rep.Final.DirtRemaining, "deaths", rep.Deaths)
	if sim.perf != nil {
		sim.log.Info("tick timing", "mean", sim.perf.Mean(), "last", sim.perf.Last())
	}
	if err := sim.sink.Finish(context.WithoutCancel(ctx), rep); err != nil {
		sim.sinkError("finish", err)
	}
	return rep, errors.Join(sim.sinkErrs...)
}

func (sim *Simulation) wait(ctx context.Context) {
	timer := time.NewTimer(sim.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (sim *Simulation) sinkError(op string, err error) {
	sim.log.Warn("stats sink failed", "op", op, "err", err)
	sim.sinkErrs = append(sim.sinkErrs, fmt.Errorf("stats %s: %w", op, err))
}

func (sim *Simulation) record() {
	ctx := sim.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := sim.sink.Record(ctx, sim.Snapshot()); err != nil {
		sim.sinkError("record", err)
	}
}

func (sim *Simulation) visitAgents() {
	sim.actions = sim.actions[:0]
	for _, i := range moremath.Shuffle(sim.rng, len(sim.agents)) {
		a := sim.agents[i]
		if a.Dead {
			continue
		}
		act := a.Step(&sim.env)
		switch act.Kind {
		case roomba.ActDie:
			sim.deaths++
		case roomba.ActDone:
			sim.done = true
		}
		sim.actions = append(sim.actions, act)
	}
}

func (sim *Simulation) checkOver() {
	switch {
	case sim.done:
		sim.outcome = Clean
	case sim.live() == 0:
		sim.outcome = AllDead
	}
	if sim.log.Enabled(context.Background(), slog.LevelDebug) {
		snap := sim.Snapshot()
		sim.log.Debug("tick", "t", sim.clock.Now(), "dirt", snap.DirtRemaining,
			"avg_battery", snap.AvgBattery, "live", snap.Live, "charging", snap.Charging)
	}
}

func (sim *Simulation) live() int {
	n := 0
	for _, a := range sim.agents {
		if a.Live() {
			n++
		}
	}
	return n
}

// Snapshot returns the current statistics.
func (sim *Simulation) Snapshot() stats.Snapshot {
	snap := stats.Snapshot{
		RunID:         sim.runID,
		Tick:          uint64(sim.clock.Now()),
		DirtRemaining: sim.env.Dirt.Len(),
		Cleaned:       sim.env.Dirt.Cleaned(),
	}
	snap.DirtRemainingPct = moremath.Percent(snap.DirtRemaining, sim.env.Dirt.Initial())
	var batteries []int
	for _, a := range sim.agents {
		if !a.Live() {
			continue
		}
		batteries = append(batteries, a.Battery)
		if a.Charging {
			snap.Charging++
		}
	}
	snap.Live = len(batteries)
	snap.AvgBattery = moremath.MeanInt(batteries...)
	return snap
}

// Report summarises the run so far.
func (sim *Simulation) Report() stats.Report {
	scenario, _ := json.Marshal(sim.sc)
	return stats.Report{
		RunID:      sim.runID,
		Outcome:    sim.outcome.String(),
		Ticks:      uint64(sim.clock.Now()),
		Seed:       sim.sc.Seed,
		Scenario:   scenario,
		Final:      sim.Snapshot(),
		Deaths:     sim.deaths,
		StartedAt:  sim.started,
		FinishedAt: time.Now(),
	}
}

// RunID returns the id the run's statistics are recorded under.
func (sim *Simulation) RunID() string { return sim.runID }

// Scenario returns the scenario the world was built from.
func (sim *Simulation) Scenario() Scenario { return sim.sc }

// Now returns the number of ticks run.
func (sim *Simulation) Now() ecs.Time { return sim.clock.Now() }

// Outcome returns the state of the run.
func (sim *Simulation) Outcome() Outcome { return sim.outcome }

// Grid returns the world's grid.
func (sim *Simulation) Grid() *grid.Grid { return sim.env.Grid }

// Dirt returns the dirt registry.
func (sim *Simulation) Dirt() *registry.Dirt { return sim.env.Dirt }

// Stations returns the station registry.
func (sim *Simulation) Stations() *registry.Stations { return sim.env.Stations }

// Agents returns every agent, dead or alive, in id order.
func (sim *Simulation) Agents() []*roomba.Agent { return sim.agents }

// Perf returns the tick timer, if any.
func (sim *Simulation) Perf() *perf.Perf { return sim.perf }

// Actions returns what each agent did in the last tick, in turn order.
func (sim *Simulation) Actions() []roomba.Action { return sim.actions }
