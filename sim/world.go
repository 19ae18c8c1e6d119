package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arcfield/steer/config"
	"github.com/arcfield/steer/steer"
	"github.com/arcfield/steer/telemetry"
)

// arriveRadius is the goal distance below which an agent counts as arrived.
const arriveRadius = 8.0

// World owns the ECS state, the per-agent steering contexts and the tick
// loop wiring them together.
type World struct {
	cfg *config.Config

	world        *ecs.World
	agentMapper  *ecs.Map3[Pose, Kinematics, Agent]
	threatMapper *ecs.Map2[Pose, Threat]
	agentFilter  *ecs.Filter3[Pose, Kinematics, Agent]
	threatFilter *ecs.Filter2[Pose, Threat]
	poseMap      *ecs.Map1[Pose]
	kinMap       *ecs.Map1[Kinematics]

	grid   *SpatialGrid
	pool   *steer.Pool
	agents []*agentState
	ctxs   []*steer.Context
	goal   r3.Vec
	rng    *rand.Rand

	out  *telemetry.OutputManager
	perf *telemetry.PerfCollector

	tick         int64
	windowStart  int64
	configErrors int
}

// NewWorld builds the arena described by cfg and populates it.
func NewWorld(cfg *config.Config, out *telemetry.OutputManager) (*World, error) {
	world := ecs.NewWorld()

	w := &World{
		cfg:          cfg,
		world:        world,
		agentMapper:  ecs.NewMap3[Pose, Kinematics, Agent](world),
		threatMapper: ecs.NewMap2[Pose, Threat](world),
		agentFilter:  ecs.NewFilter3[Pose, Kinematics, Agent](world),
		threatFilter: ecs.NewFilter2[Pose, Threat](world),
		poseMap:      ecs.NewMap1[Pose](world),
		kinMap:       ecs.NewMap1[Kinematics](world),
		grid:         NewSpatialGrid(cfg.World.Width, cfg.World.Height, cfg.Derived.GridCellSize),
		pool:         steer.NewPool(),
		rng:          rand.New(rand.NewSource(cfg.World.Seed)),
		out:          out,
		perf:         telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
	}

	// Goal in the upper right quadrant, agents spawn lower left.
	w.goal = r3.Vec{X: cfg.World.Width * 0.85, Y: cfg.World.Height * 0.85}

	for i := 0; i < cfg.World.Threats; i++ {
		pose := Pose{Position: r3.Vec{
			X: cfg.World.Width * (0.3 + 0.4*w.rng.Float64()),
			Y: cfg.World.Height * (0.3 + 0.4*w.rng.Float64()),
		}}
		threat := Threat{Significance: 1}
		w.threatMapper.NewEntity(&pose, &threat)
	}

	for i := 0; i < cfg.World.Agents; i++ {
		pose := Pose{
			Position: r3.Vec{
				X: cfg.World.Width * 0.25 * w.rng.Float64(),
				Y: cfg.World.Height * 0.25 * w.rng.Float64(),
			},
			Heading: 2 * math.Pi * w.rng.Float64(),
		}
		kin := Kinematics{MaxSpeed: cfg.World.MaxSpeed}
		agent := Agent{Index: i}
		entity := w.agentMapper.NewEntity(&pose, &kin, &agent)

		st, err := w.newAgentState(entity, cfg)
		if err != nil {
			return nil, err
		}
		w.agents = append(w.agents, st)
		w.ctxs = append(w.ctxs, st.ctx)
	}

	return w, nil
}

// newAgentState builds one agent's sensor, behaviours and context.
func (w *World) newAgentState(entity ecs.Entity, cfg *config.Config) (*agentState, error) {
	sensor, err := cfg.BuildSensor()
	if err != nil {
		return nil, err
	}
	built, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	st := &agentState{entity: entity}
	sources := make([]steer.Source, len(built))
	for i, b := range built {
		sources[i] = &channelSource{agent: st, target: b.Target, src: b.Source}
	}
	st.ctx = steer.NewContext(cfg.Objectives.Count, sensor, sources...)
	return st, nil
}

// Rebuild swaps in a new configuration while keeping agent poses, used for
// hot reload. Behaviour state (retention memory) starts over.
func (w *World) Rebuild(cfg *config.Config) error {
	for _, st := range w.agents {
		sensor, err := cfg.BuildSensor()
		if err != nil {
			return err
		}
		built, err := cfg.Build()
		if err != nil {
			return err
		}
		sources := make([]steer.Source, len(built))
		for i, b := range built {
			sources[i] = &channelSource{agent: st, target: b.Target, src: b.Source}
		}
		fresh := steer.NewContext(cfg.Objectives.Count, sensor, sources...)
		st.ctx = fresh
	}
	w.ctxs = w.ctxs[:0]
	for _, st := range w.agents {
		w.ctxs = append(w.ctxs, st.ctx)
	}
	w.cfg = cfg
	return nil
}

// Step advances the world by one tick.
func (w *World) Step() error {
	dt := w.cfg.Derived.DT
	w.perf.StartTick()

	w.perf.StartPhase(telemetry.PhaseSpatialGrid)
	w.grid.Clear()
	query := w.agentFilter.Query()
	for query.Next() {
		pose, _, _ := query.Get()
		w.grid.Insert(query.Entity(), pose.Position.X, pose.Position.Y)
	}

	w.perf.StartPhase(telemetry.PhasePerception)
	query = w.agentFilter.Query()
	for query.Next() {
		pose, kin, agent := query.Get()
		st := w.agents[agent.Index]
		w.perceive(st, *pose, *kin)
	}

	w.perf.StartPhase(telemetry.PhaseSteering)
	errs := w.pool.Evaluate(w.ctxs)
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
	}
	for _, st := range w.agents {
		w.configErrors += st.ctx.ConfigErrors
	}

	w.perf.StartPhase(telemetry.PhaseDecide)
	for _, st := range w.agents {
		st.decision, st.decided = Decide(st.ctx.Problem, st.ctx.Sensor,
			w.cfg.Objectives.Interest, w.cfg.Objectives.Danger)
	}

	w.perf.StartPhase(telemetry.PhaseIntegrate)
	query = w.agentFilter.Query()
	for query.Next() {
		pose, kin, agent := query.Get()
		st := w.agents[agent.Index]
		w.integrate(pose, kin, agent, st, dt)
	}

	w.perf.StartPhase(telemetry.PhaseTelemetry)
	if err := w.writeTelemetry(); err != nil {
		return err
	}
	w.perf.EndTick()

	w.tick++
	return nil
}

// integrate applies one agent's decision to its pose and kinematics.
func (w *World) integrate(pose *Pose, kin *Kinematics, agent *Agent, st *agentState, dt float64) {
	if st.decided {
		world := st.ctx.Orientation.Rotate(st.decision.Direction)
		kin.Velocity = r3.Scale(st.decision.Magnitude*kin.MaxSpeed, world)
	} else {
		kin.Velocity = r3.Vec{}
	}

	pose.Position = r3.Add(pose.Position, r3.Scale(dt, kin.Velocity))
	pose.Position.X = clampFloat(pose.Position.X, 0, w.cfg.World.Width)
	pose.Position.Y = clampFloat(pose.Position.Y, 0, w.cfg.World.Height)

	if r3.Norm(kin.Velocity) > steer.Epsilon {
		pose.Heading = math.Atan2(kin.Velocity.Y, kin.Velocity.X)
	}

	if !agent.Arrived && r3.Norm(r3.Sub(w.goal, pose.Position)) < arriveRadius {
		agent.Arrived = true
	}
}

// writeTelemetry records per-tick decisions and, at window boundaries, the
// aggregated stats.
func (w *World) writeTelemetry() error {
	for i, st := range w.agents {
		if !st.decided {
			continue
		}
		world := st.ctx.Orientation.Rotate(st.decision.Direction)
		rec := telemetry.DecisionRecord{
			Tick:      w.tick,
			Agent:     i,
			Slot:      st.decision.Slot,
			Value:     st.decision.Value,
			HeadingX:  world.X,
			HeadingY:  world.Y,
			Magnitude: st.decision.Magnitude,
		}
		if err := w.out.WriteDecision(rec); err != nil {
			return err
		}
	}

	window := int64(w.cfg.Telemetry.PerfCollectorWindow)
	if window > 0 && w.tick > 0 && w.tick%window == 0 {
		stats := w.WindowStats()
		if err := w.out.WriteStats(stats); err != nil {
			return err
		}
		if err := w.out.WritePerf(w.perf.Stats(), w.tick); err != nil {
			return err
		}
		w.windowStart = w.tick
		w.configErrors = 0
	}
	return nil
}

// WindowStats aggregates the current window's steering statistics.
func (w *World) WindowStats() telemetry.WindowStats {
	decisions := make([]float64, 0, len(w.agents))
	dangers := make([]float64, 0, len(w.agents))
	var speedSum float64
	arrived := 0

	query := w.agentFilter.Query()
	for query.Next() {
		_, kin, agent := query.Get()
		speedSum += r3.Norm(kin.Velocity)
		if agent.Arrived {
			arrived++
		}
		st := w.agents[agent.Index]
		if st.decided {
			decisions = append(decisions, st.decision.Value)
		}
		if values := st.ctx.Problem.Values(w.cfg.Objectives.Danger); values != nil {
			peak := 0.0
			for _, v := range values {
				if v > peak {
					peak = v
				}
			}
			dangers = append(dangers, peak)
		}
	}

	stats := telemetry.WindowStats{
		WindowStartTick: w.windowStart,
		WindowEndTick:   w.tick,
		SimTimeSec:      float64(w.tick) * w.cfg.Derived.DT,
		Agents:          len(w.agents),
		Arrived:         arrived,
		ConfigErrors:    w.configErrors,
	}
	stats.DecisionMean, stats.DecisionP10, stats.DecisionP50, stats.DecisionP90 = telemetry.ComputeValueStats(decisions)
	dMean, _, _, dP90 := telemetry.ComputeValueStats(dangers)
	stats.DangerMean, stats.DangerP90 = dMean, dP90
	if len(w.agents) > 0 {
		stats.SpeedMean = speedSum / float64(len(w.agents))
	}
	return stats
}

// Tick returns the number of completed ticks.
func (w *World) Tick() int64 { return w.tick }

// Goal returns the shared goal position.
func (w *World) Goal() r3.Vec { return w.goal }

// Config returns the active configuration.
func (w *World) Config() *config.Config { return w.cfg }

// Perf returns the world's performance collector.
func (w *World) Perf() *telemetry.PerfCollector { return w.perf }

// AgentView is a read-only snapshot of one agent for rendering.
type AgentView struct {
	Pose     Pose
	Velocity r3.Vec
	Arrived  bool
	Problem  *steer.Problem
	Sensor   steer.Sensor
	Decision Decision
	Decided  bool
}

// ForEachAgent visits every agent with a rendering snapshot.
func (w *World) ForEachAgent(fn func(i int, v AgentView)) {
	query := w.agentFilter.Query()
	for query.Next() {
		pose, kin, agent := query.Get()
		st := w.agents[agent.Index]
		fn(agent.Index, AgentView{
			Pose:     *pose,
			Velocity: kin.Velocity,
			Arrived:  agent.Arrived,
			Problem:  st.ctx.Problem,
			Sensor:   st.ctx.Sensor,
			Decision: st.decision,
			Decided:  st.decided,
		})
	}
}

// Threats returns the threat positions for rendering.
func (w *World) Threats() []r3.Vec {
	var out []r3.Vec
	query := w.threatFilter.Query()
	for query.Next() {
		pose, _ := query.Get()
		out = append(out, pose.Position)
	}
	return out
}

// Close stops the worker pool.
func (w *World) Close() {
	w.pool.Stop()
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
