package sim

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arcfield/steer/steer"
)

// agentState is one agent's steering runtime: its context, the percept
// channels the perception phase refreshes and the decision of the last
// tick. Every agent owns its state exclusively, so steering evaluation can
// run off the primary goroutine.
type agentState struct {
	entity   ecs.Entity
	ctx      *steer.Context
	decision Decision
	decided  bool

	goalPercepts     []steer.Percept
	threatPercepts   []steer.Percept
	neighborPercepts []steer.Percept
	allPercepts      []steer.Percept

	neighbors []Neighbor // query scratch
}

// channelSource routes one percept channel into the context before running
// the wrapped behaviour. The engine core sees only the slice it is handed;
// which world objects feed which behaviour is decided here.
type channelSource struct {
	agent  *agentState
	target string
	src    steer.Source
}

func (c *channelSource) Evaluate(ctx *steer.Context) error {
	switch c.target {
	case "goal":
		ctx.Percepts = c.agent.goalPercepts
	case "threats":
		ctx.Percepts = c.agent.threatPercepts
	case "neighbors":
		ctx.Percepts = c.agent.neighborPercepts
	default:
		ctx.Percepts = c.agent.allPercepts
	}
	return c.src.Evaluate(ctx)
}

func (c *channelSource) ThreadSafe() bool { return c.src.ThreadSafe() }

// HeadingRotation converts an XY-plane heading angle into the rotation that
// maps the plane's +Y forward axis onto the heading direction.
func HeadingRotation(heading float64) r3.Rotation {
	return r3.NewRotation(heading-math.Pi/2, r3.Vec{Z: 1})
}

// perceive refreshes one agent's percept channels from the world snapshot.
// It runs single-threaded before the parallel steering phase; the channels
// it fills are owned by this agent alone.
func (w *World) perceive(st *agentState, self Pose, kin Kinematics) {
	st.goalPercepts = st.goalPercepts[:0]
	st.threatPercepts = st.threatPercepts[:0]
	st.neighborPercepts = st.neighborPercepts[:0]
	st.allPercepts = st.allPercepts[:0]

	st.ctx.Self = steer.Percept{
		Position:     self.Position,
		Rotation:     HeadingRotation(self.Heading),
		Velocity:     kin.Velocity,
		Active:       true,
		Significance: 1,
	}
	st.ctx.Orientation = st.ctx.Self.Rotation

	st.goalPercepts = append(st.goalPercepts, steer.Percept{
		Position:     w.goal,
		Rotation:     steer.IdentityRotation(),
		Active:       true,
		Significance: 1,
	})

	radiusSq := w.cfg.World.PerceptionRadius * w.cfg.World.PerceptionRadius
	threatQuery := w.threatFilter.Query()
	for threatQuery.Next() {
		pose, threat := threatQuery.Get()
		d := r3.Sub(pose.Position, self.Position)
		if r3.Norm2(d) > radiusSq {
			continue
		}
		st.threatPercepts = append(st.threatPercepts, steer.Percept{
			Position:     pose.Position,
			Rotation:     HeadingRotation(pose.Heading),
			Active:       true,
			Significance: threat.Significance,
		})
	}

	st.neighbors = w.grid.QueryRadiusInto(st.neighbors[:0],
		self.Position.X, self.Position.Y, w.cfg.World.PerceptionRadius, st.entity)
	for _, n := range st.neighbors {
		pose := w.poseMap.Get(n.E)
		nkin := w.kinMap.Get(n.E)
		if pose == nil || nkin == nil {
			continue
		}
		st.neighborPercepts = append(st.neighborPercepts, steer.Percept{
			Position:     pose.Position,
			Rotation:     HeadingRotation(pose.Heading),
			Velocity:     nkin.Velocity,
			Active:       true,
			Significance: 1,
		})
	}

	st.allPercepts = append(st.allPercepts, st.goalPercepts...)
	st.allPercepts = append(st.allPercepts, st.threatPercepts...)
	st.allPercepts = append(st.allPercepts, st.neighborPercepts...)
}
