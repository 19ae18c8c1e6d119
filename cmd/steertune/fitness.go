package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arcfield/steer/config"
	"github.com/arcfield/steer/sim"
)

// Agents within this distance of a threat count as exposed for the tick.
const exposureRadius = 40.0

// exposureWeight scales how heavily threat exposure counts against a
// parameter set relative to raw arrival time.
const exposureWeight = 2.0

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config

	mu           sync.Mutex
	lastExposure float64 // exposure ticks per agent from the most recent Evaluate
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastExposure returns the average threat exposure from the most recent
// evaluation, in ticks per agent.
func (fe *FitnessEvaluator) LastExposure() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastExposure
}

// runResult holds the results from a single simulation run.
type runResult struct {
	agents          int
	arrived         int
	sumArrivalTicks int64 // summed over arrived agents
	exposureTicks   int64 // agent-ticks spent within exposureRadius of a threat
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the mean arrival time in ticks, with unarrived agents charged
// the full run length, plus a weighted threat-exposure penalty.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalExposure float64
	for _, r := range results {
		totalFitness += fe.computeFitness(r)
		if r.agents > 0 {
			totalExposure += float64(r.exposureTicks) / float64(r.agents)
		}
	}

	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastExposure = totalExposure / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless simulation run. It stops once
// every agent has reached the goal or the tick cap is hit.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.World.Seed = seed

	result := &runResult{agents: cfg.World.Agents}

	world, err := sim.NewWorld(cfg, nil)
	if err != nil {
		// Unbuildable parameter set: charge the worst possible cost.
		result.sumArrivalTicks = fe.maxTicks * int64(result.agents)
		return result
	}
	defer world.Close()

	arrivalTick := make([]int64, cfg.World.Agents)
	for i := range arrivalTick {
		arrivalTick[i] = -1
	}

	for world.Tick() < fe.maxTicks {
		if err := world.Step(); err != nil {
			break
		}
		tick := world.Tick()
		threats := world.Threats()

		allArrived := true
		world.ForEachAgent(func(i int, v sim.AgentView) {
			if arrivalTick[i] >= 0 {
				return
			}
			if v.Arrived {
				arrivalTick[i] = tick
				return
			}
			allArrived = false
			for _, t := range threats {
				if r3.Norm(r3.Sub(t, v.Pose.Position)) < exposureRadius {
					result.exposureTicks++
					break
				}
			}
		})
		if allArrived {
			break
		}
	}

	for _, t := range arrivalTick {
		if t >= 0 {
			result.arrived++
			result.sumArrivalTicks += t
		}
	}
	return result
}

// copyConfig creates a deep copy of the base config so parallel runs can
// mutate behaviour parameters independently.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig

	cfg.Behaviors = make([]config.BehaviorConfig, len(fe.baseConfig.Behaviors))
	copy(cfg.Behaviors, fe.baseConfig.Behaviors)
	for i := range cfg.Behaviors {
		b := &cfg.Behaviors[i]
		if b.LocalDirection != nil {
			b.LocalDirection = append([]float64(nil), b.LocalDirection...)
		}
		if b.Objectives != nil {
			b.Objectives = append([]int(nil), b.Objectives...)
		}
	}

	// Tuning runs never write CSV output.
	cfg.Telemetry.OutputDir = ""

	return &cfg
}

// computeFitness calculates the scalar fitness for one run (lower = better).
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	if r.agents == 0 {
		return math.Inf(1)
	}
	unarrived := int64(r.agents - r.arrived)
	arrivalCost := float64(r.sumArrivalTicks+unarrived*fe.maxTicks) / float64(r.agents)
	exposureCost := float64(r.exposureTicks) / float64(r.agents)
	return arrivalCost + exposureWeight*exposureCost
}
