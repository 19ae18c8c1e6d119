// Interactive steering viewer with live behaviour tuning.
//
// Usage: go run ./cmd/steerview [-config path]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arcfield/steer/config"
	"github.com/arcfield/steer/sim"
)

const panelWidth = 280

// gains mirrors the tunable behaviour parameters exposed on the panel.
type gains struct {
	Seek      float32
	Flee      float32
	FleeOuter float32
	Adjust    float32
	Stabilize float32
	Memory    float32
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	world, err := sim.NewWorld(cfg, nil)
	if err != nil {
		slog.Error("failed to build world", "error", err)
		os.Exit(1)
	}
	defer world.Close()

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Context Steering")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	viewW := float64(cfg.Screen.Width - panelWidth)
	viewH := float64(cfg.Screen.Height)
	scale := math.Min(viewW/cfg.World.Width, viewH/cfg.World.Height)

	g := readGains(cfg)
	paused := false
	selected := -1

	var accum float32
	for !rl.WindowShouldClose() {
		world.Perf().RecordFrame()

		if !paused {
			accum += rl.GetFrameTime()
			dt := float32(cfg.Derived.DT)
			for accum >= dt {
				accum -= dt
				if err := world.Step(); err != nil {
					slog.Error("step failed", "tick", world.Tick(), "error", err)
					paused = true
					break
				}
			}
		}

		if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			mx, my := float64(rl.GetMouseX()), float64(rl.GetMouseY())
			if mx < viewW {
				selected = pickAgent(world, mx, my, scale, viewH)
			}
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		drawArena(world, scale, viewH, selected)

		panelX := float32(viewW) + 10
		panelY := float32(10)

		rl.DrawText("Behaviour Gains", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		changed := false
		changed = sliderRow(panelX, &panelY, "Seek gain", &g.Seek, 0, 3, "%.2f") || changed
		changed = sliderRow(panelX, &panelY, "Flee gain", &g.Flee, 0, 3, "%.2f") || changed
		changed = sliderRow(panelX, &panelY, "Flee radius", &g.FleeOuter, 40, 400, "%.0f") || changed
		changed = sliderRow(panelX, &panelY, "Separation gain", &g.Adjust, 0, 2, "%.2f") || changed
		changed = sliderRow(panelX, &panelY, "Stabilization", &g.Stabilize, 0, 1, "%.2f") || changed
		changed = sliderRow(panelX, &panelY, "Memory factor", &g.Memory, 0, 1, "%.2f") || changed

		if changed {
			applyGains(cfg, g)
			if err := world.Rebuild(cfg); err != nil {
				slog.Error("rebuild failed", "error", err)
			}
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(paused, "Resume", "Pause")) {
			paused = !paused
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Step") {
			if err := world.Step(); err != nil {
				slog.Error("step failed", "tick", world.Tick(), "error", err)
			}
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset") {
			world.Close()
			world, err = sim.NewWorld(cfg, nil)
			if err != nil {
				slog.Error("failed to rebuild world", "error", err)
				os.Exit(1)
			}
			selected = -1
		}
		panelY += 50

		stats := world.WindowStats()
		perf := world.Perf().Stats()
		rl.DrawText(fmt.Sprintf("tick %d  arrived %d/%d", world.Tick(), stats.Arrived, stats.Agents), int32(panelX), int32(panelY), 14, rl.DarkGray)
		panelY += 20
		rl.DrawText(fmt.Sprintf("decision p50 %.2f  danger p90 %.2f", stats.DecisionP50, stats.DangerP90), int32(panelX), int32(panelY), 14, rl.DarkGray)
		panelY += 20
		rl.DrawText(fmt.Sprintf("tick avg %v  tps %.0f  fps %.0f", perf.AvgTickDuration, perf.TicksPerSecond, perf.FPS), int32(panelX), int32(panelY), 14, rl.DarkGray)
		panelY += 30

		rl.DrawText("Click an agent to inspect its receptors", int32(panelX), int32(panelY), 12, rl.Gray)

		rl.EndDrawing()
	}
}

// readGains pulls the current slider values out of the behaviour list.
func readGains(cfg *config.Config) gains {
	g := gains{Seek: 1, Flee: 1, FleeOuter: 160, Adjust: 1, Stabilize: 0.2, Memory: 0.4}
	for _, b := range cfg.Behaviors {
		switch b.Type {
		case "seek":
			if b.MagnitudeMultiplier != 0 {
				g.Seek = float32(b.MagnitudeMultiplier)
			}
		case "flee":
			if b.MagnitudeMultiplier != 0 {
				g.Flee = float32(b.MagnitudeMultiplier)
			}
			if b.OuterRadius != 0 {
				g.FleeOuter = float32(b.OuterRadius)
			}
		case "adjust":
			if b.MagnitudeMultiplier != 0 {
				g.Adjust = float32(b.MagnitudeMultiplier)
			}
		case "stabilization":
			if b.MaxIncrease != 0 {
				g.Stabilize = float32(b.MaxIncrease)
			}
		case "retention":
			g.Memory = float32(b.MemoryFactor)
		}
	}
	return g
}

// applyGains writes the slider values back into the behaviour list.
func applyGains(cfg *config.Config, g gains) {
	for i := range cfg.Behaviors {
		b := &cfg.Behaviors[i]
		switch b.Type {
		case "seek":
			b.MagnitudeMultiplier = float64(g.Seek)
		case "flee":
			b.MagnitudeMultiplier = float64(g.Flee)
			b.OuterRadius = float64(g.FleeOuter)
		case "adjust":
			b.MagnitudeMultiplier = float64(g.Adjust)
		case "stabilization":
			b.MaxIncrease = float64(g.Stabilize)
		case "retention":
			b.MemoryFactor = float64(g.Memory)
		}
	}
}

// sliderRow draws one labelled slider and reports whether the value moved.
func sliderRow(panelX float32, panelY *float32, label string, value *float32, min, max float32, format string) bool {
	rl.DrawText(label, int32(panelX), int32(*panelY), 14, rl.Gray)
	*panelY += 18
	next := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: *panelY, Width: panelWidth - 90, Height: 20},
		"", "",
		*value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, *value), int32(panelX+panelWidth-80), int32(*panelY+2), 16, rl.DarkGray)
	*panelY += 32
	if next != *value {
		*value = next
		return true
	}
	return false
}

// toScreen maps an arena position to window pixels, y up in the arena.
func toScreen(p r3.Vec, scale, viewH float64) (float32, float32) {
	return float32(p.X * scale), float32(viewH - p.Y*scale)
}

// pickAgent returns the index of the agent nearest the mouse, or -1.
func pickAgent(world *sim.World, mx, my, scale, viewH float64) int {
	best := -1
	bestDist := 15.0 * 15.0
	world.ForEachAgent(func(i int, v sim.AgentView) {
		sx, sy := toScreen(v.Pose.Position, scale, viewH)
		dx, dy := mx-float64(sx), my-float64(sy)
		if d := dx*dx + dy*dy; d < bestDist {
			bestDist = d
			best = i
		}
	})
	return best
}

// drawArena renders the goal, threats, agents and the selected agent's
// receptor values.
func drawArena(world *sim.World, scale, viewH float64, selected int) {
	cfg := world.Config()

	gx, gy := toScreen(world.Goal(), scale, viewH)
	rl.DrawCircle(int32(gx), int32(gy), 8, rl.Gold)
	rl.DrawCircleLines(int32(gx), int32(gy), 10, rl.Orange)

	for _, t := range world.Threats() {
		tx, ty := toScreen(t, scale, viewH)
		rl.DrawCircle(int32(tx), int32(ty), 6, rl.Red)
	}

	world.ForEachAgent(func(i int, v sim.AgentView) {
		sx, sy := toScreen(v.Pose.Position, scale, viewH)
		col := rl.SkyBlue
		if v.Arrived {
			col = rl.Lime
		}
		rl.DrawCircle(int32(sx), int32(sy), 4, col)

		hx := sx + float32(10*math.Cos(v.Pose.Heading))
		hy := sy - float32(10*math.Sin(v.Pose.Heading))
		rl.DrawLine(int32(sx), int32(sy), int32(hx), int32(hy), rl.DarkBlue)

		if i == selected {
			drawReceptors(v, sx, sy, cfg.Objectives.Interest, cfg.Objectives.Danger)
		}
	})
}

// drawReceptors fans out one line per receptor, green scaled by interest and
// red scaled by danger.
func drawReceptors(v sim.AgentView, sx, sy float32, interest, danger int) {
	rot := sim.HeadingRotation(v.Pose.Heading)
	interestRow := v.Problem.Values(interest)
	dangerRow := v.Problem.Values(danger)

	for i := 0; i < v.Sensor.ReceptorCount(); i++ {
		dir := rot.Rotate(v.Sensor.Receptor(i).Structure.Direction)
		var iv, dv float64
		if i < len(interestRow) {
			iv = interestRow[i]
		}
		if i < len(dangerRow) {
			dv = dangerRow[i]
		}
		ex := sx + float32((12+40*iv)*dir.X)
		ey := sy - float32((12+40*iv)*dir.Y)
		rl.DrawLine(int32(sx), int32(sy), int32(ex), int32(ey), rl.Fade(rl.Green, float32(0.3+0.7*math.Min(iv, 1))))
		if dv > 0 {
			ex = sx + float32((12+40*dv)*dir.X)
			ey = sy - float32((12+40*dv)*dir.Y)
			rl.DrawLine(int32(sx), int32(sy), int32(ex), int32(ey), rl.Fade(rl.Red, float32(0.3+0.7*math.Min(dv, 1))))
		}
	}

	if v.Decided {
		dir := rot.Rotate(v.Decision.Direction)
		ex := sx + float32(60*v.Decision.Magnitude*dir.X)
		ey := sy - float32(60*v.Decision.Magnitude*dir.Y)
		rl.DrawLine(int32(sx), int32(sy), int32(ex), int32(ey), rl.Purple)
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
