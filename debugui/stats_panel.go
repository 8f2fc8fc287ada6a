package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/threadbaregames/lash/game"
	"github.com/threadbaregames/lash/sim"
)

// StatsPanel shows per-stage tick timings, entity counts and a frame-time
// history graph.
type StatsPanel struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

func NewStatsPanel(historyFrames int) StatsPanel {
	return StatsPanel{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

func (ps *StatsPanel) Render(loop *game.Loop, deltaTime float32) {
	if !imgui.BeginV("Simulation Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames

	stats := loop.Stats()

	imgui.Text(fmt.Sprintf("Ticks: %d", stats.TickCount))
	imgui.Text(fmt.Sprintf("Entities: %d", loop.Registry.Len()))
	imgui.Text(fmt.Sprintf("Enemies: %d  Projectiles: %d  Segments: %d",
		loop.Registry.Count(sim.KindEnemy),
		loop.Registry.Count(sim.KindProjectile),
		loop.Registry.Count(sim.KindSegment)))
	imgui.Text(fmt.Sprintf("Pending events: %d", loop.Events.Len()))

	var avgFrameTime float32
	for _, ft := range ps.frameHistory {
		avgFrameTime += ft
	}
	avgFrameTime /= float32(ps.historyFrames)
	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if imgui.TreeNodeStr("Stage Timings") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("StageStatsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Stage")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, stage := range stats.Stages {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(stage.Name)
				imgui.TableNextColumn()
				imgui.Text(formatStageDuration(stage.LastDuration))
				imgui.TableNextColumn()
				imgui.Text(formatStageDuration(stage.AvgDuration))
				imgui.TableNextColumn()
				imgui.Text(formatStageDuration(stage.MaxDuration))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func formatStageDuration(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d.Microseconds())/1000.0)
}
