// Package debugui renders a Dear ImGui inspection overlay for a running
// simulation: an entity browser, per-stage timing statistics and a rolling
// event log. Drivers call Render once per frame between the backend's
// BeginFrame and EndFrame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/threadbaregames/lash/game"
	"github.com/threadbaregames/lash/sim"
)

// Overlay bundles the debug panels over one world.
type Overlay struct {
	World *game.World

	browser  EntityBrowser
	stats    StatsPanel
	eventLog EventLog
}

// NewOverlay creates an overlay for the given world.
func NewOverlay(w *game.World) *Overlay {
	return &Overlay{
		World:    w,
		browser:  NewEntityBrowser(64),
		stats:    NewStatsPanel(120),
		eventLog: NewEventLog(256),
	}
}

// ObserveEvents records a tick's drained events for the event log. Pass the
// same slice the driver consumes; the overlay copies what it keeps.
func (o *Overlay) ObserveEvents(events []sim.Event) {
	o.eventLog.Add(events)
}

// Render draws all panels. Must run inside an active ImGui frame.
func (o *Overlay) Render(deltaTime float32) {
	o.browser.Render(o.World.Loop.Registry)
	o.stats.Render(o.World.Loop, deltaTime)
	o.eventLog.Render()
}

// WantCapture reports whether ImGui is consuming mouse or keyboard input,
// so the driver can suppress gameplay input while a panel is focused.
func WantCapture() (mouse, keyboard bool) {
	io := imgui.CurrentIO()
	return io.WantCaptureMouse(), io.WantCaptureKeyboard()
}
