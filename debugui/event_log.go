package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/threadbaregames/lash/sim"
)

// EventLog keeps the most recent simulation events in a bounded ring and
// renders them newest-first.
type EventLog struct {
	entries []sim.Event
	cap     int
	paused  bool
}

func NewEventLog(capacity int) EventLog {
	return EventLog{
		entries: make([]sim.Event, 0, capacity),
		cap:     capacity,
	}
}

// Add appends a tick's events, evicting the oldest beyond capacity.
func (el *EventLog) Add(events []sim.Event) {
	if el.paused {
		return
	}
	el.entries = append(el.entries, events...)
	if over := len(el.entries) - el.cap; over > 0 {
		el.entries = append(el.entries[:0], el.entries[over:]...)
	}
}

func (el *EventLog) Render() {
	if !imgui.BeginV("Event Log", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if imgui.Button(pauseLabel(el.paused)) {
		el.paused = !el.paused
	}
	imgui.SameLine()
	if imgui.Button("Clear") {
		el.entries = el.entries[:0]
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EventTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Type")
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Detail")
		imgui.TableSetupColumn("Position")
		imgui.TableHeadersRow()

		for i := len(el.entries) - 1; i >= 0; i-- {
			e := el.entries[i]
			imgui.TableNextRow()

			imgui.TableNextColumn()
			imgui.Text(e.Type.String())

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%s #%d", e.Kind, e.Entity.Index()))

			imgui.TableNextColumn()
			imgui.Text(eventDetail(e))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("(%.1f, %.1f)", e.Pos.X, e.Pos.Y))
		}

		imgui.EndTable()
	}

	imgui.End()
}

func eventDetail(e sim.Event) string {
	switch e.Type {
	case sim.EventEnemySpawned:
		return e.EnemyType
	case sim.EventProjectileHit, sim.EventImpact:
		return fmt.Sprintf("damage %d", e.Damage)
	}
	return ""
}

func pauseLabel(paused bool) string {
	if paused {
		return "Resume"
	}
	return "Pause"
}
