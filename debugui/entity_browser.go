package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/threadbaregames/lash/sim"
)

type entityRow struct {
	ID   sim.EntityID
	Kind string
	Pos  string
}

// EntityBrowser lists live entities in a filterable, sortable, paged table.
type EntityBrowser struct {
	rows          []entityRow
	filterText    string
	filterKind    string
	selected      sim.EntityID
	sortColumn    int
	sortAscending bool
	rowsPerPage   int
	currentPage   int
}

func NewEntityBrowser(rowsPerPage int) EntityBrowser {
	return EntityBrowser{
		rowsPerPage:   rowsPerPage,
		sortAscending: true,
	}
}

// Selected returns the entity last clicked in the table, or zero.
func (eb *EntityBrowser) Selected() sim.EntityID {
	return eb.selected
}

func (eb *EntityBrowser) Render(reg *sim.Registry) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuild(reg)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterKind = ""
	}

	imgui.Text("Kind:")
	imgui.SameLine()
	if imgui.Button("(all)") {
		eb.filterKind = ""
	}
	for _, kind := range reg.Kinds() {
		imgui.SameLine()
		if imgui.Button(kind) {
			eb.filterKind = kind
		}
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("ID")
		imgui.TableSetupColumn("Gen")
		imgui.TableSetupColumn("Kind")
		imgui.TableSetupColumn("Position")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSpecs.SetSpecsDirty(false)
		}
		eb.sortRows()

		filtered := eb.filteredRows()

		startIdx := eb.currentPage * eb.rowsPerPage
		if startIdx >= len(filtered) {
			startIdx = 0
			eb.currentPage = 0
		}
		endIdx := startIdx + eb.rowsPerPage
		if endIdx > len(filtered) {
			endIdx = len(filtered)
		}

		for _, row := range filtered[startIdx:endIdx] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.selected == row.ID
			label := fmt.Sprintf("%d", row.ID.Index())
			if imgui.SelectableBoolV(label, isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = row.ID
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.ID.Generation()))

			imgui.TableNextColumn()
			imgui.Text(row.Kind)

			imgui.TableNextColumn()
			imgui.Text(row.Pos)
		}

		imgui.EndTable()

		if len(filtered) > eb.rowsPerPage {
			totalPages := (len(filtered) + eb.rowsPerPage - 1) / eb.rowsPerPage
			imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
			imgui.SameLine()
			if imgui.Button("Prev") && eb.currentPage > 0 {
				eb.currentPage--
			}
			imgui.SameLine()
			if imgui.Button("Next") && eb.currentPage < totalPages-1 {
				eb.currentPage++
			}
		} else {
			imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
		}
	}

	imgui.End()
}

func (eb *EntityBrowser) rebuild(reg *sim.Registry) {
	eb.rows = eb.rows[:0]
	reg.Each(func(e *sim.Entity) bool {
		eb.rows = append(eb.rows, entityRow{
			ID:   e.ID,
			Kind: e.Kind,
			Pos:  fmt.Sprintf("(%.1f, %.1f)", e.Pos.X, e.Pos.Y),
		})
		return true
	})
}

func (eb *EntityBrowser) sortRows() {
	sort.Slice(eb.rows, func(i, j int) bool {
		a, b := eb.rows[i], eb.rows[j]
		var less bool

		switch eb.sortColumn {
		case 1:
			less = a.ID.Generation() < b.ID.Generation()
		case 2:
			less = a.Kind < b.Kind
		case 3:
			less = a.Pos < b.Pos
		default:
			less = a.ID.Index() < b.ID.Index()
		}

		if !eb.sortAscending {
			return !less
		}
		return less
	})
}

func (eb *EntityBrowser) filteredRows() []entityRow {
	if eb.filterText == "" && eb.filterKind == "" {
		return eb.rows
	}

	filtered := make([]entityRow, 0, len(eb.rows))
	filterLower := strings.ToLower(eb.filterText)

	for _, row := range eb.rows {
		if eb.filterKind != "" && row.Kind != eb.filterKind {
			continue
		}
		if eb.filterText != "" {
			idStr := fmt.Sprintf("%d", row.ID.Index())
			if !strings.Contains(idStr, filterLower) &&
				!strings.Contains(strings.ToLower(row.Kind), filterLower) &&
				!strings.Contains(row.Pos, filterLower) {
				continue
			}
		}
		filtered = append(filtered, row)
	}

	return filtered
}
