package main

import (
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/threadbaregames/lash/game"
)

// WorldResult is what one headless world hands back when its run ends.
type WorldResult struct {
	Ticks        int64
	Spawned      int64
	Defeated     int64
	PeakEntities int
	Stats        *game.LoopStats
}

// StageSummary aggregates one stage's timings across all worlds.
type StageSummary struct {
	Name string
	Min  time.Duration
	Max  time.Duration
	Avg  time.Duration
}

type Report struct {
	// Configuration
	RunID      string
	Duration   time.Duration
	Worlds     int
	Difficulty string

	// Results
	TotalTime       time.Duration
	TotalTicks      int64
	EnemiesSpawned  int64
	EnemiesDefeated int64
	PeakEntities    int
	Stages          []StageSummary

	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// Aggregate folds the per-world results into the report.
func (r *Report) Aggregate(results []WorldResult) {
	type acc struct {
		min   time.Duration
		max   time.Duration
		total time.Duration
		count int64
	}
	var accs []*acc
	var names []string

	for _, res := range results {
		r.TotalTicks += res.Ticks
		r.EnemiesSpawned += res.Spawned
		r.EnemiesDefeated += res.Defeated
		if res.PeakEntities > r.PeakEntities {
			r.PeakEntities = res.PeakEntities
		}
		if res.Stats == nil {
			continue
		}

		if accs == nil {
			accs = make([]*acc, len(res.Stats.Stages))
			names = make([]string, len(res.Stats.Stages))
			for i, s := range res.Stats.Stages {
				accs[i] = &acc{min: s.MinDuration}
				names[i] = s.Name
			}
		}
		for i, s := range res.Stats.Stages {
			a := accs[i]
			if s.MinDuration < a.min {
				a.min = s.MinDuration
			}
			if s.MaxDuration > a.max {
				a.max = s.MaxDuration
			}
			a.total += s.TotalDuration
			a.count += s.ExecutionCount
		}
	}

	for i, a := range accs {
		avg := time.Duration(0)
		if a.count > 0 {
			avg = a.total / time.Duration(a.count)
		}
		r.Stages = append(r.Stages, StageSummary{
			Name: names[i],
			Min:  a.min,
			Max:  a.max,
			Avg:  avg,
		})
	}
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Lash Stress Report ({{.RunID}})

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Parallel Worlds:** {{.Worlds}}
- **Difficulty:** {{.Difficulty}}

## Simulation Results
- **Total Ticks:** {{.TotalTicks}}
- **Total Test Time:** {{.TotalTime}}
- **Enemies Spawned:** {{.EnemiesSpawned}}
- **Enemies Defeated:** {{.EnemiesDefeated}}
- **Peak Entities (single world):** {{.PeakEntities}}

## Stage Timings (across worlds)
{{range .Stages}}- **{{.Name}}:** avg {{.Avg}}, min {{.Min}}, max {{.Max}}
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
