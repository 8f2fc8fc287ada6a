package main

import (
	"fmt"
	"image/color"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/threadbaregames/lash/config"
	"github.com/threadbaregames/lash/debugui"
	debugui_ebiten "github.com/threadbaregames/lash/debugui/ebiten"
	"github.com/threadbaregames/lash/game"
	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/vec"
)

const (
	gridWidth  = 40
	gridHeight = 30
	cellSize   = 24

	segmentCount   = 6
	playerHealth   = 20
	playerSpeed    = 9.0
	segmentSpacing = 1.1

	tickMs = 1000.0 / 60.0
)

var enemyColors = map[string]color.RGBA{
	"chaser":  {210, 125, 95, 255},
	"patrol":  {145, 95, 170, 255},
	"shooter": {170, 70, 70, 255},
}

type gameOptions struct {
	Tuning     *config.Tuning
	Difficulty string
	Seed       uint64
	Debug      bool
	Logger     *zap.Logger
}

// Game is the Ebiten driver around one world. It owns input, the segment
// chain, rendering and the optional debug overlay; all simulation semantics
// live below it.
type Game struct {
	opts gameOptions
	log  *zap.Logger

	world    *game.World
	player   sim.EntityID
	segments []sim.EntityID

	score    int
	gameOver bool

	backend   *debugui_ebiten.Backend
	overlay   *debugui.Overlay
	lastFrame time.Time
}

func newGame(opts gameOptions) (*Game, error) {
	g := &Game{
		opts:      opts,
		log:       opts.Logger,
		lastFrame: time.Now(),
	}
	if err := g.reset(); err != nil {
		return nil, err
	}

	if opts.Debug {
		g.backend = debugui_ebiten.NewBackend()
		imgui.CurrentIO().SetIniFilename("") // no imgui.ini next to the binary
		g.overlay = debugui.NewOverlay(g.world)
	}
	return g, nil
}

// reset rebuilds the world from scratch. Used at startup and on restart.
func (g *Game) reset() error {
	w, err := game.NewWorld(game.Params{
		Tuning:     g.opts.Tuning,
		Grid:       config.Grid{Width: gridWidth, Height: gridHeight, CellSize: cellSize},
		Difficulty: g.opts.Difficulty,
		Seed:       g.opts.Seed,
		Logger:     g.log,
	})
	if err != nil {
		return err
	}
	g.world = w
	g.player, g.segments = w.SpawnPlayer(segmentCount, playerHealth)
	g.score = 0
	g.gameOver = false
	if g.overlay != nil {
		g.overlay = debugui.NewOverlay(w)
	}
	return nil
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if g.gameOver {
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			if err := g.reset(); err != nil {
				return err
			}
		}
		return nil
	}

	if g.backend != nil {
		g.backend.BeginFrame()
	}

	g.steerPlayer()
	g.world.Loop.Once(time.Now(), tickMs)
	g.followSegments()
	g.consumeEvents()

	if g.backend != nil {
		now := time.Now()
		delta := float32(now.Sub(g.lastFrame).Seconds())
		g.lastFrame = now
		g.overlay.Render(delta)
		g.backend.EndFrame()
	}
	return nil
}

func (g *Game) steerPlayer() {
	if g.overlay != nil {
		if _, keyboard := debugui.WantCapture(); keyboard {
			g.world.Loop.Physics.SetVelocity(g.player, vec.Vec2{})
			return
		}
	}

	var dir vec.Vec2
	if ebiten.IsKeyPressed(ebiten.KeyLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		dir.X -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		dir.X += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		dir.Y -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		dir.Y += 1
	}
	g.world.Loop.Physics.SetVelocity(g.player, dir.Normalized().Scale(playerSpeed))
}

// followSegments drags the chain behind the head: each segment closes on
// its predecessor until it sits at the fixed spacing. A sharp turn of the
// head whips the tail through a large positional delta, which is exactly
// what arms the segments.
func (g *Game) followSegments() {
	reg := g.world.Loop.Registry

	prevEntity, ok := reg.Get(g.player)
	if !ok {
		return
	}
	prev := prevEntity.Pos

	for _, id := range g.segments {
		e, ok := reg.Get(id)
		if !ok {
			continue
		}
		offset := e.Pos.Sub(prev)
		if offset.Len() > segmentSpacing {
			pos := prev.Add(offset.Normalized().Scale(segmentSpacing))
			reg.UpdatePosition(id, pos)
			prev = pos
		} else {
			prev = e.Pos
		}
	}
}

func (g *Game) consumeEvents() {
	events := g.world.Drain()
	for _, e := range events {
		if e.Type != sim.EventEntityDefeated {
			continue
		}
		switch e.Kind {
		case sim.KindEnemy:
			g.score++
		case sim.KindPlayer:
			g.gameOver = true
			g.log.Info("player defeated", zap.Int("score", g.score))
		}
	}
	if g.overlay != nil {
		g.overlay.ObserveEvents(events)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{24, 26, 32, 255})
	vector.StrokeRect(screen, 0, 0, gridWidth*cellSize, gridHeight*cellSize, 2, color.RGBA{70, 74, 86, 255}, false)

	reg := g.world.Loop.Registry
	cr := g.world.Loop.Combat

	for _, id := range reg.ByKind(sim.KindProjectile) {
		if e, ok := reg.Get(id); ok {
			sx, sy := toScreen(e.Pos)
			vector.DrawFilledCircle(screen, sx, sy, 0.15*cellSize, color.RGBA{240, 220, 120, 255}, false)
		}
	}

	for _, id := range reg.ByKind(sim.KindEnemy) {
		e, ok := reg.Get(id)
		if !ok {
			continue
		}
		col := color.RGBA{190, 120, 70, 255}
		if typ, ok := g.world.Loop.Spawner.EnemyTypeOf(id); ok {
			if c, known := enemyColors[typ]; known {
				col = c
			}
		}
		sx, sy := toScreen(e.Pos)
		vector.DrawFilledCircle(screen, sx, sy, 0.4*cellSize, col, false)
		g.drawHealthBar(screen, id, e.Pos)
	}

	for _, id := range g.segments {
		e, ok := reg.Get(id)
		if !ok {
			continue
		}
		col := color.RGBA{130, 140, 160, 255}
		if state, ok := cr.SegmentStateOf(id); ok && state.Damaging {
			col = color.RGBA{120, 210, 250, 255}
		}
		sx, sy := toScreen(e.Pos)
		vector.DrawFilledCircle(screen, sx, sy, 0.32*cellSize, col, false)
	}

	if e, ok := reg.Get(g.player); ok {
		sx, sy := toScreen(e.Pos)
		vector.DrawFilledCircle(screen, sx, sy, 0.42*cellSize, color.RGBA{220, 210, 190, 255}, false)
	}

	hud := fmt.Sprintf("Score: %d", g.score)
	if h, ok := cr.HealthOf(g.player); ok {
		hud += fmt.Sprintf("  HP: %d/%d", h.Current, h.Max)
	}
	ebitenutil.DebugPrintAt(screen, hud, 8, 8)

	if g.gameOver {
		ebitenutil.DebugPrintAt(screen, "GAME OVER - press R to restart", gridWidth*cellSize/2-90, gridHeight*cellSize/2)
	}

	if g.backend != nil {
		g.backend.Draw(screen)
	}
}

func (g *Game) drawHealthBar(screen *ebiten.Image, id sim.EntityID, pos vec.Vec2) {
	h, ok := g.world.Loop.Combat.HealthOf(id)
	if !ok || h.Current >= h.Max {
		return
	}
	sx, sy := toScreen(pos)
	const barWidth, barHeight = 0.9 * cellSize, 3
	pct := float32(h.Current) / float32(h.Max)
	vector.DrawFilledRect(screen, sx-barWidth/2, sy-0.6*cellSize, barWidth, barHeight, color.RGBA{100, 100, 100, 255}, false)
	vector.DrawFilledRect(screen, sx-barWidth/2, sy-0.6*cellSize, barWidth*pct, barHeight, color.RGBA{100, 200, 100, 255}, false)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.backend != nil {
		g.backend.Layout(outsideWidth, outsideHeight)
	}
	return gridWidth * cellSize, gridHeight * cellSize
}

func toScreen(p vec.Vec2) (float32, float32) {
	return float32(p.X * cellSize), float32(p.Y * cellSize)
}
