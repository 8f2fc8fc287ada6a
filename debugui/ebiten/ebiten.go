// Package ebiten provides Dear ImGui backend integration for drivers built
// on the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
)

// Backend wraps the Ebiten-specific Dear ImGui backend implementation. Call
// BeginFrame before rendering overlay panels and EndFrame after, then Draw
// from the game's Draw callback.
type Backend struct {
	*ebitenbackend.EbitenBackend
}

// NewBackend creates a backend bound to a fresh ImGui context.
func NewBackend() *Backend {
	return &Backend{EbitenBackend: ebitenbackend.NewEbitenBackend()}
}
