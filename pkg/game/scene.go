package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents a running level (one background scroll session).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// Closer is an optional interface for scenes holding resources
// (entities, trace files, observer connections) that must be released on switch.
type Closer interface {
	Close() error
}
