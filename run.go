package morph

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	// ExitWhenScriptDone ends the game loop once the host's script runner
	// has played every step.
	ExitWhenScriptDone bool
}

// errScriptDone ends RunGame without reporting a failure.
var errScriptDone = errors.New("morph: script done")

// game adapts a Host to ebiten.Game.
type game struct {
	host *Host
	cfg  RunConfig
}

func (g *game) Update() error {
	g.host.Update(1 / float32(ebiten.TPS()))
	if g.cfg.ExitWhenScriptDone && g.host.runner != nil && g.host.runner.Done() {
		return errScriptDone
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.host.Draw(screen)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (g *game) Layout(int, int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and drives host until the window is closed. Width and
// Height default to the host viewport.
func Run(host *Host, cfg RunConfig) error {
	w, h := host.Viewport()
	if cfg.Width <= 0 {
		cfg.Width = int(w)
	}
	if cfg.Height <= 0 {
		cfg.Height = int(h)
	}
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	err := ebiten.RunGame(&game{host: host, cfg: cfg})
	if errors.Is(err, errScriptDone) {
		return nil
	}
	return err
}
