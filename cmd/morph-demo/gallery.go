package main

import (
	"fmt"

	"github.com/phanxgames/morph"
	"go.uber.org/zap"
)

var (
	colorBackground = morph.Color{R: 0.11, G: 0.11, B: 0.14, A: 1}
	colorPanel      = morph.Color{R: 0.93, G: 0.92, B: 0.88, A: 1}
	colorTeam       = morph.Color{R: 0.35, G: 0.55, B: 0.8, A: 1}
)

var projectColors = []morph.Color{
	{R: 0.9, G: 0.35, B: 0.3, A: 1},
	{R: 0.95, G: 0.7, B: 0.25, A: 1},
	{R: 0.35, G: 0.75, B: 0.45, A: 1},
	{R: 0.3, G: 0.6, B: 0.9, A: 1},
	{R: 0.6, G: 0.4, B: 0.85, A: 1},
	{R: 0.85, G: 0.45, B: 0.7, A: 1},
}

const (
	gridCols = 3
	thumbW   = 120
	thumbH   = 80
	gridGap  = 24
	cardSize = 56
)

// buildGallery assembles two roots on one page: a project grid ("work") and
// a team row ("team"). Opening one closes the other.
func buildGallery(cfg morph.Config, start morph.Location, logger *zap.Logger) *morph.Host {
	scene := morph.NewScene()
	scene.ClearColor = colorBackground
	scene.SetDebugMode(cfg.Debug)

	history := morph.NewHistory(start)
	host := morph.NewHost(scene, history,
		morph.WithLogger(logger),
		morph.WithViewport(cfg.Viewport.Width, cfg.Viewport.Height))
	vw, vh := host.Viewport()

	work := morph.NewRoot(host, "work", "proj-1", cfg.ForRoot("work"))
	workPortal := morph.NewPortal(work)
	workPortal.Add(morph.NewBackground(work).Node())

	gridW := float64(gridCols*thumbW + (gridCols-1)*gridGap)
	x0 := (vw - gridW) / 2
	for i, c := range projectColors {
		id := fmt.Sprintf("proj-%d", i+1)

		thumb := morph.NewItem(id, thumbW, thumbH)
		thumb.Node().Color = c
		trigger := morph.NewTrigger(work, thumb, morph.WithTriggerPath(id))
		trigger.Node().SetPosition(
			x0+float64((i%gridCols)*(thumbW+gridGap)),
			64+float64((i/gridCols)*(thumbH+gridGap)))
		work.Node().AddChild(trigger.Node())

		workPortal.Add(projectView(work, id, c, vw, vh))
	}

	team := morph.NewRoot(host, "team", "ada", cfg.ForRoot("team"))
	teamPortal := morph.NewPortal(team)
	teamPortal.Add(morph.NewBackground(team).Node())
	for i, name := range []string{"ada", "grace", "linus"} {
		card := morph.NewItem(name, cardSize, cardSize)
		card.Node().Color = colorTeam
		trigger := morph.NewTrigger(team, card, morph.WithTriggerPath(name))
		trigger.Node().SetPosition(x0+float64(i*(cardSize+gridGap)), vh-cardSize-48)
		team.Node().AddChild(trigger.Node())
	}
	// Team members share one profile view with its own item id, so opening
	// a card fades rather than morphs.
	profile := morph.NewContent(team)
	profile.Node().SetPosition(vw/2-140, vh/2-90)
	profile.Node().SetSize(280, 180)
	profile.Node().Color = colorPanel
	teamPortal.Add(profile.Node())

	scene.Root().AddChild(work.Node())
	scene.Root().AddChild(team.Node())
	return host
}

// projectView builds the expanded view for one project. It is hidden unless
// the work root is showing that project.
func projectView(root *morph.Root, id string, c morph.Color, vw, vh float64) *morph.Node {
	content := morph.NewContent(root)
	w, h := vw*0.7, vh*0.7
	content.Node().SetPosition((vw-w)/2, (vh-h)/2)
	content.Node().SetSize(w, h)
	content.Node().Color = colorPanel

	hero := morph.NewItem(id, w-32, h*0.55)
	hero.Node().Color = c
	hero.Node().SetPosition(16, 16)
	content.Add(hero.Node())

	root.Machine().OnTransition(func(tr morph.Transition) {
		if tr.To != morph.StateClosed && tr.From == morph.StateClosed {
			content.Node().Visible = tr.Identity == id
		}
	})
	return content.Node()
}
