package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/game"
)

// Inspector renders the selected entity's state on the right side of the screen.
type Inspector struct {
	renderer *Renderer
	width    int32
}

// NewInspector creates an inspector panel of the given width.
func NewInspector(width int32) *Inspector {
	return &Inspector{renderer: NewRenderer(), width: width}
}

// Bounds returns the panel rectangle for a screen of the given width.
func (i *Inspector) Bounds(screenW int32, in game.Inspection) rl.Rectangle {
	return rl.Rectangle{
		X:      float32(screenW - i.width - 10),
		Y:      10,
		Width:  float32(i.width),
		Height: float32(i.height(in)),
	}
}

func (i *Inspector) height(in game.Inspection) int32 {
	lines := int32(5)
	if in.View.Kind == components.KindBlob {
		lines = 24
	}
	return lines*i.renderer.Theme.LineHeight + 2*i.renderer.Theme.Padding
}

// Draw renders the panel for one inspected entity.
func (i *Inspector) Draw(screenW int32, in game.Inspection) {
	r := i.renderer
	b := i.Bounds(screenW, in)
	r.DrawPanel(int32(b.X), int32(b.Y), int32(b.Width), int32(b.Height))

	x := int32(b.X) + r.Theme.Padding
	y := int32(b.Y) + r.Theme.Padding
	w := i.width - 2*r.Theme.Padding

	v := in.View
	y = r.DrawSectionHeader(x, y, fmt.Sprintf("%s #%d", v.Kind, v.ID))
	y = r.DrawLabelValue(x, y, "Position", fmt.Sprintf("%.1f, %.1f", v.X, v.Y))
	y = r.DrawLabelValue(x, y, "Radius", fmt.Sprintf("%.2f", v.Radius))

	if v.Kind == components.KindFood {
		r.DrawLabelValue(x, y, "Nutrition", fmt.Sprintf("%.1f", in.Nutrition))
		return
	}

	y = r.DrawLabelValue(x, y, "Archetype", in.Archetype)
	mode := v.Mode.String()
	if in.Behavior.Mode == components.ModeFleeing && in.Behavior.FleeFrom != 0 {
		mode += fmt.Sprintf(" from #%d", in.Behavior.FleeFrom)
	} else if in.Behavior.Mode == components.ModePursuing && in.Behavior.Target != 0 {
		mode += fmt.Sprintf(" #%d", in.Behavior.Target)
	}
	y = r.DrawLabelValue(x, y, "Mode", mode)
	y = r.DrawLabelValue(x, y, "Age", fmt.Sprintf("%.1fs", in.Vitals.Age))
	y += 4

	y = r.DrawSectionHeader(x, y, "Vitals")
	y = r.DrawMeter(x, y, "Health", in.Vitals.Health, in.Vitals.MaxHealth, w)
	y = r.DrawMeter(x, y, "Energy", in.Vitals.Energy, in.Vitals.MaxEnergy, w)
	if in.Vitals.Starving > 0 {
		y = r.DrawLabelValue(x, y, "Starving", fmt.Sprintf("%.1fs", in.Vitals.Starving))
	}
	y += 4

	g := in.Genome
	y = r.DrawSectionHeader(x, y, "Traits")
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%.1f", g.Speed))
	y = r.DrawLabelValue(x, y, "Sight", fmt.Sprintf("%.0f (fov %.0f deg)", g.Sight, g.FOV*180/math.Pi))
	y = r.DrawLabelValue(x, y, "Attack", fmt.Sprintf("%.2f", g.Attack))
	y = r.DrawBar(x, y, "Defence", g.Defence, w)
	y = r.DrawBar(x, y, "Fear", g.Fear, w)
	y = r.DrawBar(x, y, "Camouflage", g.Camouflage, w)
	y = r.DrawColorSwatch(x, y, "Color", g.Color)
	y = r.DrawColorSwatch(x, y, "Likes", g.FavoriteColor)
	y += 4

	y = r.DrawSectionHeader(x, y, "Lifetime")
	y = r.DrawLabelValue(x, y, "Food eaten", fmt.Sprintf("%d (%.0f energy)", in.Lifetime.FoodEaten, in.Lifetime.EnergyEaten))
	r.DrawLabelValue(x, y, "Kills", fmt.Sprintf("%d", in.Lifetime.Kills))
}
