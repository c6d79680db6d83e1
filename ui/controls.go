package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlActions reports which controls were used this frame.
type ControlActions struct {
	TogglePause    bool
	SpawnBlob      bool
	SpawnFood      bool
	ResetView      bool
	StepsPerUpdate int
}

// ControlsPanel renders the raygui buttons, speed slider and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Bounds returns the panel rectangle, or an empty one when hidden.
func (c *ControlsPanel) Bounds(overlays *OverlayRegistry) rl.Rectangle {
	if !c.visible {
		return rl.Rectangle{}
	}
	return rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.height(overlays))}
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	lh := c.renderer.Theme.LineHeight
	rows := int32(0)
	for _, cat := range overlays.Categories() {
		rows += int32(len(overlays.ByCategory(cat))) + 1
	}
	// Two button rows, the slider row and the overlay rows.
	return 3*(buttonHeight+6) + rows*(lh+4) + 2*c.renderer.Theme.Padding + lh
}

const buttonHeight = 24

// Draw renders the panel and returns what the user clicked.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, paused bool, steps int) ControlActions {
	actions := ControlActions{StepsPerUpdate: steps}
	if !c.visible {
		return actions
	}

	r := c.renderer
	pad := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height(overlays))

	x := float32(c.x + pad)
	y := float32(c.y + pad)
	half := float32(c.width-3*pad) / 2

	pauseLabel := "Pause"
	if paused {
		pauseLabel = "Resume"
	}
	actions.TogglePause = gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: buttonHeight}, pauseLabel)
	actions.ResetView = gui.Button(rl.Rectangle{X: x + half + float32(pad), Y: y, Width: half, Height: buttonHeight}, "Reset View")
	y += buttonHeight + 6

	actions.SpawnBlob = gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: buttonHeight}, "Spawn Blob")
	actions.SpawnFood = gui.Button(rl.Rectangle{X: x + half + float32(pad), Y: y, Width: half, Height: buttonHeight}, "Spawn Food")
	y += buttonHeight + 6

	speed := gui.SliderBar(
		rl.Rectangle{X: x + 40, Y: y, Width: float32(c.width-2*pad) - 80, Height: buttonHeight - 6},
		"Speed", fmt.Sprintf("%dx", steps),
		float32(steps), 1, 20,
	)
	actions.StepsPerUpdate = max(int(speed+0.5), 1)
	y += buttonHeight + 6

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), int32(x), int32(y), r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += float32(r.Theme.LineHeight + 4)
		for _, desc := range overlays.ByCategory(category) {
			label := fmt.Sprintf("%s [%s]", desc.Name, desc.KeyLabel)
			enabled := overlays.IsEnabled(desc.ID)
			if gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 12, Height: 12}, label, enabled) != enabled {
				overlays.Toggle(desc.ID)
			}
			y += float32(r.Theme.LineHeight + 4)
		}
	}
	return actions
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "world":
		return "World"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}
