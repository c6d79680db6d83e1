package ui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/blobs/camera"
	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/game"
)

const controlsLegend = "Space pause | , . speed | LMB select/drag | RMB pan | wheel zoom | B/F spawn at cursor | Tab panel | Home reset | F11 fullscreen"

// Viewer owns the window-side state: camera, panels and the current selection.
type Viewer struct {
	game *game.Game

	camera    *camera.Camera
	overlays  *OverlayRegistry
	hud       *HUD
	perf      *PerfPanel
	inspector *Inspector
	controls  *ControlsPanel
	renderer  *Renderer
	effects   *Effects

	screenW, screenH int32

	selected uint64
	dragging uint64
	dragOffX float64
	dragOffY float64
}

// NewViewer creates a viewer for g sized to the current window.
func NewViewer(g *game.Game) *Viewer {
	cfg := g.Config()
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	return &Viewer{
		game:      g,
		camera:    camera.New(float64(w), float64(h), cfg.Derived.WorldW, cfg.Derived.WorldH),
		overlays:  NewOverlayRegistry(),
		hud:       NewHUD(),
		perf:      NewPerfPanel(10, h-230),
		inspector: NewInspector(260),
		controls:  NewControlsPanel(10, 120, 240),
		renderer:  NewRenderer(),
		effects:   NewEffects(600, 1),
		screenW:   w,
		screenH:   h,
	}
}

// Update handles input and advances the game by one frame.
func (v *Viewer) Update() {
	v.handleResize()
	v.handleKeys()
	v.handleCamera()
	v.handleMouse()
	v.game.Update()
	v.effects.Consume(v.game.Frame())
	v.effects.Update()
}

func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	v.screenW, v.screenH = int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	v.camera.Resize(float64(v.screenW), float64(v.screenH))
	v.perf.SetPosition(10, v.screenH-230)
}

func (v *Viewer) handleKeys() {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.game.SetPaused(!v.game.Paused())
	}
	steps := v.game.StepsPerUpdate()
	if rl.IsKeyPressed(rl.KeyComma) && steps > 1 {
		v.game.SetStepsPerUpdate(steps - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && steps < 20 {
		v.game.SetStepsPerUpdate(steps + 1)
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyB) || rl.IsKeyPressed(rl.KeyF) {
		kind := components.KindBlob
		if rl.IsKeyPressed(rl.KeyF) {
			kind = components.KindFood
		}
		wx, wy := v.mouseWorld()
		v.game.RequestSpawn(kind, &components.Position{X: wx, Y: wy})
	}
	v.overlays.HandleKeys()
}

func (v *Viewer) handleCamera() {
	panSpeed := 8.0
	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		v.camera.ZoomAt(1+float64(wheel)*0.1, float64(m.X), float64(m.Y))
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.camera.Pan(-float64(d.X), -float64(d.Y))
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}

// handleMouse selects on press, holds the selected entity under the cursor
// while dragging and releases it on button up.
func (v *Viewer) handleMouse() {
	wx, wy := v.mouseWorld()

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !v.overPanel() {
		v.selected, v.dragging = 0, 0
		if id, ok := v.game.SelectEntityAt(wx, wy); ok {
			v.selected, v.dragging = id, id
			if e, ok := v.game.Frame().Find(id); ok {
				v.dragOffX, v.dragOffY = e.X-wx, e.Y-wy
			}
		}
		return
	}

	if v.dragging == 0 {
		return
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		v.game.ReleaseMove(v.dragging)
		v.dragging = 0
		return
	}
	if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
		v.game.RequestMove(v.dragging, wx+v.dragOffX, wy+v.dragOffY)
	}
}

func (v *Viewer) mouseWorld() (float64, float64) {
	m := rl.GetMousePosition()
	return v.camera.ScreenToWorld(float64(m.X), float64(m.Y))
}

func (v *Viewer) overPanel() bool {
	m := rl.GetMousePosition()
	if rl.CheckCollisionPointRec(m, v.controls.Bounds(v.overlays)) {
		return true
	}
	if v.selected != 0 && v.overlays.IsEnabled(OverlayInspector) {
		if in, ok := v.game.Inspect(v.selected); ok {
			return rl.CheckCollisionPointRec(m, v.inspector.Bounds(v.screenW, in))
		}
	}
	return false
}

// Draw renders the latest frame and the UI.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(v.renderer.Theme.Background)

	frame := v.game.Frame()
	v.drawWorld(frame)
	if v.overlays.IsEnabled(OverlayEffects) {
		v.effects.Draw(v.camera)
	}

	inspection, inspecting := v.game.Inspect(v.selected)
	if v.selected != 0 && !inspecting {
		// Eaten, killed or removed since it was picked.
		v.selected = 0
	}
	if inspecting {
		v.drawSelection(inspection)
	}

	window, hasWindow := v.game.LastStats()
	v.hud.Draw(HUDData{
		Title:          "Blobs",
		Blobs:          frame.Blobs,
		Food:           frame.Food,
		Tick:           frame.Tick,
		StepsPerUpdate: v.game.StepsPerUpdate(),
		FPS:            rl.GetFPS(),
		Paused:         v.game.Paused(),
		Selected:       v.selected,
		Window:         window,
		HasWindow:      hasWindow,
	})

	actions := v.controls.Draw(v.overlays, v.game.Paused(), v.game.StepsPerUpdate())
	v.apply(actions)

	if v.overlays.IsEnabled(OverlayPerf) {
		v.perf.Draw(v.game.PerfStats())
	}
	if inspecting && v.overlays.IsEnabled(OverlayInspector) {
		v.inspector.Draw(v.screenW, inspection)
	}
	v.hud.DrawControls(v.screenH, controlsLegend)

	rl.EndDrawing()
}

func (v *Viewer) apply(a ControlActions) {
	if a.TogglePause {
		v.game.SetPaused(!v.game.Paused())
	}
	if a.SpawnBlob {
		v.game.RequestSpawn(components.KindBlob, nil)
	}
	if a.SpawnFood {
		v.game.RequestSpawn(components.KindFood, nil)
	}
	if a.ResetView {
		v.camera.Reset()
	}
	if a.StepsPerUpdate != v.game.StepsPerUpdate() {
		v.game.SetStepsPerUpdate(a.StepsPerUpdate)
	}
}

func (v *Viewer) drawWorld(frame *game.Frame) {
	x0, y0 := v.camera.WorldToScreen(0, 0)
	x1, y1 := v.camera.WorldToScreen(v.camera.WorldW, v.camera.WorldH)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(x0), Y: float32(y0), Width: float32(x1 - x0), Height: float32(y1 - y0)},
		2, v.renderer.Theme.WorldBorder,
	)

	showModes := v.overlays.IsEnabled(OverlayModes)
	showHealth := v.overlays.IsEnabled(OverlayHealth)
	zoom := v.camera.Zoom

	for i := range frame.Entities {
		e := &frame.Entities[i]
		if !v.camera.IsVisible(e.X, e.Y, e.Radius) {
			continue
		}
		sx, sy := v.camera.WorldToScreen(e.X, e.Y)
		center := rl.Vector2{X: float32(sx), Y: float32(sy)}
		r := float32(max(e.Radius*zoom, 1))

		rl.DrawCircleV(center, r, toRL(e.Color))
		if e.Kind != components.KindBlob {
			continue
		}
		if showModes {
			if c := modeColor(e.Mode); c.A > 0 {
				rl.DrawCircleLinesV(center, r+2, c)
			}
		}
		if showHealth {
			v.drawHealthBar(center, r, e.HealthFraction)
		}
	}
}

func (v *Viewer) drawHealthBar(center rl.Vector2, r float32, frac float64) {
	w := max(2*r, 12)
	x := int32(center.X - w/2)
	y := int32(center.Y - r - 6)
	t := v.renderer.Theme
	rl.DrawRectangle(x, y, int32(w), 3, t.BarBg)
	c := t.BarFillHigh
	if frac < 0.3 {
		c = t.BarFillLow
	} else if frac < 0.6 {
		c = t.BarFillMedium
	}
	rl.DrawRectangle(x, y, int32(float64(w)*frac), 3, c)
}

func (v *Viewer) drawSelection(in game.Inspection) {
	e := in.View
	sx, sy := v.camera.WorldToScreen(e.X, e.Y)
	center := rl.Vector2{X: float32(sx), Y: float32(sy)}
	r := float32(e.Radius * v.camera.Zoom)
	rl.DrawCircleLinesV(center, r+4, v.renderer.Theme.Selection)

	if e.Kind != components.KindBlob || !v.overlays.IsEnabled(OverlayVision) {
		return
	}
	sight := float32(in.Genome.Sight * v.camera.Zoom)
	vision := rl.Color{R: 255, G: 255, B: 255, A: 60}
	if in.Genome.FOV >= 2*math.Pi {
		rl.DrawCircleLinesV(center, sight, vision)
		return
	}
	heading := in.Behavior.Heading * 180 / math.Pi
	half := in.Genome.FOV * 90 / math.Pi
	rl.DrawCircleSectorLines(center, sight, float32(heading-half), float32(heading+half), 24, vision)
}
