// Package ui draws the simulation with raylib and turns mouse and keyboard
// input into game commands.
package ui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/blobs/components"
)

// Theme holds UI styling constants.
type Theme struct {
	Background     rl.Color
	WorldBorder    rl.Color
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	Selection      rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		Background:     rl.Color{R: 14, G: 16, B: 20, A: 255},
		WorldBorder:    rl.Color{R: 70, G: 80, B: 90, A: 255},
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		Selection:      rl.Color{R: 255, G: 255, B: 255, A: 220},
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillLow:     rl.Color{R: 200, G: 100, B: 100, A: 255},
		BarFillMedium:  rl.Color{R: 200, G: 180, B: 100, A: 255},
		BarFillHigh:    rl.Color{R: 100, G: 200, B: 100, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     80,
		BarHeight:      10,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// modeColor is the ring drawn around a blob by motion state.
// The zero color means no ring.
func modeColor(m components.Mode) rl.Color {
	switch m {
	case components.ModeFleeing:
		return rl.Color{R: 120, G: 170, B: 255, A: 255}
	case components.ModePursuing:
		return rl.Color{R: 255, G: 110, B: 80, A: 255}
	case components.ModeHeld:
		return rl.Color{R: 255, G: 230, B: 120, A: 255}
	}
	return rl.Color{}
}

// toRL converts a frame color for raylib.
func toRL(c color.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
