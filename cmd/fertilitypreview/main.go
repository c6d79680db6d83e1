// Fertility field preview tool - shows where food spawns for given settings.
//
// Usage: go run ./cmd/fertilitypreview [-config config.yaml]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	gridSize     = 128
)

// previewParams are the tunable fertility settings.
type previewParams struct {
	Scale    float32
	Floor    float32
	Attempts int
	Seed     int64
	Samples  int
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Fertility Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := previewParams{
		Scale:    float32(cfg.Food.FertilityScale),
		Floor:    float32(cfg.Food.FertilityFloor),
		Attempts: cfg.Food.SpawnAttempts,
		Seed:     1,
		Samples:  cfg.Population.InitialFood,
	}
	worldW, worldH := cfg.Derived.WorldW, cfg.Derived.WorldH

	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var samples [][2]float64
	var meanFertility float64
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			field := systems.NewFertilityField(params.Seed, float64(params.Scale), float64(params.Floor), params.Attempts, worldW, worldH)
			meanFertility = updateTexture(texture, field, worldW, worldH)
			samples = sample(field, params)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Field and sampled food, with the world scaled into the preview square
		scale := float32(previewSize) / float32(max(worldW, worldH))
		previewW := float32(worldW) * scale
		previewH := float32(worldH) * scale
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		for _, s := range samples {
			rl.DrawCircleV(rl.Vector2{X: 10 + float32(s[0])*scale, Y: 10 + float32(s[1])*scale}, 1.5, rl.Color{R: 255, G: 240, B: 120, A: 255})
		}
		rl.DrawRectangleLines(10, 10, int32(previewW), int32(previewH), rl.DarkGray)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Mean acceptance: %.3f  Samples: %d", meanFertility, len(samples)), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("World: %.0f x %.0f", worldW, worldH), 15, statsY+20, 16, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Fertility Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Scale (noise frequency per world unit)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newScale := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.001", "0.03",
			params.Scale, 0.001, 0.03,
		)
		rl.DrawText(fmt.Sprintf("%.4f", params.Scale), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newScale != params.Scale {
			params.Scale = newScale
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Floor (acceptance on barren ground)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newFloor := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "1",
			params.Floor, 0, 1,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Floor), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newFloor != params.Floor {
			params.Floor = newFloor
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Spawn attempts (rejection tries)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newAttempts := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "32",
			float32(params.Attempts), 1, 32,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Attempts), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newAttempts) != params.Attempts {
			params.Attempts = int(newAttempts)
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Samples", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSamples := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"50", "2000",
			float32(params.Samples), 50, 2000,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Samples), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newSamples) != params.Samples {
			params.Samples = int(newSamples)
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = rand.Int63()
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset") {
			params.Scale = float32(cfg.Food.FertilityScale)
			params.Floor = float32(cfg.Food.FertilityFloor)
			params.Attempts = cfg.Food.SpawnAttempts
			params.Seed = 1
			needsRegen = true
		}
		panelY += 45

		snippet := foodYAML(params)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 22
		rl.DrawText(snippet, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(snippet)
		}

		rl.EndDrawing()
	}
}

// sample draws food positions the way the spawner does.
func sample(field *systems.FertilityField, params previewParams) [][2]float64 {
	rng := rand.New(rand.NewSource(params.Seed))
	out := make([][2]float64, params.Samples)
	for i := range out {
		x, y := field.Sample(rng)
		out[i] = [2]float64{x, y}
	}
	return out
}

// foodYAML renders the fertility keys of the food section.
func foodYAML(params previewParams) string {
	section := struct {
		Food struct {
			FertilityScale float64 `yaml:"fertility_scale"`
			FertilityFloor float64 `yaml:"fertility_floor"`
			SpawnAttempts  int     `yaml:"spawn_attempts"`
		} `yaml:"food"`
	}{}
	section.Food.FertilityScale = float64(params.Scale)
	section.Food.FertilityFloor = float64(params.Floor)
	section.Food.SpawnAttempts = params.Attempts
	out, err := yaml.Marshal(section)
	if err != nil {
		return err.Error()
	}
	return string(out)
}

// updateTexture paints the acceptance probability and returns its mean.
func updateTexture(texture rl.Texture2D, field *systems.FertilityField, worldW, worldH float64) float64 {
	pixels := make([]color.RGBA, gridSize*gridSize)
	var sum float64
	for gy := 0; gy < gridSize; gy++ {
		wy := (float64(gy) + 0.5) / gridSize * worldH
		for gx := 0; gx < gridSize; gx++ {
			wx := (float64(gx) + 0.5) / gridSize * worldW
			v := field.At(wx, wy)
			sum += v
			// Dark soil to green
			pixels[gy*gridSize+gx] = color.RGBA{
				R: uint8(40 + v*30),
				G: uint8(30 + v*170),
				B: uint8(25 + v*40),
				A: 255,
			}
		}
	}
	rl.UpdateTexture(texture, pixels)
	return sum / float64(len(pixels))
}
