// Package window hosts the game in a raylib desktop window.
//
// Draws go into an off-screen render texture that acts as display memory, so
// cells drawn in earlier ticks stay visible. Every Delay presents that texture
// scaled up to the window and polls the keyboard while it waits.
package window

import (
	"context"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"

	"snake-console/config"
	"snake-console/game/queue"
	"snake-console/game/types"
)

const (
	title    = "Snake"
	fontSize = 10
)

var keyButtons = []struct {
	key    int32
	button types.Button
}{
	{rl.KeyUp, types.ButtonUp},
	{rl.KeyW, types.ButtonUp},
	{rl.KeyDown, types.ButtonDown},
	{rl.KeyS, types.ButtonDown},
	{rl.KeyLeft, types.ButtonLeft},
	{rl.KeyA, types.ButtonLeft},
	{rl.KeyRight, types.ButtonRight},
	{rl.KeyD, types.ButtonRight},
	{rl.KeyEnter, types.ButtonOther},
	{rl.KeySpace, types.ButtonOther},
}

// Renderer is a display.Sink and display.Clock. It must be used from the
// goroutine that opened the window.
type Renderer struct {
	target rl.RenderTexture2D
	scale  int32
	press  *queue.Producer[types.Event]
	cancel context.CancelFunc
	log    zerolog.Logger
}

// Open creates the window. Closing it, or pressing Escape, calls cancel.
func Open(cfg config.WindowConfig, press *queue.Producer[types.Event], cancel context.CancelFunc, log zerolog.Logger) *Renderer {
	scale := int32(cfg.Scale)
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(types.DisplayWidth*scale, types.DisplayHeight*scale, title)
	rl.SetTargetFPS(int32(cfg.FPS))

	r := &Renderer{
		target: rl.LoadRenderTexture(types.DisplayWidth, types.DisplayHeight),
		scale:  scale,
		press:  press,
		cancel: cancel,
		log:    log,
	}
	rl.BeginTextureMode(r.target)
	rl.ClearBackground(rl.Black)
	rl.EndTextureMode()

	log.Info().Int32("scale", scale).Int("fps", cfg.FPS).Msg("window opened")
	return r
}

func rlColor(c types.Color) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: 255}
}

func (r *Renderer) FillRect(rect types.Rect, c types.Color) error {
	rl.BeginTextureMode(r.target)
	rl.DrawRectangle(int32(rect.X), int32(rect.Y), int32(rect.W), int32(rect.H), rlColor(c))
	rl.EndTextureMode()
	return nil
}

func (r *Renderer) DrawText(text string, x, y int, c types.Color) error {
	rl.BeginTextureMode(r.target)
	rl.DrawText(text, int32(x), int32(y), fontSize, rlColor(c))
	rl.EndTextureMode()
	return nil
}

// Delay keeps presenting frames until d has passed. At least one frame is
// shown even when d is zero.
func (r *Renderer) Delay(d time.Duration) {
	deadline := time.Now().Add(d)
	for {
		r.present()
		r.pollInput()
		if !time.Now().Before(deadline) {
			return
		}
	}
}

func (r *Renderer) present() {
	w, h := float32(types.DisplayWidth), float32(types.DisplayHeight)
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	// Render textures are stored upside down
	rl.DrawTexturePro(
		r.target.Texture,
		rl.Rectangle{X: 0, Y: 0, Width: w, Height: -h},
		rl.Rectangle{X: 0, Y: 0, Width: w * float32(r.scale), Height: h * float32(r.scale)},
		rl.Vector2{},
		0,
		rl.White)
	rl.EndDrawing()
}

func (r *Renderer) pollInput() {
	if rl.WindowShouldClose() {
		r.cancel()
		return
	}
	for _, kb := range keyButtons {
		if !rl.IsKeyPressed(kb.key) {
			continue
		}
		if !r.press.Enqueue(types.Event{Button: kb.button}) {
			r.log.Debug().Str("button", kb.button.String()).Msg("input queue full, press dropped")
		}
	}
}

func (r *Renderer) Close() {
	rl.UnloadRenderTexture(r.target)
	rl.CloseWindow()
}
