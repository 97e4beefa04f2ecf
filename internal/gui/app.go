package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/physlab/internal/audio"
	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/labs"
)

// Theme colors
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColError   = rl.NewColor(220, 90, 90, 255)
)

const (
	screenWidth  = 1280
	screenHeight = 720
	maxTelemetry = 400
	fontPath     = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

var tones = map[labs.Event]audio.Tone{
	labs.EventPeriod: audio.ToneTick,
	labs.EventBounce: audio.ToneBounce,
	labs.EventPhase:  audio.TonePhase,
	labs.EventDone:   audio.ToneDone,
}

type App struct {
	cfg    *config.Config
	Labs   []string
	InMenu bool

	Selected int
	Lab      labs.Lab
	Driver   *dynamo.Driver
	ParamSel int

	Telemetry []float64
	Flash     string
	flashAge  float64
	Err       error

	Font  rl.Font
	Audio *audio.Processor
}

// NewApp builds an App without touching the window. An empty startLab opens
// the lab menu.
func NewApp(startLab string, cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	app := &App{
		cfg:       cfg,
		Labs:      config.Labs(),
		InMenu:    startLab == "",
		Telemetry: make([]float64, 0, maxTelemetry),
		Audio:     audio.NewProcessor(),
	}
	if startLab != "" {
		if err := app.loadLab(startLab); err != nil {
			return nil, err
		}
	}
	return app, nil
}

func initWindow() {
	rl.InitWindow(screenWidth, screenHeight, "physlab")
	rl.SetTargetFPS(int32(config.DefaultFPS))
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	if !rl.FileExists(fontPath) {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// Run opens the window and blocks until it is closed. Sound is optional;
// a missing output device only disables it.
func Run(startLab string, cfg *config.Config, sound bool) error {
	app, err := NewApp(startLab, cfg)
	if err != nil {
		return err
	}
	if sound {
		if err := app.Audio.Start(); err != nil {
			app.Err = err
		}
		defer app.Audio.Stop()
	}

	initWindow()
	defer rl.CloseWindow()
	app.Font = loadFont()

	for !rl.WindowShouldClose() {
		if quit := app.Update(); quit {
			break
		}
		app.Draw()
	}
	return nil
}

func (a *App) loadLab(name string) error {
	l, err := labs.New(name, a.cfg)
	if err != nil {
		return err
	}
	d := a.cfg.Driver.NewDriver()
	if err := d.Validate(); err != nil {
		return err
	}
	a.Lab, a.Driver = l, d
	a.ParamSel = 0
	a.Telemetry = a.Telemetry[:0]
	a.Flash, a.Err = "", nil
	a.InMenu = false
	return nil
}

func (a *App) reset() {
	a.Lab.Reset()
	a.Driver.Reset()
	a.Telemetry = a.Telemetry[:0]
	a.Flash, a.Err = "", nil
}

// Advance feeds elapsed wall time to the running lab, records telemetry and
// sounds the lab's events.
func (a *App) Advance(elapsed float64) {
	if a.Lab == nil {
		return
	}
	if a.Lab.Running() {
		if _, err := a.Driver.Frame(a.Lab.Model(), elapsed); err != nil {
			a.Err = err
		}
		v, _ := a.Lab.Sample()
		a.Telemetry = append(a.Telemetry, v)
		if len(a.Telemetry) > maxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	}
	for _, e := range a.Lab.Poll() {
		a.Flash, a.flashAge = e.String(), 0
		a.Audio.Trigger(tones[e])
	}
	a.flashAge += elapsed
}

func (a *App) adjust(dir float64) {
	params := a.Lab.Params()
	if len(params) == 0 {
		return
	}
	p := params[a.ParamSel]
	step := p.Step
	if rl.IsKeyDown(rl.KeyLeftShift) {
		step *= 10
	}
	a.Err = a.Lab.SetParam(p.Name, a.Lab.Param(p.Name)+dir*step)
}

// Update handles input for one frame and reports whether to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return true
	}

	if a.InMenu {
		if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
			a.Selected = (a.Selected + 1) % len(a.Labs)
		}
		if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
			a.Selected = (a.Selected + len(a.Labs) - 1) % len(a.Labs)
		}
		if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
			a.Err = a.loadLab(a.Labs[a.Selected])
		}
		return false
	}

	switch {
	case rl.IsKeyPressed(rl.KeyEscape):
		a.InMenu = true
		return false
	case rl.IsKeyPressed(rl.KeySpace):
		a.Err = a.Lab.Action()
	case rl.IsKeyPressed(rl.KeyR):
		a.reset()
	case rl.IsKeyPressed(rl.KeyTab):
		if n := len(a.Lab.Params()); n > 0 {
			a.ParamSel = (a.ParamSel + 1) % n
		}
	case rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyRight):
		a.adjust(1)
	case rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyLeft):
		a.adjust(-1)
	case rl.IsKeyPressed(rl.KeyM) && a.Audio.Active:
		a.Audio.SetVolume(0)
	}

	a.Advance(float64(rl.GetFrameTime()))
	return false
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.InMenu {
		a.drawMenu()
	} else {
		a.Lab.Draw(newSurface(rl.NewRectangle(30, 80, 820, 560)))
		a.drawHUD()
		a.drawTelemetry()
	}

	rl.EndDrawing()
}

func (a *App) drawHUD() {
	a.drawText("physlab", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Lab.Name()), 150, 34, 16, ColText)

	status, col := "READY  [SPACE] "+a.Lab.ActionHint(), ColTextDim
	switch {
	case a.Lab.Running():
		status, col = "RUNNING", ColSelect
	case a.Lab.Model().Done():
		status, col = "DONE", ColAccent
	}
	a.drawText(status, 880, 30, 16, col)

	y := 80
	for _, st := range a.Lab.Stats() {
		a.drawText(fmt.Sprintf("%-14s %s", st.Label, st.Value), 880, y, 16, ColText)
		y += 22
	}
	if d := a.Driver.Dropped(); d > 0 {
		a.drawText(fmt.Sprintf("%-14s %.3fs", "Dropped", d), 880, y, 16, ColTextDim)
		y += 22
	}

	y += 20
	a.drawText("PARAMETERS", 880, y, 14, ColTextDim)
	y += 24
	for i, p := range a.Lab.Params() {
		line := fmt.Sprintf("%-16s %9.3f", p.Name, a.Lab.Param(p.Name))
		if i == a.ParamSel {
			a.drawText("> "+line, 880, y, 16, ColSelect)
		} else {
			a.drawText("  "+line, 880, y, 16, ColText)
		}
		y += 22
	}

	if a.Flash != "" && a.flashAge < 1 {
		a.drawText(a.Flash, 880, 600, 20, ColSelect)
	}
	if a.Err != nil {
		a.drawText(a.Err.Error(), 30, 650, 14, ColError)
	}

	a.drawText("[SPACE] ACTION  [R] RESET  [TAB] PARAM  [ARROWS] TUNE  [ESC] MENU  [Q] QUIT", 560, 690, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, 690, 14, ColTextDim)
}

func (a *App) drawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 880, 620
	width, height := 360, 50

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal, maxVal = min(minVal, v), max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	_, caption := a.Lab.Sample()
	a.drawText(caption, rectX, rectY-18, 12, ColTextDim)
}

func (a *App) drawMenu() {
	a.drawText("physlab", 50, 50, 40, ColSelect)
	a.drawText("Select Lab", 50, 100, 16, ColTextDim)

	y := 160
	for i, name := range a.Labs {
		if i == a.Selected {
			a.drawText(fmt.Sprintf("> %s", name), 50, y, 20, ColSelect)
		} else {
			a.drawText(fmt.Sprintf("  %s", name), 50, y, 20, ColText)
		}
		y += 28
	}
	if a.Err != nil {
		a.drawText(a.Err.Error(), 50, 600, 14, ColError)
	}

	a.drawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", 850, 680, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}
