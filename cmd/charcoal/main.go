// charcoal - software triangle rasterizer for the terminal.
//
// Renders demo scenes (or a model file) as depth-tested ASCII shading
// with truecolor.
//
// Controls:
//
//	Space       - Apply random spin impulse
//	X           - Toggle wireframe mode
//	C           - Toggle clip-edge overlay
//	+/-         - Zoom in/out
//	R           - Reset rotation
//	Esc / Q     - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/termforge/charcoal/pkg/math3d"
	"github.com/termforge/charcoal/pkg/models"
	"github.com/termforge/charcoal/pkg/render"
)

var (
	sceneName = flag.String("scene", "cube", "Scene: cube, spiral, star, model")
	modelPath = flag.String("model", "", "Model file for -scene model (.obj or .glb)")
	targetFPS = flag.Int("fps", 30, "Target FPS")
	ramp      = flag.String("ramp", render.DefaultRamp, "Shading ramp, darkest to brightest")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "charcoal - terminal software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: charcoal [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Space  - Random spin impulse\n")
		fmt.Fprintf(os.Stderr, "  X      - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  C      - Toggle clip-edge overlay\n")
		fmt.Fprintf(os.Stderr, "  +/-    - Zoom\n")
		fmt.Fprintf(os.Stderr, "  R      - Reset rotation\n")
		fmt.Fprintf(os.Stderr, "  Esc/Q  - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rotationAxis tracks position and velocity for one rotation axis,
// with a critically damped spring easing the velocity back to a rest
// rate so impulses decay smoothly.
type rotationAxis struct {
	Position float64
	Velocity float64
	Rest     float64

	spring   harmonica.Spring
	velAccel float64
}

func newRotationAxis(fps int, rest float64) rotationAxis {
	return rotationAxis{
		Rest:   rest,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

func (a *rotationAxis) update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.spring.Update(a.Velocity, a.velAccel, a.Rest)
}

type rotationState struct {
	Pitch, Yaw, Roll rotationAxis
}

func newRotationState(fps int) *rotationState {
	return &rotationState{
		Pitch: newRotationAxis(fps, 0.006),
		Yaw:   newRotationAxis(fps, 0.012),
		Roll:  newRotationAxis(fps, 0),
	}
}

func (s *rotationState) update() {
	s.Pitch.update()
	s.Yaw.update()
	s.Roll.update()
}

func (s *rotationState) impulse(pitch, yaw, roll float64) {
	s.Pitch.Velocity += pitch
	s.Yaw.Velocity += yaw
	s.Roll.Velocity += roll
}

func (s *rotationState) reset() {
	s.Pitch.Position, s.Pitch.Velocity = 0, 0
	s.Yaw.Position, s.Yaw.Velocity = 0, 0
	s.Roll.Position, s.Roll.Velocity = 0, 0
}

func (s *rotationState) transform() math3d.Mat4 {
	return math3d.RotateX(s.Pitch.Position).
		Mul(math3d.RotateY(s.Yaw.Position)).
		Mul(math3d.RotateZ(s.Roll.Position))
}

// scene renders one frame; model carries the spring rotation, t is the
// elapsed time in seconds.
type scene interface {
	render(r *render.Renderer, model math3d.Mat4, t float64, wireframe bool)
}

type meshScene struct {
	mesh *models.Mesh
}

func (s meshScene) render(r *render.Renderer, model math3d.Mat4, _ float64, wireframe bool) {
	if wireframe {
		r.DrawMeshWireframe(s.mesh, model, render.RGB(0, 1, 0.5))
		return
	}
	r.DrawMesh(s.mesh, model, render.RGB(0.85, 0.7, 0.4))
}

// spiralScene draws an animated 2D spiral as clipped line segments
// fading from dark to bright ramp glyphs toward the outside.
type spiralScene struct{}

func (spiralScene) render(r *render.Renderer, _ math3d.Mat4, t float64, _ bool) {
	p := r.Palette()
	const segments = 160
	prev := math3d.V2(0, 0)
	for i := 1; i <= segments; i++ {
		f := float64(i) / segments
		angle := 6*math.Pi*f + t
		radius := 1.3 * f
		cur := math3d.V2(radius*math.Cos(angle), radius*math.Sin(angle))
		glyph := p.Glyph(int(f * float64(p.Size()-1)))
		r.DrawLine2(
			render.Vertex2{Pos: prev, Glyph: glyph, Color: render.RGB(f, 0.4, 1-f)},
			render.Vertex2{Pos: cur, Glyph: glyph, Color: render.RGB(f, 0.4, 1-f)},
			uint8(128-f*128),
		)
		prev = cur
	}
}

// starScene fills a pulsing five-pointed star from 2D triangles, one
// per point plus a center fan, layered over a backdrop triangle.
type starScene struct{}

func (starScene) render(r *render.Renderer, _ math3d.Mat4, t float64, _ bool) {
	p := r.Palette()
	bright := p.Glyph(p.Size() - 1)
	mid := p.Glyph(p.Size() / 2)

	// Backdrop drawn behind the star via a deeper layer.
	r.DrawTriangle2(
		render.Vertex2{Pos: math3d.V2(-1.5, -1.5), Glyph: mid, Color: render.RGB(0.1, 0.1, 0.3)},
		render.Vertex2{Pos: math3d.V2(1.5, -1.5), Glyph: mid, Color: render.RGB(0.1, 0.1, 0.3)},
		render.Vertex2{Pos: math3d.V2(0, 1.5), Glyph: mid, Color: render.RGB(0.3, 0.1, 0.3)},
		200,
	)

	outer := 0.8 + 0.1*math.Sin(2*t)
	inner := outer * 0.4
	center := render.Vertex2{Pos: math3d.V2(0, 0), Glyph: bright, Color: render.RGB(1, 1, 0.6)}
	for i := 0; i < 5; i++ {
		a0 := t/3 + float64(i)*2*math.Pi/5
		a1 := a0 + math.Pi/5
		a2 := a0 + 2*math.Pi/5
		tip := render.Vertex2{
			Pos:   math3d.V2(outer*math.Sin(a1), outer*math.Cos(a1)),
			Glyph: bright,
			Color: render.RGB(1, 0.8, 0.2),
		}
		base0 := render.Vertex2{
			Pos:   math3d.V2(inner*math.Sin(a0), inner*math.Cos(a0)),
			Glyph: mid,
			Color: render.RGB(0.9, 0.5, 0.1),
		}
		base1 := render.Vertex2{
			Pos:   math3d.V2(inner*math.Sin(a2), inner*math.Cos(a2)),
			Glyph: mid,
			Color: render.RGB(0.9, 0.5, 0.1),
		}
		r.DrawTriangle2(base0, tip, base1, 100)
		r.DrawTriangle2(center, base0, base1, 100)
	}
}

func loadScene() (scene, error) {
	switch *sceneName {
	case "cube":
		return meshScene{mesh: models.Cube(2)}, nil
	case "spiral":
		return spiralScene{}, nil
	case "star":
		return starScene{}, nil
	case "model":
		if *modelPath == "" {
			return nil, fmt.Errorf("-scene model requires -model")
		}
		var (
			mesh *models.Mesh
			err  error
		)
		switch ext := strings.ToLower(filepath.Ext(*modelPath)); ext {
		case ".glb", ".gltf":
			mesh, err = models.LoadGLB(*modelPath)
		case ".obj":
			mesh, err = models.LoadOBJ(*modelPath)
		default:
			return nil, fmt.Errorf("unsupported format %s (use .obj or .glb)", ext)
		}
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		normalizeMesh(mesh)
		return meshScene{mesh: mesh}, nil
	}
	return nil, fmt.Errorf("unknown scene %q", *sceneName)
}

// normalizeMesh centers the mesh on the origin and scales its largest
// dimension to 2 so every model fills the view the same way.
func normalizeMesh(mesh *models.Mesh) {
	center := mesh.Center()
	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim <= 0 {
		return
	}
	scale := 2.0 / maxDim
	mesh.Transform(math3d.ScaleUniform(scale).Mul(math3d.Translate(center.Negate())))
}

func run() error {
	sc, err := loadScene()
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	screen, err := render.NewScreen(width, height)
	if err != nil {
		return err
	}
	renderer, err := render.NewRenderer(screen, *ramp)
	if err != nil {
		return err
	}

	cameraZ := 5.0
	renderer.Camera().SetView(math3d.V3(0, 0, cameraZ), math3d.Zero3(), math3d.Up())

	rotation := newRotationState(*targetFPS)
	wireframe := false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				s, err := render.NewScreen(width, height)
				if err != nil {
					continue
				}
				r, err := render.NewRenderer(s, *ramp)
				if err != nil {
					continue
				}
				r.Camera().SetView(math3d.V3(0, 0, cameraZ), math3d.Zero3(), math3d.Up())
				r.DebugClipEdges = renderer.DebugClipEdges
				screen, renderer = s, r

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("q"), ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("space"):
					rotation.impulse(
						(rand.Float64()-0.5)*0.3,
						(rand.Float64()-0.5)*0.3,
						(rand.Float64()-0.5)*0.2,
					)
				case ev.MatchString("x"):
					wireframe = !wireframe
				case ev.MatchString("c"):
					renderer.DebugClipEdges = !renderer.DebugClipEdges
				case ev.MatchString("r"):
					rotation.reset()
				case ev.MatchString("+"), ev.MatchString("="):
					cameraZ = math.Max(1.5, cameraZ-0.5)
					renderer.Camera().SetEye(math3d.V3(0, 0, cameraZ))
				case ev.MatchString("-"):
					cameraZ = math.Min(20, cameraZ+0.5)
					renderer.Camera().SetEye(math3d.V3(0, 0, cameraZ))
				}
			}
		}
	}()

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	targetDuration := time.Second / time.Duration(*targetFPS)
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		frameStart := time.Now()
		rotation.update()

		renderer.Clear()
		sc.render(renderer, rotation.transform(), time.Since(start).Seconds(), wireframe)

		screen.Draw(term, term.Bounds())
		if err := term.Display(); err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}

		elapsed := time.Since(frameStart)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
