// Command voronoidemo renders the jump flood Voronoi diagram of a few
// shapes and writes it as PNG.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/chewxy/math32"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/term"

	"github.com/gogpu/voronoi"
	_ "github.com/gogpu/voronoi/backend/wgpu"
	"github.com/gogpu/voronoi/render"
	"github.com/gogpu/voronoi/schedule"
)

const pipeName = "-"

// config holds the command line flags.
type config struct {
	width, height int
	output        string
	background    string
	mask          string
	mode          string
	scale         float64
	opacity       float64
	backend       string
	frames        int
	invalidation  string
	verbose       bool
}

func main() {
	var cfg config
	flag.IntVar(&cfg.width, "width", 800, "image width")
	flag.IntVar(&cfg.height, "height", 600, "image height")
	flag.StringVar(&cfg.output, "output", "voronoi.png", "output file, - for stdout")
	flag.StringVar(&cfg.background, "background", "", "optional background image")
	flag.StringVar(&cfg.mask, "mask", "", "optional alpha mask applied to every shape")
	flag.StringVar(&cfg.mode, "mode", "voronoi", "composite mode: distance, voronoi or outline")
	flag.Float64Var(&cfg.scale, "scale", 1, "flood resolution relative to the image, in (0,1]")
	flag.Float64Var(&cfg.opacity, "opacity", 0.85, "visualization opacity")
	flag.StringVar(&cfg.backend, "backend", "", "backend name (software, wgpu); empty picks the best")
	flag.IntVar(&cfg.frames, "frames", 1, "number of frames to render, shapes rotate between frames")
	flag.StringVar(&cfg.invalidation, "invalidation", "always", "invalidation mode: always or on-change")
	flag.BoolVar(&cfg.verbose, "v", false, "log diagnostics")
	flag.Parse()

	if cfg.verbose {
		voronoi.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if err := run(context.Background(), cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config) error {
	composite := voronoi.DefaultCompositeSettings()
	m, err := parseMode(cfg.mode)
	if err != nil {
		return err
	}
	composite.Mode = m
	composite.Opacity = float32(cfg.opacity)
	composite.OutlineWidth = 6
	composite.OutlineColor = color.NRGBA{R: 255, G: 220, B: 90, A: 255}
	composite.MaxDistance = float32(max(cfg.width, cfg.height)) / 4

	invalidation, err := schedule.ParseMode(cfg.invalidation)
	if err != nil {
		return err
	}

	opts := []voronoi.Option{
		voronoi.WithScale(float32(cfg.scale)),
		voronoi.WithComposite(composite),
		voronoi.WithInvalidationMode(invalidation),
	}
	if cfg.backend != "" {
		opts = append(opts, voronoi.WithBackendName(cfg.backend))
	}
	p, err := voronoi.New(opts...)
	if err != nil {
		return fmt.Errorf("create plugin: %w", err)
	}
	defer p.Close()

	b := p.Backend()
	target, err := render.NewViewTarget(b, cfg.width, cfg.height, false)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	defer target.Destroy(b)

	bg, err := loadBackground(cfg.background, cfg.width, cfg.height)
	if err != nil {
		return fmt.Errorf("load background: %w", err)
	}

	assets := voronoi.AssetMap{
		Meshes: map[voronoi.MeshID]*render.Mesh{},
		Images: map[voronoi.ImageID]image.Image{},
	}
	var material voronoi.Material
	if cfg.mask != "" {
		mask, err := imaging.Open(cfg.mask)
		if err != nil {
			return fmt.Errorf("load mask: %w", err)
		}
		assets.Images[1] = mask
		material = voronoi.Material{Mask: 1, Threshold: 0.5}
	}

	shapes := demoShapes(cfg.width, cfg.height)
	visible := make([]render.EntityID, len(shapes))
	for i, s := range shapes {
		assets.Meshes[voronoi.MeshID(i+1)] = s.mesh
		visible[i] = render.EntityID(i + 1)
	}

	progress := term.IsTerminal(int(os.Stderr.Fd()))
	for frame := 1; frame <= cfg.frames; frame++ {
		if err := b.WriteSurface(target.Main(), bg); err != nil {
			return fmt.Errorf("upload background: %w", err)
		}

		drawables := make([]voronoi.Drawable, len(shapes))
		for i, s := range shapes {
			angle := s.spin * float32(frame-1)
			drawables[i] = voronoi.Drawable{
				ID:        render.EntityID(i + 1),
				Mesh:      voronoi.MeshID(i + 1),
				Transform: render.Translate(s.x, s.y).Multiply(render.Rotate(angle)),
				Material:  &material,
				Depth:     float32(i),
				Changed:   voronoi.Tick(frame),
			}
		}
		stats, err := p.RenderFrame(ctx, voronoi.Frame{
			Tick:      voronoi.Tick(frame),
			Views:     []voronoi.View{{ID: 1, Target: target, Visible: visible}},
			Drawables: drawables,
			Assets:    assets,
		})
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if progress {
			fmt.Fprintf(os.Stderr, "\rframe %d/%d: %d passes, %d drawn, %d errors",
				frame, cfg.frames, stats.Passes, stats.ItemsDrawn, stats.Errors())
		}
	}
	if progress {
		fmt.Fprintln(os.Stderr)
	}

	pix, err := b.ReadSurface(target.Main())
	if err != nil {
		return fmt.Errorf("read target: %w", err)
	}
	img := render.ImageFromTexels(cfg.width, cfg.height, pix)
	if err := save(img, cfg.output); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if cfg.output != pipeName {
		log.Printf("Voronoi saved to %s (%dx%d, %s backend)\n", cfg.output, cfg.width, cfg.height, b.Name())
	}
	return nil
}

func parseMode(s string) (render.CompositeMode, error) {
	for _, m := range []render.CompositeMode{render.CompositeDistance, render.CompositeVoronoi, render.CompositeOutline} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown composite mode %q", s)
}

type shape struct {
	mesh *render.Mesh
	x, y float32
	// spin is the rotation per frame in radians.
	spin float32
}

// demoShapes spreads seven shapes across a w×h canvas.
func demoShapes(w, h int) []shape {
	fw, fh := float32(w), float32(h)
	unit := float32(min(w, h)) / 12
	shapes := []shape{
		{mesh: render.RegularPolygon(3, unit), x: 0.15, y: 0.2, spin: 0.05},
		{mesh: render.Rectangle(2*unit, unit), x: 0.5, y: 0.15, spin: -0.03},
		{mesh: render.RegularPolygon(5, unit), x: 0.85, y: 0.25, spin: 0.02},
		{mesh: render.RegularPolygon(32, unit), x: 0.3, y: 0.55, spin: 0},
		{mesh: render.RegularPolygon(6, 1.3*unit), x: 0.7, y: 0.6, spin: 0.04},
		{mesh: render.Rectangle(unit/2, 3*unit), x: 0.1, y: 0.85, spin: 0.06},
		{mesh: star(5, 1.4*unit, 0.6*unit), x: 0.55, y: 0.88, spin: -0.05},
	}
	for i := range shapes {
		shapes[i].x *= fw
		shapes[i].y *= fh
	}
	return shapes
}

// star returns a triangle list star with the given number of points.
func star(points int, outer, inner float32) *render.Mesh {
	m := &render.Mesh{Positions: []render.Vec2{{}}}
	n := points * 2
	for i := range n {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := float32(i)*math32.Pi/float32(points) - math32.Pi/2
		m.Positions = append(m.Positions, render.Vec2{
			X: r * math32.Cos(a),
			Y: r * math32.Sin(a),
		})
	}
	for i := range n {
		m.Indices = append(m.Indices, 0, uint32(i+1), uint32((i+1)%n+1))
	}
	return m
}

// loadBackground returns path fitted to w×h, or a vertical gradient.
func loadBackground(path string, w, h int) (image.Image, error) {
	if path != "" {
		img, err := imaging.Open(path)
		if err != nil {
			return nil, err
		}
		return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos), nil
	}

	// Render a small gradient and let the scaler smooth it out.
	const steps = 16
	small := image.NewNRGBA(image.Rect(0, 0, 1, steps))
	for i := range steps {
		t := float64(i) / steps
		small.SetNRGBA(0, i, color.NRGBA{
			R: uint8(255 * (0.1 + t*0.3)),
			G: uint8(255 * (0.15 + t*0.2)),
			B: uint8(255 * (0.3 + t*0.2)),
			A: 255,
		})
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), small, small.Bounds(), draw.Src, nil)
	return dst, nil
}

func save(img image.Image, out string) error {
	if out != pipeName {
		return imaging.Save(img, out)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("`-` should be used with a pipe for stdout")
	}
	return imaging.Encode(os.Stdout, img, imaging.PNG)
}
