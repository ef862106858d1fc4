package main

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/render"
	"github.com/taigrr/zonevis/pkg/world"
)

var viewFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "eye",
		Usage: "eye position as x,y,z (default: center of the first leaf)",
	},
	cli.Float64Flag{
		Name:  "yaw",
		Usage: "view yaw in degrees; 0 looks down -Z",
	},
	cli.Float64Flag{
		Name:  "pitch",
		Usage: "view pitch in degrees",
	},
	cli.Float64Flag{
		Name:  "fov",
		Value: 90,
		Usage: "vertical field of view in degrees",
	},
	cli.Float64Flag{
		Name:  "far",
		Value: 1000,
		Usage: "view distance",
	},
	cli.IntFlag{
		Name:  "nesting",
		Value: render.DefaultOptions().MaxNesting,
		Usage: "maximum depth of mirror, warp and sky passes",
	},
	cli.BoolFlag{
		Name:  "no-mirrors",
		Usage: "draw mirrors as plain surfaces",
	},
}

// scene is a level with a renderer and the view parsed from the command line.
type scene struct {
	level    *world.Level
	renderer *render.Renderer
	view     *render.View
}

func setupScene(ctx *cli.Context) (*scene, error) {
	l, err := loadLevel(ctx)
	if err != nil {
		return nil, err
	}

	cam := render.NewCamera()
	cam.SetFOV(ctx.Float64("fov") * math.Pi / 180)
	cam.SetClipPlanes(0.1, ctx.Float64("far"))
	cam.SetRotation(ctx.Float64("pitch")*math.Pi/180, ctx.Float64("yaw")*math.Pi/180)
	eye, err := parseEye(ctx.String("eye"), l)
	if err != nil {
		return nil, err
	}
	cam.SetPosition(eye)

	flags := render.DefaultShowFlags
	if ctx.Bool("no-mirrors") {
		flags &^= render.StencilMirrors
	}
	opts := render.DefaultOptions()
	opts.MaxNesting = ctx.Int("nesting")

	return &scene{
		level:    l,
		renderer: render.NewRenderer(l, opts),
		view:     &render.View{Camera: cam, Flags: flags},
	}, nil
}

func parseEye(s string, l *world.Level) (math3d.Vec3, error) {
	if s == "" {
		if l.NumLeaves() == 0 {
			return math3d.Vec3{}, nil
		}
		return l.Leaf(0).Bounds.Center(), nil
	}
	var x, y, z float64
	if _, err := fmt.Sscanf(s, "%g,%g,%g", &x, &y, &z); err != nil {
		return math3d.Vec3{}, fmt.Errorf("parse eye %q: %w", s, err)
	}
	return math3d.V3(x, y, z), nil
}

// RenderFrame renders one frame and prints its pass and batch statistics.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := setupScene(ctx)
	if err != nil {
		return err
	}
	var rec render.Recorder
	rep := sc.renderer.RenderView(sc.view, &rec)

	rep.Table(os.Stdout)
	displayBatchStats(rec.Batches())
	return nil
}

// SaveMap renders one frame and writes a top-down map of it as PNG.
func SaveMap(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := setupScene(ctx)
	if err != nil {
		return err
	}
	w, h := ctx.Int("width"), ctx.Int("height")
	if w < 3 || h < 3 {
		return fmt.Errorf("map size %dx%d too small", w, h)
	}
	var rec render.Recorder
	rep := sc.renderer.RenderView(sc.view, &rec)

	fb := render.NewFramebuffer(w, h)
	render.DrawMap(fb, sc.level, rep, sc.view.Camera.Position)

	out := ctx.String("out")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create map file: %w", err)
	}
	if err := fb.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Noticef("wrote %s: %d passes, %d leaves", out, len(rep.Passes), rep.Total.Leaves)
	return nil
}

func displayBatchStats(batches []render.Batch) {
	type row struct{ batches, surfaces, entities, lights int }
	var rows [render.BatchSelection + 1]row
	for i := range batches {
		b := &batches[i]
		if int(b.Kind) >= len(rows) {
			continue
		}
		r := &rows[b.Kind]
		r.batches++
		r.surfaces += len(b.Surfaces)
		r.entities += len(b.Entities)
		r.lights += len(b.Lights)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Batch", "Count", "Surfaces", "Entities", "Lights"})
	for k, r := range rows {
		if r.batches == 0 {
			continue
		}
		table.Append([]string{
			render.BatchKind(k).String(),
			strconv.Itoa(r.batches),
			strconv.Itoa(r.surfaces),
			strconv.Itoa(r.entities),
			strconv.Itoa(r.lights),
		})
	}
	table.SetFooter([]string{"", strconv.Itoa(len(batches)), "", "", ""})
	table.Render()
}
