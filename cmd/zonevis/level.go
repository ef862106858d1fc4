package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/taigrr/zonevis/pkg/models"
	"github.com/taigrr/zonevis/pkg/world"
)

// WriteDemo writes the corridor level.
func WriteDemo(ctx *cli.Context) error {
	setupLogging(ctx)

	cells := ctx.Int("cells")
	if cells < 1 {
		return errors.New("need at least one cell")
	}
	length := ctx.Float64("cell-length")
	if length <= 0 {
		return errors.New("cell length must be positive")
	}

	l := world.Corridor(cells, length)
	out := ctx.String("out")
	if err := l.SaveFile(out); err != nil {
		return err
	}
	logger.Noticef("wrote %s: %d zones, %d leaves, %d entities", out, l.NumZones(), l.NumLeaves(), l.NumEntities())
	return nil
}

// ImportModel adds the meshes of a glTF file to a level.
func ImportModel(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 2 {
		return errors.New("expected a level file and a model file")
	}
	levelPath, modelPath := ctx.Args().Get(0), ctx.Args().Get(1)

	l, err := world.LoadFile(levelPath)
	if err != nil {
		return err
	}
	sc, err := models.Load(modelPath)
	if err != nil {
		return err
	}
	st := sc.Apply(l, ctx.Int("material"))
	if err := l.Validate(); err != nil {
		return fmt.Errorf("imported level: %w", err)
	}

	out := ctx.String("out")
	if out == "" {
		out = levelPath
	}
	if err := l.SaveFile(out); err != nil {
		return err
	}
	logger.Noticef("wrote %s: +%d entities, +%d occluders, %d skipped", out, st.Entities, st.Occluders, st.Skipped)
	return nil
}

func loadLevel(ctx *cli.Context) (*world.Level, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("missing level file argument")
	}
	return world.LoadFile(ctx.Args().First())
}
