// zonevis - portal and zone visibility explorer
// Builds, imports and inspects BSP levels and shows what the visibility pass
// sees from a viewpoint, either as a table, a top-down map or live in the
// terminal.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "zonevis"
	app.Usage = "portal and zone visibility explorer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "demo",
			Usage: "write the built-in corridor level",
			Description: `
Build a straight corridor split into cells, with a start room and an end room
joined to it by portals, and write it as a level file.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "cells",
					Value: 8,
					Usage: "number of corridor cells",
				},
				cli.Float64Flag{
					Name:  "cell-length",
					Value: 4,
					Usage: "length of one cell",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "corridor.zlv",
					Usage: "level filename",
				},
			},
			Action: WriteDemo,
		},
		{
			Name:  "import",
			Usage: "add glTF meshes and occluders to a level",
			Description: `
Place every mesh of a glTF or GLB file into the level as a static entity.
Nodes whose name starts with "antiportal" become convex occluders of the zone
containing their center.`,
			ArgsUsage: "level_file model.glb",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "material",
					Value: 0,
					Usage: "material for meshes without one",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output level filename (default: overwrite the input)",
				},
			},
			Action: ImportModel,
		},
		{
			Name:      "render",
			Usage:     "render one frame and print per-pass statistics",
			ArgsUsage: "level_file",
			Flags:     viewFlags,
			Action:    RenderFrame,
		},
		{
			Name:      "map",
			Usage:     "render one frame and save a top-down map of what it saw",
			ArgsUsage: "level_file",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "image width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "image height",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "map.png",
					Usage: "image filename",
				},
			}, viewFlags...),
			Action: SaveMap,
		},
		{
			Name:      "view",
			Usage:     "walk through a level in the terminal",
			ArgsUsage: "level_file",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "fps",
					Value: 30,
					Usage: "target frames per second",
				},
			}, viewFlags...),
			Action: Interactive,
		},
	}
	return app
}
