// Command gscene compiles scene descriptions into kernel stage programs.
package main

import (
	"os"

	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	sceneFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "target, t",
			Value: "generic",
			Usage: "device target: generic, sse42, avx, avx2, avx512, asimd, nvvm or amdgpu",
		},
		cli.IntFlag{
			Name:  "spi",
			Value: 4,
			Usage: "samples per iteration",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "number of programs generated concurrently, 0 uses all cpus",
		},
	}

	app := cli.NewApp()
	app.Name = "gscene"
	app.Usage = "compile scenes into kernel stage programs"
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
			Name:  "compile",
			Usage: "generate the programs of every technique variant of a scene",
			Description: `
Decode a scene file, build its entity and material tables and generate the
miss, hit and advanced shadow programs of every variant of the scene technique.

Each program is written to its own file in the output directory, named after
its variant, stage and entity or material id.`,
			ArgsUsage: "scene.yaml",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "programs",
					Usage: "output directory",
				},
			}, sceneFlags...),
			Action: compileScene,
		},
		{
			Name:   "techniques",
			Usage:  "list available techniques and their variants",
			Action: listTechniques,
		},
		{
			Name:  "render",
			Usage: "step a scene on a dry run device",
			Description: `
Generate the programs of a scene and step them on a device that only records
the requested work. Useful to inspect the iteration layout of a scene.`,
			ArgsUsage: "scene.yaml",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "spp",
					Value: 16,
					Usage: "samples per pixel",
				},
			}, sceneFlags...),
			Action: renderScene,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
