package main

import (
	"errors"
	"os"

	"github.com/soypat/gscene"
	"github.com/soypat/gscene/scene"
	"github.com/urfave/cli"
)

// loadContext decodes the scene named by the first argument and prepares a
// compilation context from the command flags.
func loadContext(ctx *cli.Context) (*gscene.Context, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("missing scene file argument")
	}
	target, err := gscene.ParseTarget(ctx.String("target"))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(ctx.Args().First())
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc, err := scene.Decode(f)
	if err != nil {
		return nil, err
	}
	env, err := scene.NewEnvironment(sc)
	if err != nil {
		return nil, err
	}
	logger.Infof("scene %s: %d entities, %d materials, %d lights", ctx.Args().First(),
		len(env.Entities), len(env.Materials), sc.Lights.Len())
	return gscene.NewContext(sc, env, gscene.Options{
		Target:              target,
		SamplesPerIteration: ctx.Int("spi"),
	})
}
