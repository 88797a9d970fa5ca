package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gscene"
	"github.com/soypat/gscene/render"
	"github.com/soypat/gscene/shader"
	"github.com/urfave/cli"
)

// Step a scene on a dry run device.
func renderScene(ctx *cli.Context) error {
	setupLogging(ctx)

	gctx, err := loadContext(ctx)
	if err != nil {
		return err
	}
	c := &shader.Compiler{Workers: ctx.Int("workers")}
	defer c.Close()
	sets, err := c.CompileAll(gctx)
	if err != nil {
		return err
	}
	var dev render.DryRun
	rt, err := render.NewRuntime(&dev, sets, gctx.SamplesPerIteration)
	if err != nil {
		return err
	}
	defer rt.Close()

	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rt.Render(sigctx, ctx.Int("spp")); err != nil {
		return err
	}

	o := gscene.InitialOrientation(gctx)
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Variant", "Programs", "Shadows", "Lock framebuffer"})
	for _, ps := range sets {
		table.Append([]string{
			strconv.Itoa(ps.Variant),
			strconv.Itoa(ps.NumPrograms()),
			ps.Info.ShadowHandlingMode.String(),
			strconv.FormatBool(ps.Info.LockFramebuffer),
		})
	}
	table.SetFooter([]string{"ITERATIONS", strconv.Itoa(rt.IterationCount()), "SPP", strconv.Itoa(rt.SampleCount())})
	table.Render()
	logger.Noticef("camera eye %s dir %s up %s\n%s", fmtVec(o.Eye), fmtVec(o.Dir), fmtVec(o.Up), buf.String())
	return nil
}

func fmtVec(v ms3.Vec) string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}
