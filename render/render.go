// Package render drives an external device that compiles and runs the
// programs generated by package shader. The device is the execution backend;
// this package only handles program loading and iteration stepping.
package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/soypat/gscene/log"
	"github.com/soypat/gscene/shader"
)

var logger = log.New("render")

// Device compiles and runs kernel programs.
type Device interface {
	// Load compiles the programs of a technique variant.
	Load(variant int, set *shader.ProgramSet) error
	// Step runs every loaded variant once, adding samples per iteration
	// samples to each pixel.
	Step(ctx context.Context, iteration int) error
	Close() error
}

// Iterations returns the number of stepping calls needed to reach spp samples
// per pixel when each call adds spi samples.
func Iterations(spp, spi int) int {
	if spi <= 0 || spp <= 0 {
		return 0
	}
	return (spp + spi - 1) / spi
}

// Runtime steps a device loaded with the program sets of every technique variant.
type Runtime struct {
	dev       Device
	spi       int
	iteration int
}

// NewRuntime loads sets into dev. spi must match the samples per iteration
// the sets were generated with.
func NewRuntime(dev Device, sets []*shader.ProgramSet, spi int) (*Runtime, error) {
	if spi <= 0 {
		return nil, fmt.Errorf("invalid samples per iteration %d", spi)
	}
	if len(sets) == 0 {
		return nil, errors.New("no program sets to load")
	}
	for _, set := range sets {
		if err := dev.Load(set.Variant, set); err != nil {
			return nil, fmt.Errorf("loading variant %d: %w", set.Variant, err)
		}
		logger.Debugf("loaded variant %d with %d programs", set.Variant, set.NumPrograms())
	}
	return &Runtime{dev: dev, spi: spi}, nil
}

// Step runs a single iteration.
func (r *Runtime) Step(ctx context.Context) error {
	if err := r.dev.Step(ctx, r.iteration); err != nil {
		return fmt.Errorf("iteration %d: %w", r.iteration, err)
	}
	r.iteration++
	return nil
}

// Render steps the device until at least spp samples per pixel were added.
// Cancellation of ctx is checked between iterations.
func (r *Runtime) Render(ctx context.Context, spp int) error {
	if spp%r.spi != 0 {
		logger.Warningf("%d samples per pixel is not a multiple of %d samples per iteration, rendering %d",
			spp, r.spi, Iterations(spp, r.spi)*r.spi)
	}
	n := Iterations(spp, r.spi)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Step(ctx); err != nil {
			return err
		}
	}
	logger.Infof("rendered %d iterations, %d samples per pixel", r.iteration, r.SampleCount())
	return nil
}

// IterationCount returns the number of completed iterations.
func (r *Runtime) IterationCount() int { return r.iteration }

// SampleCount returns the number of samples per pixel accumulated so far.
func (r *Runtime) SampleCount() int { return r.iteration * r.spi }

// Reset discards the accumulated sample count, i.e: after the camera moved.
func (r *Runtime) Reset() { r.iteration = 0 }

// Close releases the device.
func (r *Runtime) Close() error { return r.dev.Close() }
