package render

import (
	"context"
	"errors"

	"github.com/soypat/gscene/shader"
)

// DryRun is a Device that only records what it is asked to do. It is used to
// inspect the program and iteration layout of a scene without a backend.
type DryRun struct {
	Sets   map[int]*shader.ProgramSet
	Steps  int
	closed bool
}

// Load stores set.
func (d *DryRun) Load(variant int, set *shader.ProgramSet) error {
	if d.closed {
		return errors.New("dry run device closed")
	}
	if d.Sets == nil {
		d.Sets = make(map[int]*shader.ProgramSet)
	}
	d.Sets[variant] = set
	return nil
}

// Step counts the iteration.
func (d *DryRun) Step(ctx context.Context, iteration int) error {
	if d.closed {
		return errors.New("dry run device closed")
	}
	for v := range len(d.Sets) {
		logger.Debugf("iteration %d: variant %d", iteration, v)
	}
	d.Steps++
	return nil
}

// Close marks the device closed.
func (d *DryRun) Close() error {
	d.closed = true
	return nil
}
