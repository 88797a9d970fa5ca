package shader

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/soypat/gscene"
)

// ProgramSet holds every program of one technique variant.
type ProgramSet struct {
	Variant int
	Info    gscene.VariantInfo
	// Header is the technique header shared by all programs of the set.
	Header string
	AOVs   []string
	Miss   string
	// Hit holds one program per entity, indexed by entity id.
	Hit []string
	// AdvancedShadowHit and AdvancedShadowMiss are indexed by material id when
	// the variant shades shadow rays with materials. They hold a single
	// program for material 0 with plain advanced shadow handling and are empty
	// with simple shadow handling.
	AdvancedShadowHit  []string
	AdvancedShadowMiss []string
}

// NumPrograms returns the number of programs in the set.
func (ps *ProgramSet) NumPrograms() int {
	return 1 + len(ps.Hit) + len(ps.AdvancedShadowHit) + len(ps.AdvancedShadowMiss)
}

// Compiler builds program sets on a pool of workers. The pool is started by
// the first compilation and kept until Close is called.
type Compiler struct {
	// Workers is the maximum number of programs generated concurrently.
	// Zero uses the number of CPUs.
	Workers int

	mu   sync.Mutex
	pool worker.DynamicWorkerPool
}

// queueSize bounds the number of jobs submitted to the pool at once.
const queueSize = 256

// Close stops the worker goroutines. A closed Compiler starts a new pool if
// it is used again.
func (c *Compiler) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Stop()
		c.pool = nil
	}
}

type job struct {
	name string
	dst  *string
	gen  func() (string, error)
}

// Compile builds all programs of the active variant of ctx.
func (c *Compiler) Compile(ctx *gscene.Context) (*ProgramSet, error) {
	info := ctx.VariantInfo()
	var res gscene.Result
	gscene.GenerateTechnique(ctx, false, &res)
	ps := &ProgramSet{
		Variant: ctx.Variant(),
		Info:    info,
		Header:  gscene.GenerateTechniqueHeader(ctx),
		AOVs:    res.AOVs,
		Hit:     make([]string, len(ctx.Env.Entities)),
	}
	jobs := []job{{name: "miss", dst: &ps.Miss, gen: func() (string, error) { return Miss(ctx) }}}
	for id, e := range ctx.Env.Entities {
		jobs = append(jobs, job{
			name: "hit " + e.Name,
			dst:  &ps.Hit[id],
			gen:  func() (string, error) { return Hit(ctx, id) },
		})
	}
	nmat := 0
	switch info.ShadowHandlingMode {
	case gscene.ShadowAdvancedWithMaterials:
		nmat = len(ctx.Env.Materials)
	case gscene.ShadowAdvanced:
		nmat = 1
	}
	ps.AdvancedShadowHit = make([]string, nmat)
	ps.AdvancedShadowMiss = make([]string, nmat)
	for matID := range nmat {
		jobs = append(jobs,
			job{
				name: fmt.Sprintf("advanced shadow hit %d", matID),
				dst:  &ps.AdvancedShadowHit[matID],
				gen:  func() (string, error) { return AdvancedShadow(ctx, true, matID) },
			},
			job{
				name: fmt.Sprintf("advanced shadow miss %d", matID),
				dst:  &ps.AdvancedShadowMiss[matID],
				gen:  func() (string, error) { return AdvancedShadow(ctx, false, matID) },
			},
		)
	}
	if err := c.run(jobs); err != nil {
		return nil, fmt.Errorf("variant %d: %w", ctx.Variant(), err)
	}
	logger.Debugf("variant %d: generated %d programs", ps.Variant, ps.NumPrograms())
	return ps, nil
}

// CompileAll builds the program sets of every variant of the scene technique.
func (c *Compiler) CompileAll(ctx *gscene.Context) ([]*ProgramSet, error) {
	sets := make([]*ProgramSet, ctx.NumVariants())
	for i := range sets {
		vctx, err := ctx.WithVariant(i)
		if err != nil {
			return nil, err
		}
		sets[i], err = c.Compile(vctx)
		if err != nil {
			return nil, err
		}
	}
	return sets, nil
}

func (c *Compiler) run(jobs []job) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool == nil {
		workers := c.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		c.pool = worker.NewDynamicWorkerPool(workers, queueSize, 1*time.Second)
	}
	var (
		wg   sync.WaitGroup
		emu  sync.Mutex
		errs []error
	)
	for len(jobs) > 0 {
		batch := jobs[:min(len(jobs), queueSize)]
		jobs = jobs[len(batch):]
		for i, j := range batch {
			wg.Add(1)
			c.pool.SubmitTask(worker.Task{
				ID: i,
				Do: func() (any, error) {
					defer wg.Done()
					prog, err := j.gen()
					if err != nil {
						emu.Lock()
						errs = append(errs, fmt.Errorf("%s: %w", j.name, err))
						emu.Unlock()
						return nil, err
					}
					*j.dst = prog
					return nil, nil
				},
			})
		}
		wg.Wait()
	}
	return errors.Join(errs...)
}
