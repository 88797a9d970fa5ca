package render_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/soypat/gscene/log"
	"github.com/soypat/gscene/render"
	"github.com/soypat/gscene/shader"
)

func TestIterations(t *testing.T) {
	var tests = []struct {
		spp, spi, want int
	}{
		{spp: 64, spi: 4, want: 16},
		{spp: 65, spi: 4, want: 17},
		{spp: 3, spi: 4, want: 1},
		{spp: 0, spi: 4, want: 0},
		{spp: 16, spi: 0, want: 0},
	}
	for _, test := range tests {
		got := render.Iterations(test.spp, test.spi)
		if got != test.want {
			t.Errorf("Iterations(%d, %d)=%d, want %d", test.spp, test.spi, got, test.want)
		}
	}
}

func testSets(n int) []*shader.ProgramSet {
	sets := make([]*shader.ProgramSet, n)
	for i := range sets {
		sets[i] = &shader.ProgramSet{Variant: i, Miss: "miss"}
	}
	return sets
}

func TestRuntimeRender(t *testing.T) {
	var buf bytes.Buffer
	log.SetSink(&buf)
	defer log.SetSink(os.Stderr)

	var dev render.DryRun
	rt, err := render.NewRuntime(&dev, testSets(2), 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(dev.Sets) != 2 {
		t.Fatal("all variants must be loaded, got", len(dev.Sets))
	}
	if err := rt.Render(context.Background(), 10); err != nil {
		t.Fatal(err)
	}
	if dev.Steps != 3 || rt.IterationCount() != 3 || rt.SampleCount() != 12 {
		t.Errorf("steps=%d iterations=%d samples=%d", dev.Steps, rt.IterationCount(), rt.SampleCount())
	}
	if !strings.Contains(buf.String(), "not a multiple") {
		t.Error("expected warning for uneven sample count, log:", buf.String())
	}
	rt.Reset()
	if rt.SampleCount() != 0 {
		t.Error("reset must clear samples")
	}
	if err := rt.Close(); err != nil {
		t.Fatal(err)
	}
	if err := rt.Step(context.Background()); err == nil {
		t.Error("stepping a closed device must fail")
	}
}

func TestRuntimeCancel(t *testing.T) {
	var dev render.DryRun
	rt, err := render.NewRuntime(&dev, testSets(1), 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = rt.Render(ctx, 8)
	if !errors.Is(err, context.Canceled) || dev.Steps != 0 {
		t.Errorf("want cancellation before first step, got err=%v steps=%d", err, dev.Steps)
	}
}

func TestNewRuntimeErrors(t *testing.T) {
	var dev render.DryRun
	if _, err := render.NewRuntime(&dev, testSets(1), 0); err == nil {
		t.Error("expected error for zero samples per iteration")
	}
	if _, err := render.NewRuntime(&dev, nil, 4); err == nil {
		t.Error("expected error without program sets")
	}
}
