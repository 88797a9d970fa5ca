package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/soypat/gscene/shader"
	"github.com/urfave/cli"
)

type program struct {
	stage    string
	selector int // Entity or material id, -1 for none.
	text     string
}

func (p program) filename(variant int) string {
	name := "v" + strconv.Itoa(variant) + "_" + p.stage
	if p.selector >= 0 {
		name += "_" + strconv.Itoa(p.selector)
	}
	return name + ".art"
}

func programs(ps *shader.ProgramSet) []program {
	progs := []program{{stage: "miss", selector: -1, text: ps.Miss}}
	for id, text := range ps.Hit {
		progs = append(progs, program{stage: "hit", selector: id, text: text})
	}
	for id, text := range ps.AdvancedShadowHit {
		progs = append(progs, program{stage: "advshadow_hit", selector: id, text: text})
	}
	for id, text := range ps.AdvancedShadowMiss {
		progs = append(progs, program{stage: "advshadow_miss", selector: id, text: text})
	}
	return progs
}

// Generate and write the programs of every variant of a scene.
func compileScene(ctx *cli.Context) error {
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

	out := ctx.String("out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Variant", "Stage", "Selector", "File", "Size"})
	total := 0
	for _, ps := range sets {
		for _, p := range programs(ps) {
			name := p.filename(ps.Variant)
			if err := os.WriteFile(filepath.Join(out, name), []byte(p.text), 0o644); err != nil {
				return err
			}
			selector := "-"
			if p.selector >= 0 {
				selector = strconv.Itoa(p.selector)
			}
			table.Append([]string{
				strconv.Itoa(ps.Variant),
				p.stage,
				selector,
				name,
				fmt.Sprintf("%d B", len(p.text)),
			})
			total += len(p.text)
		}
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%d B", total)})
	table.Render()
	logger.Noticef("technique '%s' compiled to %s\n%s", gctx.TechniqueName(), out, buf.String())
	return nil
}
