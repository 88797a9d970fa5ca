package main

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/soypat/gscene"
	"github.com/urfave/cli"
)

// List the registered techniques and the flags of their variants.
func listTechniques(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Technique", "Variant", "Lights", "All lights in miss", "Media", "Shadows", "Camera", "Lock framebuffer"})
	for _, typ := range gscene.TechniqueTypes() {
		variants, _ := gscene.TechniqueVariants(typ, nil)
		for i, info := range variants {
			table.Append([]string{
				typ,
				strconv.Itoa(i),
				strconv.FormatBool(info.UsesLights),
				strconv.FormatBool(info.UsesAllLightsInMiss),
				strconv.FormatBool(info.UsesMedia),
				info.ShadowHandlingMode.String(),
				strconv.FormatBool(info.RequiresExplicitCamera),
				strconv.FormatBool(info.LockFramebuffer),
			})
		}
	}
	table.Render()
	logger.Noticef("available techniques\n%s", buf.String())
	for _, category := range []struct {
		name  string
		types []string
	}{
		{"bsdf", gscene.BSDFTypes()},
		{"light", gscene.LightTypes()},
		{"medium", gscene.MediumTypes()},
		{"camera", gscene.CameraTypes()},
		{"texture", gscene.TextureTypes()},
	} {
		logger.Noticef("%s types: %s", category.name, strings.Join(category.types, ", "))
	}
	return nil
}
