package shader

import (
	"github.com/soypat/gscene"
)

// Miss returns the program run for rays leaving the scene. Variants using all
// lights during miss get the database and the complete light dispatch.
func Miss(ctx *gscene.Context) (string, error) {
	info := ctx.VariantInfo()
	tree := gscene.NewTree(ctx)
	b := appendEntry(nil, ctx, "ig_miss_shader(settings: &Settings, first: i32, last: i32)")
	if info.UsesLights && info.UsesAllLightsInMiss {
		b = appendDatabase(b)
		b = append(b, '\n')
		b = append(b, gscene.GenerateLights(tree, false)...)
		b = append(b, '\n')
	}
	b = appendTechnique(b, ctx, true)
	b = appendSamples(b, "spp", ctx)
	b = append(b, ind+"device.handle_miss_shader(technique, first, last, spp)\n}\n"...)
	if err := tree.Err(); err != nil {
		return "", err
	}
	return string(b), nil
}
