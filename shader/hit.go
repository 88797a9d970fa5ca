package shader

import (
	"fmt"

	"github.com/soypat/gscene"
	"github.com/soypat/gscene/kbuild"
)

// Hit returns the program shading rays that hit the entity with the given id.
// The entity bsdf is wrapped in an emissive material when the entity carries
// an area light and the variant uses lights.
func Hit(ctx *gscene.Context, entityID int) (string, error) {
	entity, err := ctx.Entity(entityID)
	if err != nil {
		return "", err
	}
	info := ctx.VariantInfo()
	tree := gscene.NewTree(ctx)
	b := appendEntry(nil, ctx, "ig_hit_shader(settings: &Settings, entity_id: i32, first: i32, last: i32)")
	b = appendDatabase(b)
	b = append(b, '\n')
	if info.UsesLights {
		b = append(b, gscene.GenerateLights(tree, false)...)
		b = append(b, '\n')
	}
	if info.UsesMedia {
		b = append(b, gscene.GenerateMedia(tree)...)
		b = append(b, '\n')
	}
	b = appendScene(b, ctx)

	b = append(b, gscene.GenerateBSDF(entity.BSDF, tree)...)
	call := gscene.BSDFIdent(entity.BSDF) + "(ray, hit, surf)"
	light, isLight := ctx.Env.AreaLights[entity.Name]
	if isLight && info.UsesLights {
		b = append(b, ind+"let shader : Shader = @|ray, hit, surf| make_emissive_material(surf, "...)
		b = append(b, call...)
		b = append(b, ", "...)
		b = kbuild.AppendIdent(b, "light", light)
		b = append(b, ");\n\n"...)
	} else {
		b = append(b, ind+"let shader : Shader = @|ray, hit, surf| make_material("...)
		b = append(b, call...)
		b = append(b, ");\n\n"...)
	}

	if info.RequiresExplicitCamera {
		b = append(b, gscene.GenerateCamera(ctx)...)
		b = append(b, '\n')
	}
	b = appendSamples(b, "spp", ctx)
	b = appendTechnique(b, ctx, false)
	b = appendUseFramebuffer(b, info)
	b = append(b, ind+"device.handle_hit_shader(entity_id, shader, scene, technique, first, last, spp, use_framebuffer);\n}\n"...)
	if err := tree.Err(); err != nil {
		return "", fmt.Errorf("hit program of entity %q: %w", entity.Name, err)
	}
	return string(b), nil
}
