package shader

import (
	"fmt"
	"strconv"

	"github.com/soypat/gscene"
	"github.com/soypat/gscene/kbuild"
)

// AdvancedShadow returns the program resolving shadow rays with material
// matID. isHit selects the program run for shadow rays that hit an occluder
// over the one run for unoccluded rays. Both isHit and the framebuffer lock
// are embedded as constants so each combination is a separate program.
func AdvancedShadow(ctx *gscene.Context, isHit bool, matID int) (string, error) {
	info := ctx.VariantInfo()
	withMaterials := info.ShadowHandlingMode == gscene.ShadowAdvancedWithMaterials
	if withMaterials {
		if _, err := ctx.Material(matID); err != nil {
			return "", err
		}
	} else if matID < 0 {
		return "", fmt.Errorf("%w: negative id %d", gscene.ErrUnknownMaterial, matID)
	}

	tree := gscene.NewTree(ctx)
	b := appendEntry(nil, ctx, "ig_advanced_shadow_shader(settings: &Settings, first: i32, last: i32)")
	areaLights := false
	if info.UsesLights {
		areaLights = isHit || info.UsesAllLightsInMiss
		if areaLights {
			b = appendDatabase(b)
			b = append(b, '\n')
		}
		b = append(b, gscene.GenerateLights(tree, !areaLights)...)
		b = append(b, '\n')
	}
	if info.UsesMedia {
		b = append(b, gscene.GenerateMedia(tree)...)
		b = append(b, '\n')
	}

	if withMaterials {
		var err error
		b, err = appendMaterialShader(b, tree, matID, areaLights, "shader")
		if err != nil {
			return "", err
		}
		b = append(b, '\n')
	} else {
		b = append(b, ind+"let shader : Shader = @|_, _, surf| make_material("...)
		b = strconv.AppendInt(b, int64(matID), 10)
		b = append(b, ", make_black_bsdf(surf), no_medium_interface());\n\n"...)
	}

	if info.RequiresExplicitCamera {
		b = append(b, gscene.GenerateCamera(ctx)...)
		b = append(b, '\n')
	}
	b = appendSamples(b, "spi", ctx)
	b = appendTechnique(b, ctx, false)
	b = kbuild.AppendLet(b, "is_hit", strconv.FormatBool(isHit))
	b = appendUseFramebuffer(b, info)
	b = append(b, ind+"device.handle_advanced_shadow_shader(shader, technique, first, last, spi, use_framebuffer, is_hit)\n}\n"...)
	if err := tree.Err(); err != nil {
		return "", fmt.Errorf("advanced shadow program of material %d: %w", matID, err)
	}
	return string(b), nil
}

// appendMaterialShader appends the bsdf of material matID and a shader bound
// to varname evaluating it with the material medium interface. Emission is
// only wired in when the area lights are in scope.
func appendMaterialShader(b []byte, tree *gscene.Tree, matID int, areaLights bool, varname string) ([]byte, error) {
	ctx := tree.Context()
	mat, err := ctx.Material(matID)
	if err != nil {
		return b, err
	}
	id := strconv.Itoa(matID)
	b = append(b, gscene.GenerateBSDF(mat.BSDF, tree)...)
	if mat.HasMediumInterface() {
		b = kbuild.AppendLet(b, "medium_interface", "make_medium_interface("+
			strconv.Itoa(ctx.MediumID(mat.InnerMedium))+", "+strconv.Itoa(ctx.MediumID(mat.OuterMedium))+")")
	} else {
		b = kbuild.AppendLet(b, "medium_interface", "no_medium_interface()")
	}
	call := gscene.BSDFIdent(mat.BSDF) + "(ray, hit, surf)"
	b = append(b, ind+"let "...)
	b = append(b, varname...)
	b = append(b, " : Shader = @|ray, hit, surf| "...)
	if mat.HasEmission() && ctx.VariantInfo().UsesLights && areaLights {
		b = append(b, "make_emissive_material("+id+", surf, "+call+", medium_interface, "...)
		b = kbuild.AppendIdent(b, "light", mat.Light)
	} else {
		b = append(b, "make_material("+id+", "+call+", medium_interface"...)
	}
	return append(b, ");\n"...), nil
}
