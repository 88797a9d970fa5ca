package gscene

import (
	"strconv"
	"strings"

	"github.com/soypat/gscene/kbuild"
	"github.com/soypat/gscene/scene"
)

type techniqueGenerator struct {
	variants func(obj *scene.Object) []VariantInfo
	// aovs returns the names of the arbitrary output variables written besides the color buffer.
	aovs func(obj *scene.Object) []string
	expr func(b []byte, ctx *Context, obj *scene.Object, isMiss bool) []byte
}

var techniqueGenerators map[string]techniqueGenerator

func init() {
	techniqueGenerators = map[string]techniqueGenerator{
		"ao":            {variants: single(VariantInfo{}), expr: techniqueAO},
		"debug":         {variants: single(VariantInfo{}), expr: techniqueDebug},
		"path":          {variants: pathVariants, aovs: pathAOVs, expr: techniquePath},
		"volpath":       {variants: single(VariantInfo{UsesLights: true, UsesMedia: true, ShadowHandlingMode: ShadowAdvancedWithMaterials}), aovs: pathAOVs, expr: techniqueVolPath},
		"lighttracer":   {variants: single(VariantInfo{UsesLights: true, UsesAllLightsInMiss: true, RequiresExplicitCamera: true, ShadowHandlingMode: ShadowAdvanced}), expr: techniqueLightTracer},
		"photonmapping": {variants: photonVariants, expr: techniquePhotonMapping},
	}
}

// TechniqueTypes returns the sorted technique type names understood by the generators.
func TechniqueTypes() []string { return sortedKeys(techniqueGenerators) }

// TechniqueVariants returns the variants of a technique of the given type
// configured by obj. A nil obj uses default parameters.
func TechniqueVariants(typ string, obj *scene.Object) ([]VariantInfo, bool) {
	gen, ok := techniqueGenerators[typ]
	if !ok {
		return nil, false
	}
	if obj == nil {
		obj = scene.NewObject(typ)
	}
	return gen.variants(obj), true
}

// Result collects the outputs of technique generation the runtime needs.
type Result struct {
	// AOVs are the arbitrary output variable names in id order. Ids start at 1.
	AOVs []string
}

func single(info VariantInfo) func(*scene.Object) []VariantInfo {
	return func(*scene.Object) []VariantInfo { return []VariantInfo{info} }
}

// GenerateTechniqueHeader emits the static declarations of the active
// technique which are shared by all programs of a variant.
func GenerateTechniqueHeader(ctx *Context) string {
	if ctx.technique.aovs == nil {
		return ""
	}
	var b []byte
	for i, aov := range ctx.technique.aovs(ctx.techniqueObj) {
		b = append(b, "static AOV_"...)
		b = append(b, strings.ToUpper(kbuild.SanitizeIdentifier(aov))...)
		b = append(b, " = "...)
		b = strconv.AppendInt(b, int64(i+1), 10)
		b = append(b, ";\n"...)
	}
	return string(b)
}

// GenerateTechnique returns the technique expression of the active variant.
// With isMiss the media and camera arguments are replaced by empty ones and so
// are the lights, unless the variant uses all lights in the miss program.
// res may be nil.
func GenerateTechnique(ctx *Context, isMiss bool, res *Result) string {
	if res != nil && ctx.technique.aovs != nil {
		res.AOVs = ctx.technique.aovs(ctx.techniqueObj)
	}
	return string(ctx.technique.expr(nil, ctx, ctx.techniqueObj, isMiss))
}

func appendLightArgs(b []byte, ctx *Context, isMiss bool) []byte {
	if isMiss && !ctx.VariantInfo().UsesAllLightsInMiss {
		return append(b, "0, @|_| make_null_light()"...)
	}
	return append(b, "num_lights, lights"...)
}

func appendMediaArg(b []byte, isMiss bool) []byte {
	if isMiss {
		return append(b, "@|_| make_vacuum_medium()"...)
	}
	return append(b, "media"...)
}

func appendCameraArg(b []byte, isMiss bool) []byte {
	if isMiss {
		return append(b, "make_null_camera()"...)
	}
	return append(b, "camera"...)
}

func techniqueAO(b []byte, ctx *Context, obj *scene.Object, isMiss bool) []byte {
	return append(b, "make_ao_renderer()"...)
}

func techniqueDebug(b []byte, ctx *Context, obj *scene.Object, isMiss bool) []byte {
	return append(b, "make_debug_renderer(settings.debug_mode)"...)
}

func pathVariants(obj *scene.Object) []VariantInfo {
	info := VariantInfo{UsesLights: true}
	if obj.Bool("advanced_shadows", false) {
		info.ShadowHandlingMode = ShadowAdvancedWithMaterials
	}
	return []VariantInfo{info}
}

func pathAOVs(obj *scene.Object) []string {
	if !obj.Bool("aov_normals", false) {
		return nil
	}
	return []string{"normals"}
}

func appendMaxDepth(b []byte, obj *scene.Object) []byte {
	b = strconv.AppendInt(b, int64(obj.Int("max_depth", 64)), 10)
	return b
}

func appendClamp(b []byte, obj *scene.Object) []byte {
	return kbuild.AppendFloat(b, '-', '.', obj.Number("clamp", 0))
}

func techniquePath(b []byte, ctx *Context, obj *scene.Object, isMiss bool) []byte {
	b = append(b, "make_path_renderer("...)
	b = appendMaxDepth(b, obj)
	b = append(b, ", "...)
	b = appendLightArgs(b, ctx, isMiss)
	b = append(b, ", "...)
	b = appendClamp(b, obj)
	return append(b, ')')
}

func techniqueVolPath(b []byte, ctx *Context, obj *scene.Object, isMiss bool) []byte {
	b = append(b, "make_volume_path_renderer("...)
	b = appendMaxDepth(b, obj)
	b = append(b, ", "...)
	b = appendLightArgs(b, ctx, isMiss)
	b = append(b, ", "...)
	b = appendMediaArg(b, isMiss)
	b = append(b, ", "...)
	b = appendClamp(b, obj)
	return append(b, ')')
}

func techniqueLightTracer(b []byte, ctx *Context, obj *scene.Object, isMiss bool) []byte {
	b = append(b, "make_lt_renderer("...)
	b = appendMaxDepth(b, obj)
	b = append(b, ", "...)
	b = appendLightArgs(b, ctx, isMiss)
	b = append(b, ", "...)
	b = appendCameraArg(b, isMiss)
	return append(b, ')')
}

// Photon mapping traces photons from the lights in the first variant and
// gathers them along camera paths in the second.
func photonVariants(obj *scene.Object) []VariantInfo {
	return []VariantInfo{
		{UsesLights: true, UsesAllLightsInMiss: true, LockFramebuffer: true},
		{UsesLights: true},
	}
}

func techniquePhotonMapping(b []byte, ctx *Context, obj *scene.Object, isMiss bool) []byte {
	if ctx.Variant() == 0 {
		b = append(b, "make_ppm_light_emitter("...)
		b = appendMaxDepth(b, obj)
		b = append(b, ", "...)
		b = appendLightArgs(b, ctx, isMiss)
		b = append(b, ", "...)
		b = strconv.AppendInt(b, int64(obj.Int("photons", 1000000)), 10)
		return append(b, ')')
	}
	b = append(b, "make_ppm_path_renderer("...)
	b = appendMaxDepth(b, obj)
	b = append(b, ", "...)
	b = appendLightArgs(b, ctx, isMiss)
	b = append(b, ", "...)
	b = kbuild.AppendFloat(b, '-', '.', obj.Number("radius", 0.01))
	return append(b, ')')
}
