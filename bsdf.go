package gscene

import (
	"strings"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gscene/kbuild"
	"github.com/soypat/gscene/scene"
)

// bsdfFunc appends the declarations the bsdf depends on to b and returns the
// bsdf expression, evaluated with ray, hit and surf in scope.
type bsdfFunc func(b []byte, obj *scene.Object, tree *Tree) ([]byte, string)

var bsdfGenerators map[string]bsdfFunc

func init() {
	bsdfGenerators = map[string]bsdfFunc{
		"diffuse":         bsdfDiffuse,
		"roughdiffuse":    bsdfOrenNayar,
		"orennayar":       bsdfOrenNayar,
		"conductor":       bsdfConductor,
		"roughconductor":  bsdfRoughConductor,
		"dielectric":      bsdfDielectric,
		"roughdielectric": bsdfRoughDielectric,
		"thindielectric":  bsdfThinDielectric,
		"plastic":         bsdfPlastic,
		"roughplastic":    bsdfRoughPlastic,
		"principled":      bsdfPrincipled,
		"blend":           bsdfBlend,
		"mask":            bsdfMask,
		"twosided":        bsdfTwoSided,
		"passthrough":     bsdfPassthrough,
	}
}

// BSDFTypes returns the sorted bsdf type names understood by the generators.
func BSDFTypes() []string { return sortedKeys(bsdfGenerators) }

const errorBSDF = "make_error_bsdf(surf)"

// GenerateBSDF emits the declaration of the named bsdf, preceded by the
// declarations of the bsdfs and textures it references that were not emitted
// earlier with the same tree. The bsdf is bound to bsdf_<name>:
//
//	let bsdf_<name> : BSDFShader = @|ray, hit, surf| <expression>;
//
// Missing bsdfs and bsdfs of unknown type are logged and bound to an error bsdf.
func GenerateBSDF(name string, tree *Tree) string {
	b, _ := appendBSDF(nil, name, tree)
	return string(b)
}

// BSDFIdent returns the identifier GenerateBSDF binds the named bsdf to.
func BSDFIdent(name string) string { return kbuild.Ident("bsdf", name) }

func appendBSDF(b []byte, name string, tree *Tree) ([]byte, string) {
	ident := BSDFIdent(name)
	if tree.visiting[ident] {
		logger.Errorf("bsdf '%s' references itself", name)
		return b, ""
	}
	if tree.markEmitted(ident) {
		return b, ident
	}
	expr := errorBSDF
	obj, ok := tree.ctx.Scene.BSDFs.Get(name)
	if !ok {
		logger.Errorf("unknown bsdf '%s'", name)
	} else if gen, ok := bsdfGenerators[obj.Type]; !ok {
		logger.Errorf("no bsdf type '%s' available", obj.Type)
	} else {
		tree.visiting[ident] = true
		b, expr = gen(b, obj, tree)
		delete(tree.visiting, ident)
	}
	b = append(b, tree.PullHeader()...)
	return kbuild.AppendLet(b, ident+" : BSDFShader", "@|ray, hit, surf| "+expr), ident
}

// appendInner emits the bsdf named by the prop property of obj and returns
// the call evaluating it at the current surface.
func appendInner(b []byte, obj *scene.Object, prop string, tree *Tree) ([]byte, string) {
	name := obj.String(prop, "")
	if name == "" {
		logger.Errorf("bsdf parameter '%s' does not name a bsdf", prop)
		return b, errorBSDF
	}
	b, ident := appendBSDF(b, name, tree)
	if ident == "" {
		return b, errorBSDF
	}
	return b, ident + "(ray, hit, surf)"
}

func gray(v float32) ms3.Vec { return ms3.Vec{X: v, Y: v, Z: v} }

func bsdfDiffuse(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddColor("reflectance", obj, gray(0.5), false, InlineSurface)
	return b, "make_diffuse_bsdf(surf, " + tree.Inline("reflectance") + ")"
}

func bsdfOrenNayar(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddNumber("alpha", obj, 0, false, InlineSurface)
	tree.AddColor("reflectance", obj, gray(0.5), false, InlineSurface)
	return b, "make_orennayar_bsdf(surf, " + tree.Inline("alpha") + ", " + tree.Inline("reflectance") + ")"
}

// addRoughness adds alpha_u and alpha_v, both defaulting to the alpha property.
func addRoughness(obj *scene.Object, tree *Tree) {
	alpha := obj.Number("alpha", 0.1)
	tree.AddNumber("alpha_u", obj, alpha, false, InlineSurface)
	tree.AddNumber("alpha_v", obj, alpha, false, InlineSurface)
}

// addConductor adds the eta and k parameters, taken from the named material
// preset unless given explicitly. It reports false for a perfect mirror.
func addConductor(obj *scene.Object, tree *Tree) bool {
	material := strings.ToLower(obj.String("material", "none"))
	preset, ok := conductorPresets[material]
	if !ok {
		if material != "none" {
			logger.Errorf("unknown conductor material '%s'", material)
		}
		if !obj.Has("eta") && !obj.Has("k") {
			return false
		}
		preset = conductorPresets["cu"]
	}
	tree.AddColor("eta", obj, preset.eta, false, InlineSurface)
	tree.AddColor("k", obj, preset.k, false, InlineSurface)
	return true
}

func bsdfConductor(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddColor("specular_reflectance", obj, one, false, InlineSurface)
	if !addConductor(obj, tree) {
		return b, "make_mirror_bsdf(surf, " + tree.Inline("specular_reflectance") + ")"
	}
	return b, "make_conductor_bsdf(surf, " + tree.Inline("eta") + ", " + tree.Inline("k") + ", " + tree.Inline("specular_reflectance") + ")"
}

func bsdfRoughConductor(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddColor("specular_reflectance", obj, one, false, InlineSurface)
	addRoughness(obj, tree)
	if !addConductor(obj, tree) {
		tree.AddColor("eta", obj, ms3.Vec{}, false, InlineSurface)
		tree.AddColor("k", obj, one, false, InlineSurface)
	}
	return b, "make_rough_conductor_bsdf(surf, " + tree.Inline("alpha_u") + ", " + tree.Inline("alpha_v") + ", " +
		tree.Inline("eta") + ", " + tree.Inline("k") + ", " + tree.Inline("specular_reflectance") + ")"
}

// addIOR adds the ext_ior and int_ior parameters. Both accept a number or the
// name of an index of refraction preset.
func addIOR(obj *scene.Object, tree *Tree, intDef float32) {
	tree.AddNumberConst("ext_ior", iorValue(obj, "ext_ior", IORAir), false)
	tree.AddNumberConst("int_ior", iorValue(obj, "int_ior", intDef), false)
}

func bsdfDielectric(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	tree.BeginClosure()
	defer tree.EndClosure()
	addIOR(obj, tree, IORGlass)
	tree.AddColor("specular_reflectance", obj, one, false, InlineSurface)
	tree.AddColor("specular_transmittance", obj, one, false, InlineSurface)
	return b, "make_glass_bsdf(surf, " + tree.Inline("ext_ior") + ", " + tree.Inline("int_ior") + ", " +
		tree.Inline("specular_reflectance") + ", " + tree.Inline("specular_transmittance") + ")"
}

func bsdfRoughDielectric(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	tree.BeginClosure()
	defer tree.EndClosure()
	addIOR(obj, tree, IORGlass)
	tree.AddColor("specular_reflectance", obj, one, false, InlineSurface)
	tree.AddColor("specular_transmittance", obj, one, false, InlineSurface)
	addRoughness(obj, tree)
	return b, "make_rough_glass_bsdf(surf, " + tree.Inline("ext_ior") + ", " + tree.Inline("int_ior") + ", " +
		tree.Inline("specular_reflectance") + ", " + tree.Inline("specular_transmittance") + ", " +
		tree.Inline("alpha_u") + ", " + tree.Inline("alpha_v") + ")"
}

func bsdfThinDielectric(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	tree.BeginClosure()
	defer tree.EndClosure()
	addIOR(obj, tree, IORGlass)
	tree.AddColor("specular_reflectance", obj, one, false, InlineSurface)
	return b, "make_thinglass_bsdf(surf, " + tree.Inline("ext_ior") + ", " + tree.Inline("int_ior") + ", " + tree.Inline("specular_reflectance") + ")"
}

func bsdfPlastic(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	tree.BeginClosure()
	defer tree.EndClosure()
	addIOR(obj, tree, IORPolypropylene)
	tree.AddColor("diffuse_reflectance", obj, gray(0.5), false, InlineSurface)
	tree.AddColor("specular_reflectance", obj, one, false, InlineSurface)
	return b, "make_plastic_bsdf(surf, " + tree.Inline("ext_ior") + ", " + tree.Inline("int_ior") + ", " +
		tree.Inline("diffuse_reflectance") + ", " + tree.Inline("specular_reflectance") + ")"
}

func bsdfRoughPlastic(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	tree.BeginClosure()
	defer tree.EndClosure()
	addIOR(obj, tree, IORPolypropylene)
	tree.AddColor("diffuse_reflectance", obj, gray(0.5), false, InlineSurface)
	tree.AddColor("specular_reflectance", obj, one, false, InlineSurface)
	addRoughness(obj, tree)
	return b, "make_rough_plastic_bsdf(surf, " + tree.Inline("ext_ior") + ", " + tree.Inline("int_ior") + ", " +
		tree.Inline("diffuse_reflectance") + ", " + tree.Inline("specular_reflectance") + ", " +
		tree.Inline("alpha_u") + ", " + tree.Inline("alpha_v") + ")"
}

var principledNumbers = [...]struct {
	name string
	def  float32
}{
	{"metallic", 0},
	{"roughness", 0.5},
	{"anisotropic", 0},
	{"sheen", 0},
	{"sheen_tint", 0},
	{"clearcoat", 0},
	{"clearcoat_gloss", 0},
	{"specular_transmission", 0},
	{"specular_tint", 0},
	{"flatness", 0},
}

func bsdfPrincipled(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddNumberConst("ior", iorValue(obj, "ior", 1.55), false)
	tree.AddColor("base_color", obj, gray(0.8), false, InlineSurface)
	expr := "make_principled_bsdf(surf, " + tree.Inline("ior") + ", " + tree.Inline("base_color")
	for _, p := range principledNumbers {
		tree.AddNumber(p.name, obj, p.def, false, InlineSurface)
		expr += ", " + tree.Inline(p.name)
	}
	return b, expr + ")"
}

func bsdfBlend(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	b, first := appendInner(b, obj, "first", tree)
	b, second := appendInner(b, obj, "second", tree)
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddNumber("weight", obj, 0.5, false, InlineSurface)
	return b, "make_mix_bsdf(" + first + ", " + second + ", " + tree.Inline("weight") + ")"
}

func bsdfMask(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	b, inner := appendInner(b, obj, "bsdf", tree)
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddNumber("weight", obj, 0.5, false, InlineSurface)
	return b, "make_mix_bsdf(make_passthrough_bsdf(surf), " + inner + ", " + tree.Inline("weight") + ")"
}

func bsdfTwoSided(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	name := obj.String("bsdf", "")
	b, inner := appendInner(b, obj, "bsdf", tree)
	if inner == errorBSDF {
		return b, errorBSDF
	}
	return b, "make_doublesided_bsdf(surf, @|s| " + BSDFIdent(name) + "(ray, hit, s))"
}

func bsdfPassthrough(b []byte, obj *scene.Object, tree *Tree) ([]byte, string) {
	return b, "make_passthrough_bsdf(surf)"
}
