package gscene

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gscene/kbuild"
	"github.com/soypat/gscene/scene"
)

var lightGenerators map[string]emitFunc

func init() {
	lightGenerators = map[string]emitFunc{
		"point":       lightPoint,
		"spot":        lightSpot,
		"area":        lightArea,
		"directional": lightDirectional,
		"sun":         lightSun,
		"constant":    lightConstant,
		"env":         lightConstant,
		"envmap":      lightEnvmap,
	}
}

// LightTypes returns the sorted light type names understood by the generators.
func LightTypes() []string { return sortedKeys(lightGenerators) }

// GenerateLights emits the light declarations followed by the light count and
// the light dispatch function. With skipArea area lights are left out, which
// is used by programs that have no entity table in scope.
func GenerateLights(tree *Tree, skipArea bool) string {
	var disp kbuild.Dispatch
	var skip func(*scene.Object) bool
	if skipArea {
		skip = func(obj *scene.Object) bool { return obj.Type == "area" }
	}
	b := appendCollection(nil, "light", &tree.ctx.Scene.Lights, lightGenerators, tree, skip, &disp)
	if disp.Len() != 0 {
		b = append(b, '\n')
	}
	b = kbuild.AppendLet(b, "num_lights", strconv.Itoa(disp.Len()))
	b = disp.AppendBlock(b, "lights", "make_null_light()")
	return string(b)
}

// sceneRadius returns the radius of the sphere bounding the scene bounding box.
func sceneRadius(ctx *Context) float32 {
	bb := ctx.Scene.BBox
	return ms3.Norm(ms3.Sub(bb.Max, bb.Min)) / 2
}

var (
	one    = ms3.Vec{X: 1, Y: 1, Z: 1}
	zAxis  = ms3.Vec{Z: 1}
	negDir = ms3.Vec{Z: -1}
)

func lightDirection(obj *scene.Object, def ms3.Vec) (ms3.Vec, error) {
	dir := obj.Vector("direction", def)
	if ms3.Norm(dir) == 0 {
		return ms3.Vec{}, errors.New("zero length direction")
	}
	return ms3.Unit(dir), nil
}

func lightPoint(b []byte, name string, obj *scene.Object, tree *Tree) ([]byte, error) {
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddVector("position", obj, ms3.Vec{}, false, InlineBare)
	tree.AddColor("intensity", obj, one, false, InlineBare)
	b = append(b, tree.PullHeader()...)
	return kbuild.AppendLet(b, kbuild.Ident("light", name),
		"make_point_light("+tree.Inline("position")+", "+tree.Inline("intensity")+")"), nil
}

func lightSpot(b []byte, name string, obj *scene.Object, tree *Tree) ([]byte, error) {
	dir, err := lightDirection(obj, zAxis)
	if err != nil {
		return b, err
	}
	cutoff := obj.Number("cutoff", 30)
	falloff := obj.Number("falloff", 20)
	if falloff > cutoff {
		return b, fmt.Errorf("falloff angle %g larger than cutoff angle %g", falloff, cutoff)
	}
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddVector("position", obj, ms3.Vec{}, false, InlineBare)
	tree.AddColor("intensity", obj, one, false, InlineBare)
	tree.AddNumberConst("cos_cutoff", math32.Cos(cutoff*math32.Pi/180), false)
	tree.AddNumberConst("cos_falloff", math32.Cos(falloff*math32.Pi/180), false)
	b = append(b, tree.PullHeader()...)
	expr := kbuild.AppendVec3([]byte("make_spot_light("+tree.Inline("position")+", "), dir)
	expr = append(expr, ", "+tree.Inline("cos_cutoff")+", "+tree.Inline("cos_falloff")+", "+tree.Inline("intensity")+")"...)
	return kbuild.AppendLet(b, kbuild.Ident("light", name), string(expr)), nil
}

func lightArea(b []byte, name string, obj *scene.Object, tree *Tree) ([]byte, error) {
	entityName := obj.String("entity", "")
	entity, ok := tree.ctx.Env.EntityByName(entityName)
	if !ok {
		return b, fmt.Errorf("%w: area light entity %q", ErrUnknownEntity, entityName)
	}
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddColor("radiance", obj, one, false, InlineLight)
	b = append(b, tree.PullHeader()...)
	id := strconv.Itoa(entity.ID)
	ae := kbuild.Ident("ae", name)
	b = kbuild.AppendLet(b, ae, "make_shape_area_emitter(entities("+id+"), shapes(entities("+id+").shape_id))")
	return kbuild.AppendLet(b, kbuild.Ident("light", name),
		"make_area_light("+ae+", @|uv| "+tree.Inline("radiance")+")"), nil
}

func lightDirectional(b []byte, name string, obj *scene.Object, tree *Tree) ([]byte, error) {
	dir, err := lightDirection(obj, negDir)
	if err != nil {
		return b, err
	}
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddColor("irradiance", obj, one, false, InlineBare)
	tree.AddNumberConst("scene_radius", sceneRadius(tree.ctx), false)
	b = append(b, tree.PullHeader()...)
	expr := kbuild.AppendVec3([]byte("make_directional_light("), dir)
	expr = append(expr, ", "+tree.Inline("scene_radius")+", "+tree.Inline("irradiance")+")"...)
	return kbuild.AppendLet(b, kbuild.Ident("light", name), string(expr)), nil
}

func lightSun(b []byte, name string, obj *scene.Object, tree *Tree) ([]byte, error) {
	dir, err := lightDirection(obj, negDir)
	if err != nil {
		return b, err
	}
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddColor("irradiance", obj, one, false, InlineBare)
	tree.AddNumber("sun_scale", obj, 1, false, InlineBare)
	tree.AddNumberConst("scene_radius", sceneRadius(tree.ctx), false)
	b = append(b, tree.PullHeader()...)
	expr := kbuild.AppendVec3([]byte("make_sun_light("), dir)
	expr = append(expr, ", "+tree.Inline("scene_radius")+", "+tree.Inline("irradiance")+", "+tree.Inline("sun_scale")+")"...)
	return kbuild.AppendLet(b, kbuild.Ident("light", name), string(expr)), nil
}

func lightConstant(b []byte, name string, obj *scene.Object, tree *Tree) ([]byte, error) {
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddColor("radiance", obj, one, false, InlineBare)
	b = append(b, tree.PullHeader()...)
	return kbuild.AppendLet(b, kbuild.Ident("light", name),
		"make_environment_light("+tree.Inline("radiance")+")"), nil
}

func lightEnvmap(b []byte, name string, obj *scene.Object, tree *Tree) ([]byte, error) {
	if !obj.Has("radiance") {
		return b, errors.New("envmap light without radiance")
	}
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddTexture("radiance", obj, one, false, InlineLight)
	tree.AddNumber("scale", obj, 1, false, InlineBare)
	tree.AddNumberConst("scene_radius", sceneRadius(tree.ctx), false)
	b = append(b, tree.PullHeader()...)
	return kbuild.AppendLet(b, kbuild.Ident("light", name),
		"make_environment_light_textured("+tree.Inline("scene_radius")+", "+tree.Inline("radiance")+", "+tree.Inline("scale")+")"), nil
}
