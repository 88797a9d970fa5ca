package gscene_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gscene"
	"github.com/soypat/gscene/log"
	"github.com/soypat/gscene/scene"
)

func newContext(t *testing.T, sc *scene.Scene, opts gscene.Options) *gscene.Context {
	t.Helper()
	env, err := scene.NewEnvironment(sc)
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := gscene.NewContext(sc, env, opts)
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

// captureLog redirects log output to the returned buffer until the test ends.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetSink(&buf)
	t.Cleanup(func() { log.SetSink(os.Stderr) })
	return &buf
}

func addEntity(sc *scene.Scene, name, bsdf string) {
	sc.Entities.Add(name, scene.NewObject("").
		Set("shape", scene.String(name+"_mesh")).
		Set("bsdf", scene.String(bsdf)))
}

func TestGenerateMediaFog(t *testing.T) {
	sc := scene.New()
	sc.Media.Add("fog", scene.NewObject("homogeneous"))
	ctx := newContext(t, sc, gscene.Options{})
	got := gscene.GenerateMedia(gscene.NewTree(ctx))
	const want = `  let medium_fog = make_homogeneous_medium(make_color(0, 0, 0, 1), make_color(0, 0, 0, 1), make_henyeygreenstein_phase(0));

  let media = @|id:i32| {
    match(id) {
      0 => medium_fog,
    _ => make_vacuum_medium()
    }
  };
`
	if got != want {
		t.Errorf("media mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateMediaEmpty(t *testing.T) {
	ctx := newContext(t, scene.New(), gscene.Options{})
	got := gscene.GenerateMedia(gscene.NewTree(ctx))
	if strings.HasPrefix(got, "\n") || strings.Contains(got, "=>  ") {
		t.Error("empty media must not emit a separator line:", got)
	}
	if strings.Count(got, "=>") != 1 || !strings.Contains(got, "_ => make_vacuum_medium()") {
		t.Error("empty media must only contain the fallback arm:", got)
	}
}

func TestUnknownTypeSkipped(t *testing.T) {
	buf := captureLog(t)
	sc := scene.New()
	sc.Media.Add("weird", scene.NewObject("fancy"))
	sc.Media.Add("fog", scene.NewObject("homogeneous").Set("g", scene.Number(0.3)))
	ctx := newContext(t, sc, gscene.Options{})
	got := gscene.GenerateMedia(gscene.NewTree(ctx))
	if n := strings.Count(buf.String(), "no medium type 'fancy' available"); n != 1 {
		t.Errorf("want exactly one error for unknown type, got %d in log:\n%s", n, buf.String())
	}
	if !strings.Contains(got, "0 => medium_fog,") || strings.Contains(got, "medium_weird") {
		t.Error("unknown medium must be skipped and ids kept dense:", got)
	}
	if !strings.Contains(got, "make_henyeygreenstein_phase(0.3)") {
		t.Error("phase parameter not inlined:", got)
	}
	if ctx.MediumID("fog") != 0 || ctx.MediumID("weird") != -1 {
		t.Error("medium ids must follow the dispatch block", ctx.MediumID("fog"), ctx.MediumID("weird"))
	}
}

func TestGenerateMediaConstant(t *testing.T) {
	buf := captureLog(t)
	sc := scene.New()
	sc.Media.Add("fog", scene.NewObject("constant").Set("g", scene.Number(0.5)))
	ctx := newContext(t, sc, gscene.Options{})
	got := gscene.GenerateMedia(gscene.NewTree(ctx))
	if !strings.Contains(got, "let medium_fog = make_homogeneous_medium(make_color(0, 0, 0, 1), make_color(0, 0, 0, 1), make_henyeygreenstein_phase(0.5));") {
		t.Error("constant medium must be emitted as homogeneous:", got)
	}
	if !strings.Contains(got, "0 => medium_fog,") {
		t.Error("constant medium missing from dispatch:", got)
	}
	if strings.Contains(buf.String(), "no medium type") {
		t.Error("constant medium reported as unknown:", buf.String())
	}
	if ctx.MediumID("fog") != 0 {
		t.Error("constant medium must have an id, got", ctx.MediumID("fog"))
	}
}

func TestGenerateMediaDistinctIdentifiers(t *testing.T) {
	sc := scene.New()
	sc.Media.Add("a-b", scene.NewObject("vacuum"))
	sc.Media.Add("a.b", scene.NewObject("homogeneous"))
	sc.Media.Add("a_b", scene.NewObject("vacuum"))
	ctx := newContext(t, sc, gscene.Options{})
	got := gscene.GenerateMedia(gscene.NewTree(ctx))
	for _, ident := range []string{"medium_a_2db", "medium_a_2eb", "medium_a_5fb"} {
		if n := strings.Count(got, "let "+ident+" ="); n != 1 {
			t.Errorf("want one declaration of %s, got %d:\n%s", ident, n, got)
		}
		if n := strings.Count(got, "=> "+ident+","); n != 1 {
			t.Errorf("want one dispatch arm for %s, got %d:\n%s", ident, n, got)
		}
	}
}

func TestTreeColorFromNumbers(t *testing.T) {
	buf := captureLog(t)
	ctx := newContext(t, scene.New(), gscene.Options{})
	tree := gscene.NewTree(ctx)
	obj := scene.NewObject("").
		Set("c", scene.Numbers(1, 2, 3)).
		Set("short", scene.Numbers(1, 2))
	tree.BeginClosure()
	tree.AddColor("c", obj, ms3.Vec{}, true, gscene.InlineBare)
	tree.AddColor("short", obj, ms3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, true, gscene.InlineBare)
	if got := tree.Inline("c"); got != "make_color(1, 2, 3, 1)" {
		t.Error("three numbers must be read as a color, got", got)
	}
	if got := tree.Inline("short"); got != "make_color(0.5, 0.5, 0.5, 1)" {
		t.Error("short numbers must fall back to the default, got", got)
	}
	tree.EndClosure()
	out := buf.String()
	if strings.Contains(out, "'c' has") {
		t.Error("valid numbers reported as an error:", out)
	}
	if !strings.Contains(out, "parameter 'short' has 2 components, expected 3") {
		t.Error("short numbers not reported:", out)
	}
}

func TestTreeAddIsIdempotent(t *testing.T) {
	ctx := newContext(t, scene.New(), gscene.Options{})
	tree := gscene.NewTree(ctx)
	tree.BeginClosure()
	tree.AddNumber("x", scene.NewObject("").Set("x", scene.Number(1)), 0, true, gscene.InlineBare)
	tree.AddNumber("x", scene.NewObject("").Set("x", scene.Number(2)), 0, true, gscene.InlineBare)
	if got := tree.Inline("x"); got != "1" {
		t.Error("second add must not overwrite first, got", got)
	}
	tree.EndClosure()
	if err := tree.Err(); err != nil {
		t.Error(err)
	}
}

func TestTreeHeader(t *testing.T) {
	ctx := newContext(t, scene.New(), gscene.Options{})
	tree := gscene.NewTree(ctx)
	obj := scene.NewObject("").Set("a", scene.Number(0.5)).Set("b", scene.Number(0.5))
	tree.BeginClosure()
	tree.AddNumber("a", obj, 0, false, gscene.InlineBare)
	tree.BeginClosure()
	tree.AddNumber("b", obj, 0, false, gscene.InlineBare)
	inner := tree.Inline("b")
	tree.EndClosure()
	outer := tree.Inline("a")
	tree.EndClosure()
	if inner != outer {
		t.Errorf("same constant in enclosing closure must share its variable: %q != %q", inner, outer)
	}
	header := tree.PullHeader()
	if header != "  let var_0_a = 0.5;\n" {
		t.Errorf("unexpected header %q", header)
	}
	if again := tree.PullHeader(); again != "" {
		t.Errorf("header must be consumed once, got %q", again)
	}

	// Sibling closures do not share constants.
	tree.BeginClosure()
	tree.AddNumber("a", obj, 0, false, gscene.InlineBare)
	tree.EndClosure()
	if header := tree.PullHeader(); !strings.Contains(header, "var_1_a") {
		t.Errorf("closed closure constants must not be reused, header %q", header)
	}
}

func TestTreeContractViolations(t *testing.T) {
	ctx := newContext(t, scene.New(), gscene.Options{})
	mustPanic := func(name string, f func(tree *gscene.Tree)) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		f(gscene.NewTree(ctx))
	}
	mustPanic("inline missing", func(tree *gscene.Tree) {
		tree.BeginClosure()
		tree.Inline("never_added")
	})
	mustPanic("unbalanced end", func(tree *gscene.Tree) {
		tree.EndClosure()
	})
	mustPanic("add outside closure", func(tree *gscene.Tree) {
		tree.AddNumberConst("x", 1, true)
	})
	tree := gscene.NewTree(ctx)
	tree.BeginClosure()
	if tree.Err() == nil {
		t.Error("open closure must be reported")
	}
}

func TestTextureReference(t *testing.T) {
	sc := scene.New()
	sc.Textures.Add("checks", scene.NewObject("checkerboard").Set("scale_x", scene.Number(4)))
	sc.BSDFs.Add("floor", scene.NewObject("diffuse").Set("reflectance", scene.String("checks")))
	sc.BSDFs.Add("wall", scene.NewObject("roughdiffuse").Set("reflectance", scene.String("checks")))
	addEntity(sc, "floor", "floor")
	addEntity(sc, "wall", "wall")
	ctx := newContext(t, sc, gscene.Options{})
	tree := gscene.NewTree(ctx)
	got := gscene.GenerateBSDF("floor", tree) + gscene.GenerateBSDF("wall", tree)
	if n := strings.Count(got, "let tex_checks ="); n != 1 {
		t.Fatalf("texture must be declared once, got %d:\n%s", n, got)
	}
	if strings.Index(got, "let tex_checks") > strings.Index(got, "let bsdf_floor") {
		t.Error("texture must be declared before its first use")
	}
	if !strings.Contains(got, "make_diffuse_bsdf(surf, tex_checks(surf.tex_coords))") {
		t.Error("texture not evaluated at surface coordinates:", got)
	}
	if !strings.Contains(got, "make_vec2(4, 2)") {
		t.Error("checkerboard scale not emitted:", got)
	}
}

func TestGenerateBSDF(t *testing.T) {
	buf := captureLog(t)
	sc := scene.New()
	sc.BSDFs.Add("red", scene.NewObject("diffuse").Set("reflectance", scene.Vector(ms3.Vec{X: 0.8, Y: 0.1, Z: 0.1})))
	sc.BSDFs.Add("gold", scene.NewObject("conductor").Set("material", scene.String("au")))
	sc.BSDFs.Add("mix", scene.NewObject("blend").
		Set("first", scene.String("red")).
		Set("second", scene.String("gold")).
		Set("weight", scene.Number(0.25)))
	sc.BSDFs.Add("loop", scene.NewObject("mask").Set("bsdf", scene.String("loop")))
	sc.BSDFs.Add("odd", scene.NewObject("velvet"))
	addEntity(sc, "e", "mix")
	ctx := newContext(t, sc, gscene.Options{})

	tree := gscene.NewTree(ctx)
	got := gscene.GenerateBSDF("mix", tree)
	for _, want := range []string{
		"let bsdf_red : BSDFShader = @|ray, hit, surf| make_diffuse_bsdf(surf, ",
		"make_color(0.8, 0.1, 0.1, 1)",
		"let bsdf_gold : BSDFShader = @|ray, hit, surf| make_conductor_bsdf(surf, ",
		"let bsdf_mix : BSDFShader = @|ray, hit, surf| make_mix_bsdf(bsdf_red(ray, hit, surf), bsdf_gold(ray, hit, surf), ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Index(got, "let bsdf_mix") < strings.Index(got, "let bsdf_gold") {
		t.Error("blend must be declared after its children")
	}
	if gscene.GenerateBSDF("red", tree) != "" {
		t.Error("bsdf already emitted with the same tree must not be emitted again")
	}
	if err := tree.Err(); err != nil {
		t.Error(err)
	}

	for _, name := range []string{"loop", "odd", "missing"} {
		buf.Reset()
		got := gscene.GenerateBSDF(name, gscene.NewTree(ctx))
		if !strings.Contains(got, "make_error_bsdf(surf)") {
			t.Errorf("%s: want error bsdf, got:\n%s", name, got)
		}
		if buf.Len() == 0 {
			t.Errorf("%s: expected logged error", name)
		}
	}
}

func lightScene() *scene.Scene {
	sc := scene.New()
	sc.Lights.Add("lamp", scene.NewObject("area").
		Set("entity", scene.String("panel")).
		Set("radiance", scene.Number(10)))
	sc.Lights.Add("bulb", scene.NewObject("point").Set("position", scene.Vector(ms3.Vec{Y: 2})))
	sc.Lights.Add("sun", scene.NewObject("sun").Set("direction", scene.Vector(ms3.Vec{Y: -2})))
	addEntity(sc, "floor", "white")
	addEntity(sc, "panel", "white")
	sc.BSDFs.Add("white", scene.NewObject("diffuse"))
	return sc
}

func TestGenerateLights(t *testing.T) {
	ctx := newContext(t, lightScene(), gscene.Options{})
	got := gscene.GenerateLights(gscene.NewTree(ctx), false)
	for _, want := range []string{
		"let ae_lamp = make_shape_area_emitter(entities(1), shapes(entities(1).shape_id));",
		"let light_lamp = make_area_light(ae_lamp, @|uv| ",
		"make_point_light(",
		"make_sun_light(make_vec3(0, -1, 0), ",
		"let num_lights = 3;",
		"0 => light_lamp,",
		"2 => light_sun,",
		"_ => make_null_light()",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	got = gscene.GenerateLights(gscene.NewTree(ctx), true)
	if strings.Contains(got, "ae_lamp") || !strings.Contains(got, "let num_lights = 2;") || !strings.Contains(got, "0 => light_bulb,") {
		t.Error("area lights must be skipped with dense ids:\n", got)
	}
}

func TestGenerateLightsEmpty(t *testing.T) {
	ctx := newContext(t, scene.New(), gscene.Options{})
	got := gscene.GenerateLights(gscene.NewTree(ctx), false)
	const want = `  let num_lights = 0;
  let lights = @|id:i32| {
    match(id) {
    _ => make_null_light()
    }
  };
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateCamera(t *testing.T) {
	ctx := newContext(t, scene.New(), gscene.Options{})
	got := gscene.GenerateCamera(ctx)
	if !strings.HasPrefix(got, "  let camera = make_perspective_camera(settings.eye, settings.dir, settings.up, 0.577") {
		t.Error("default camera must be perspective with 60 degree fov:", got)
	}
	if !strings.HasSuffix(got, ", 0, flt_max);\n") {
		t.Error("default clip range not emitted:", got)
	}

	sc := scene.New()
	sc.Cameras.Add("cam", scene.NewObject("orthogonal").
		Set("scale", scene.Number(2)).
		Set("origin", scene.Vector(ms3.Vec{Y: 1, Z: 3})).
		Set("target", scene.Vector(ms3.Vec{Y: 1})).
		Set("up", scene.Vector(ms3.Vec{Y: 1, Z: 1})))
	ctx = newContext(t, sc, gscene.Options{})
	got = gscene.GenerateCamera(ctx)
	if !strings.Contains(got, "make_orthogonal_camera(settings.eye, settings.dir, settings.up, make_vec2(2 * ") {
		t.Error("orthogonal camera scale not emitted:", got)
	}
	o := gscene.InitialOrientation(ctx)
	if o.Eye != (ms3.Vec{Y: 1, Z: 3}) || o.Dir != (ms3.Vec{Z: -1}) || o.Up != (ms3.Vec{Y: 1}) {
		t.Errorf("unexpected orientation %+v", o)
	}
}

func TestTechniqueVariants(t *testing.T) {
	sc := scene.New()
	sc.Techniques.Add("ppm", scene.NewObject("photonmapping").Set("max_depth", scene.Integer(6)))
	ctx := newContext(t, sc, gscene.Options{})
	if ctx.NumVariants() != 2 {
		t.Fatal("photon mapping must have two variants, got", ctx.NumVariants())
	}
	info := ctx.VariantInfo()
	if !info.LockFramebuffer || !info.UsesAllLightsInMiss {
		t.Errorf("unexpected first variant %+v", info)
	}
	if got := gscene.GenerateTechnique(ctx, true, nil); got != "make_ppm_light_emitter(6, num_lights, lights, 1000000)" {
		t.Error("unexpected emitter expression:", got)
	}
	second, err := ctx.WithVariant(1)
	if err != nil {
		t.Fatal(err)
	}
	if got := gscene.GenerateTechnique(second, true, nil); got != "make_ppm_path_renderer(6, 0, @|_| make_null_light(), 0.01)" {
		t.Error("unexpected miss expression:", got)
	}
	if ctx.Variant() != 0 {
		t.Error("WithVariant must not modify the receiver")
	}
	if _, err := ctx.WithVariant(2); !errors.Is(err, gscene.ErrNoVariant) {
		t.Error("want ErrNoVariant, got", err)
	}
}

func TestTechniqueFallback(t *testing.T) {
	buf := captureLog(t)
	sc := scene.New()
	sc.Techniques.Add("t", scene.NewObject("bidirectional").Set("max_depth", scene.Integer(8)))
	ctx := newContext(t, sc, gscene.Options{})
	if !strings.Contains(buf.String(), "no technique type 'bidirectional' available") {
		t.Error("unknown technique must be logged:", buf.String())
	}
	if got := gscene.GenerateTechnique(ctx, false, nil); got != "make_path_renderer(8, num_lights, lights, 0)" {
		t.Error("unexpected fallback expression:", got)
	}
	if got := gscene.GenerateTechnique(ctx, true, nil); got != "make_path_renderer(8, 0, @|_| make_null_light(), 0)" {
		t.Error("unexpected fallback miss expression:", got)
	}
}

func TestTechniqueHeader(t *testing.T) {
	sc := scene.New()
	sc.Techniques.Add("t", scene.NewObject("volpath").Set("aov_normals", scene.Bool(true)))
	ctx := newContext(t, sc, gscene.Options{})
	if got := gscene.GenerateTechniqueHeader(ctx); got != "static AOV_NORMALS = 1;\n" {
		t.Errorf("unexpected header %q", got)
	}
	var res gscene.Result
	got := gscene.GenerateTechnique(ctx, false, &res)
	if got != "make_volume_path_renderer(64, num_lights, lights, media, 0)" {
		t.Error("unexpected expression:", got)
	}
	if len(res.AOVs) != 1 || res.AOVs[0] != "normals" {
		t.Error("aovs not recorded:", res.AOVs)
	}
	if ctx.VariantInfo().ShadowHandlingMode != gscene.ShadowAdvancedWithMaterials {
		t.Error("volume path tracing shades shadow rays with materials")
	}
}

func TestContext(t *testing.T) {
	ctx := newContext(t, lightScene(), gscene.Options{Target: gscene.TargetAVX2})
	if ctx.SamplesPerIteration != gscene.DefaultSamplesPerIteration {
		t.Error("default samples per iteration not applied")
	}
	if _, err := ctx.Entity(7); !errors.Is(err, gscene.ErrUnknownEntity) {
		t.Error("want ErrUnknownEntity, got", err)
	}
	if e, err := ctx.Entity(1); err != nil || e.Name != "panel" {
		t.Error("entity lookup failed", e, err)
	}
	if _, err := ctx.Material(3); !errors.Is(err, gscene.ErrUnknownMaterial) {
		t.Error("want ErrUnknownMaterial, got", err)
	}
	for target := gscene.TargetGeneric; target <= gscene.TargetAMDGPU; target++ {
		parsed, err := gscene.ParseTarget(strings.ToUpper(target.String()))
		if err != nil || parsed != target {
			t.Errorf("target %s did not round trip: %v %v", target, parsed, err)
		}
	}
	if _, err := gscene.ParseTarget("tpu"); err == nil {
		t.Error("expected error for unknown target")
	}
}
