package scene_test

import (
	"strings"
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gscene/scene"
)

const cornellYAML = `
technique: {type: path, max_depth: 8}
camera: {type: perspective, fov: 40, origin: [0, 1, 3.5], target: [0, 1, 0]}
bbox: {min: [-1, 0, -1], max: [1, 2, 1]}
bsdfs:
  - {name: white, type: diffuse, reflectance: 0.8}
  - {name: red, type: diffuse, reflectance: [0.8, 0.1, 0.1]}
  - {name: glass, type: dielectric, int_ior: glass}
media:
  - {name: fog, type: homogeneous, sigma_s: [0.1, 0.1, 0.1], g: 0.3}
lights:
  - {name: lamp, type: area, entity: ceiling_light, radiance: [10, 10, 10]}
  - {name: sky, type: constant, radiance: 0.1}
entities:
  - {name: floor, shape: floor_mesh, bsdf: white}
  - {name: left, shape: left_mesh, bsdf: red}
  - {name: ceiling_light, shape: light_mesh, bsdf: white}
  - {name: ball, shape: sphere, bsdf: glass, inner_medium: fog}
  - {name: back, shape: back_mesh, bsdf: white}
`

func TestDecode(t *testing.T) {
	sc, err := scene.Decode(strings.NewReader(cornellYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.BSDFs.Len() != 3 || sc.Entities.Len() != 5 || sc.Lights.Len() != 2 {
		t.Fatalf("unexpected collection sizes: bsdfs=%d entities=%d lights=%d", sc.BSDFs.Len(), sc.Entities.Len(), sc.Lights.Len())
	}
	// Order must follow the file.
	var names []string
	for name := range sc.BSDFs.All() {
		names = append(names, name)
	}
	if strings.Join(names, ",") != "white,red,glass" {
		t.Error("collection order not preserved:", names)
	}
	white, ok := sc.BSDFs.Get("white")
	if !ok || white.Type != "diffuse" {
		t.Fatal("missing white bsdf")
	}
	if got := white.Vector("reflectance", ms3.Vec{}); got != (ms3.Vec{X: 0.8, Y: 0.8, Z: 0.8}) {
		t.Error("scalar color not broadcast:", got)
	}
	_, tech, ok := sc.Technique()
	if !ok || tech.Type != "path" || tech.Int("max_depth", 0) != 8 {
		t.Error("bad technique", tech)
	}
	_, cam, ok := sc.Camera()
	if !ok || cam.Number("fov", 0) != 40 {
		t.Error("bad camera", cam)
	}
	if sc.BBox.Max.Y != 2 {
		t.Error("bbox not decoded", sc.BBox)
	}
}

func TestDecodeErrors(t *testing.T) {
	var tests = []string{
		"bsdfs: [{type: diffuse}]",
		"bsdfs: [{name: a, type: diffuse}, {name: a, type: diffuse}]",
		"bsdfs: [{name: a, type: diffuse, reflectance: [a, b, c]}]",
		"bbox: {min: [0, 0], max: [1, 1, 1]}",
	}
	for _, test := range tests {
		_, err := scene.Decode(strings.NewReader(test))
		if err == nil {
			t.Errorf("expected error decoding %q", test)
		}
	}
}

func TestEnvironment(t *testing.T) {
	sc, err := scene.Decode(strings.NewReader(cornellYAML))
	if err != nil {
		t.Fatal(err)
	}
	env, err := scene.NewEnvironment(sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(env.Entities) != 5 {
		t.Fatal("want 5 entities, got", len(env.Entities))
	}
	for i, e := range env.Entities {
		if e.ID != i {
			t.Errorf("entity %q has id %d, want %d", e.Name, e.ID, i)
		}
	}
	light, ok := env.EntityByName("ceiling_light")
	if !ok || !light.IsAreaLight() || light.Light != "lamp" {
		t.Error("area light not attached:", light)
	}
	floor, _ := env.EntityByName("floor")
	back, _ := env.EntityByName("back")
	if floor.MaterialID != back.MaterialID {
		t.Error("entities with identical surface must share material")
	}
	if floor.MaterialID == light.MaterialID {
		t.Error("emissive entity must not share material with non emissive one")
	}
	// white, red, white+lamp, glass+fog.
	if len(env.Materials) != 4 {
		t.Error("want 4 materials, got", len(env.Materials))
	}
	ball, _ := env.EntityByName("ball")
	mat, ok := env.Material(ball.MaterialID)
	if !ok || !mat.HasMediumInterface() || mat.InnerMedium != "fog" {
		t.Error("ball material lost medium interface:", mat)
	}
	if _, ok := env.Entity(5); ok {
		t.Error("out of range entity id must not resolve")
	}
}

func TestEnvironmentErrors(t *testing.T) {
	sc := scene.New()
	sc.Entities.Add("naked", scene.NewObject("").Set("shape", scene.String("mesh")))
	sc.Lights.Add("orphan", scene.NewObject("area"))
	_, err := scene.NewEnvironment(sc)
	if err == nil {
		t.Fatal("expected errors for entity without bsdf and area light without entity")
	}
	msg := err.Error()
	if !strings.Contains(msg, "naked") || !strings.Contains(msg, "orphan") {
		t.Error("errors should name offending objects:", msg)
	}
}

func TestPropertyConversions(t *testing.T) {
	if scene.Integer(3).Number(0) != 3 {
		t.Error("integer to number")
	}
	if scene.Number(2.7).Int(0) != 2 {
		t.Error("number to integer")
	}
	if !scene.Integer(1).Bool(false) {
		t.Error("integer to bool")
	}
	if scene.String("tex").Number(5) != 5 {
		t.Error("string must resolve to default number")
	}
	if got := scene.Numbers(1, 2, 3).Vector(ms3.Vec{}); got != (ms3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Error("numbers to vector", got)
	}
	var none scene.Property
	if none.Kind() != scene.KindNone || none.String("def") != "def" {
		t.Error("zero property must be none")
	}
}
