package gscene

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gscene/kbuild"
	"github.com/soypat/gscene/scene"
)

type cameraFunc func(b []byte, obj *scene.Object) []byte

var cameraGenerators map[string]cameraFunc

func init() {
	cameraGenerators = map[string]cameraFunc{
		"perspective":  cameraPerspective,
		"orthogonal":   cameraOrthogonal,
		"orthographic": cameraOrthogonal,
		"fishlens":     cameraFishlens,
		"fisheye":      cameraFishlens,
	}
}

// CameraTypes returns the sorted camera type names understood by the generators.
func CameraTypes() []string { return sortedKeys(cameraGenerators) }

// DefaultFOV is the vertical field of view in degrees of the perspective
// camera used when the scene has no usable camera.
const DefaultFOV = 60

const aspectRatio = "(settings.width as f32) / (settings.height as f32)"

// GenerateCamera emits the camera declaration of the first scene camera. Eye
// position and view direction are read from the runtime settings so the
// camera can be moved without rebuilding programs.
func GenerateCamera(ctx *Context) string {
	_, obj, ok := ctx.Scene.Camera()
	if !ok {
		obj = scene.NewObject("perspective")
	}
	gen, ok := cameraGenerators[obj.Type]
	if !ok {
		logger.Errorf("no camera type '%s' available", obj.Type)
		obj = scene.NewObject("perspective")
		gen = cameraPerspective
	}
	return string(gen(nil, obj))
}

func appendClip(b []byte, obj *scene.Object) []byte {
	b = kbuild.AppendFloat(b, '-', '.', obj.Number("near_clip", 0))
	b = append(b, ", "...)
	return kbuild.AppendFloat(b, '-', '.', obj.Number("far_clip", math32.Inf(1)))
}

func cameraPerspective(b []byte, obj *scene.Object) []byte {
	fov := obj.Number("fov", DefaultFOV)
	if fov <= 0 || fov >= 180 {
		logger.Errorf("invalid camera field of view %g, using %d", fov, DefaultFOV)
		fov = DefaultFOV
	}
	tanHalf := math32.Tan(fov * math32.Pi / 360)
	b = append(b, kbuild.Indent+"let camera = make_perspective_camera(settings.eye, settings.dir, settings.up, "...)
	b = kbuild.AppendFloat(b, '-', '.', tanHalf)
	b = append(b, " * "+aspectRatio+", "...)
	b = kbuild.AppendFloat(b, '-', '.', tanHalf)
	b = append(b, ", "...)
	b = appendClip(b, obj)
	return append(b, ");\n"...)
}

func cameraOrthogonal(b []byte, obj *scene.Object) []byte {
	scale := obj.Number("scale", 1)
	b = append(b, kbuild.Indent+"let camera = make_orthogonal_camera(settings.eye, settings.dir, settings.up, make_vec2("...)
	b = kbuild.AppendFloat(b, '-', '.', scale)
	b = append(b, " * "+aspectRatio+", "...)
	b = kbuild.AppendFloat(b, '-', '.', scale)
	b = append(b, "), "...)
	b = appendClip(b, obj)
	return append(b, ");\n"...)
}

var fishlensModes = map[string]string{
	"circular": "FisheyeAspectMode::Circular",
	"cropped":  "FisheyeAspectMode::Cropped",
	"full":     "FisheyeAspectMode::Full",
}

func cameraFishlens(b []byte, obj *scene.Object) []byte {
	mode, ok := fishlensModes[obj.String("mode", "circular")]
	if !ok {
		logger.Errorf("unknown fisheye mode '%s'", obj.String("mode", ""))
		mode = fishlensModes["circular"]
	}
	b = append(b, kbuild.Indent+"let camera = make_fishlens_camera(settings.eye, settings.dir, settings.up, settings.width as f32, settings.height as f32, "...)
	b = append(b, mode...)
	b = append(b, ", "...)
	b = appendClip(b, obj)
	return append(b, ");\n"...)
}

// Orientation is the camera frame a runtime starts rendering with.
type Orientation struct {
	Eye, Dir, Up ms3.Vec
}

// InitialOrientation returns the frame of the first scene camera. The view
// direction points from the origin property to the target property, or along
// the direction property. Up is made orthogonal to the view direction.
func InitialOrientation(ctx *Context) Orientation {
	o := Orientation{Dir: ms3.Vec{Z: 1}, Up: ms3.Vec{Y: 1}}
	_, obj, ok := ctx.Scene.Camera()
	if !ok {
		return o
	}
	o.Eye = obj.Vector("origin", ms3.Vec{})
	switch {
	case obj.Has("target"):
		o.Dir = ms3.Sub(obj.Vector("target", ms3.Vec{}), o.Eye)
	case obj.Has("direction"):
		o.Dir = obj.Vector("direction", o.Dir)
	}
	if ms3.Norm(o.Dir) == 0 {
		logger.Errorf("camera view direction has zero length")
		o.Dir = ms3.Vec{Z: 1}
	}
	o.Dir = ms3.Unit(o.Dir)
	up := obj.Vector("up", o.Up)
	up = ms3.Sub(up, ms3.Scale(ms3.Dot(up, o.Dir), o.Dir))
	if ms3.Norm(up) < 1e-6 {
		up = ms3.Vec{X: 1}
		up = ms3.Sub(up, ms3.Scale(ms3.Dot(up, o.Dir), o.Dir))
	}
	o.Up = ms3.Unit(up)
	return o
}
