package gscene

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gscene/scene"
)

// textureFunc returns the expression of a texture function taking the
// texture coordinates as argument.
type textureFunc func(name string, obj *scene.Object, tree *Tree) (string, error)

var textureGenerators map[string]textureFunc

func init() {
	textureGenerators = map[string]textureFunc{
		"image":        textureImage,
		"bitmap":       textureImage,
		"checkerboard": textureCheckerboard,
		"brick":        textureBrick,
	}
}

// TextureTypes returns the sorted texture type names understood by the generators.
func TextureTypes() []string { return sortedKeys(textureGenerators) }

var (
	borderFuncs = map[string]string{
		"repeat": "make_repeat_border()",
		"mirror": "make_mirror_border()",
		"clamp":  "make_clamp_border()",
	}
	filterFuncs = map[string]string{
		"bilinear": "make_bilinear_filter()",
		"nearest":  "make_nearest_filter()",
	}
)

func textureImage(name string, obj *scene.Object, tree *Tree) (string, error) {
	filename := obj.String("filename", "")
	if filename == "" {
		return "", errors.New("image texture without filename")
	}
	border, ok := borderFuncs[obj.String("wrap", "repeat")]
	if !ok {
		return "", fmt.Errorf("unknown wrap mode %q", obj.String("wrap", ""))
	}
	filter, ok := filterFuncs[obj.String("filter", "bilinear")]
	if !ok {
		return "", fmt.Errorf("unknown filter %q", obj.String("filter", ""))
	}
	return "make_image_texture(" + border + ", " + filter + ", device.load_image(" + strconv.Quote(filename) + "))", nil
}

func textureCheckerboard(name string, obj *scene.Object, tree *Tree) (string, error) {
	tree.AddColor("color0", obj, ms3.Vec{}, true, InlineLight)
	tree.AddColor("color1", obj, ms3.Vec{X: 1, Y: 1, Z: 1}, true, InlineLight)
	tree.AddNumber("scale_x", obj, 2, true, InlineBare)
	tree.AddNumber("scale_y", obj, 2, true, InlineBare)
	return "@|uv: Vec2| make_checkerboard_texture(make_vec2(" + tree.Inline("scale_x") + ", " + tree.Inline("scale_y") + "), " +
		tree.Inline("color0") + ", " + tree.Inline("color1") + ")(uv)", nil
}

func textureBrick(name string, obj *scene.Object, tree *Tree) (string, error) {
	tree.AddColor("color0", obj, ms3.Vec{X: 0.6, Y: 0.2, Z: 0.1}, true, InlineLight)
	tree.AddColor("color1", obj, ms3.Vec{X: 0.8, Y: 0.8, Z: 0.8}, true, InlineLight)
	tree.AddNumber("scale_x", obj, 3, true, InlineBare)
	tree.AddNumber("scale_y", obj, 6, true, InlineBare)
	tree.AddNumber("gap_x", obj, 0.05, true, InlineBare)
	tree.AddNumber("gap_y", obj, 0.05, true, InlineBare)
	return "@|uv: Vec2| make_brick_texture(" + tree.Inline("color0") + ", " + tree.Inline("color1") +
		", make_vec2(" + tree.Inline("scale_x") + ", " + tree.Inline("scale_y") +
		"), make_vec2(" + tree.Inline("gap_x") + ", " + tree.Inline("gap_y") + "))(uv)", nil
}
