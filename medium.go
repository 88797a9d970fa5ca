package gscene

import (
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gscene/kbuild"
	"github.com/soypat/gscene/scene"
)

var mediumGenerators map[string]emitFunc

func init() {
	mediumGenerators = map[string]emitFunc{
		"constant":    mediumHomogeneous,
		"homogeneous": mediumHomogeneous,
		"vacuum":      mediumVacuum,
	}
}

// MediumTypes returns the sorted medium type names understood by the generators.
func MediumTypes() []string { return sortedKeys(mediumGenerators) }

// GenerateMedia emits the declarations of all scene media followed by the
// media dispatch function. Media of unknown type are logged and left out.
// Parameters are inlined as literals since media are evaluated outside of
// any surface.
func GenerateMedia(tree *Tree) string {
	var disp kbuild.Dispatch
	b := appendCollection(nil, "medium", &tree.ctx.Scene.Media, mediumGenerators, tree, nil, &disp)
	if disp.Len() != 0 {
		b = append(b, '\n')
	}
	b = disp.AppendBlock(b, "media", "make_vacuum_medium()")
	return string(b)
}

func mediumHomogeneous(b []byte, name string, obj *scene.Object, tree *Tree) ([]byte, error) {
	tree.BeginClosure()
	defer tree.EndClosure()
	tree.AddColor("sigma_a", obj, ms3.Vec{}, true, InlineBare)
	tree.AddColor("sigma_s", obj, ms3.Vec{}, true, InlineBare)
	tree.AddNumber("g", obj, 0, true, InlineBare)
	b = append(b, tree.PullHeader()...)
	expr := "make_homogeneous_medium(" + tree.Inline("sigma_a") + ", " + tree.Inline("sigma_s") +
		", make_henyeygreenstein_phase(" + tree.Inline("g") + "))"
	return kbuild.AppendLet(b, kbuild.Ident("medium", name), expr), nil
}

func mediumVacuum(b []byte, name string, obj *scene.Object, tree *Tree) ([]byte, error) {
	return kbuild.AppendLet(b, kbuild.Ident("medium", name), "make_vacuum_medium()"), nil
}
