package gscene

import (
	"maps"
	"slices"

	"github.com/soypat/gscene/kbuild"
	"github.com/soypat/gscene/scene"
)

// emitFunc appends the declaration of a single scene object to b.
// It must not open closures before returning an error.
type emitFunc func(b []byte, name string, obj *scene.Object, tree *Tree) ([]byte, error)

// appendCollection emits every object of col through the generator registered
// for its type and adds the emitted identifiers to disp. Objects of unknown
// type and objects whose generator fails are logged and left out so the ids
// in disp stay dense.
func appendCollection(b []byte, category string, col *scene.Collection, registry map[string]emitFunc, tree *Tree, skip func(*scene.Object) bool, disp *kbuild.Dispatch) []byte {
	for name, obj := range col.All() {
		if skip != nil && skip(obj) {
			continue
		}
		emit, ok := registry[obj.Type]
		if !ok {
			logger.Errorf("no %s type '%s' available", category, obj.Type)
			continue
		}
		start := len(b)
		nb, err := emit(b, name, obj, tree)
		if err != nil {
			logger.Errorf("%s '%s': %s", category, name, err)
			b = nb[:start]
			continue
		}
		b = nb
		disp.Add(kbuild.Ident(category, name))
	}
	return b
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
