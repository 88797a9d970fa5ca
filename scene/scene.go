// Package scene holds the in-memory scene description consumed by the kernel
// generators: typed objects with property bags grouped in ordered, named
// collections, plus the derived entity and material tables.
//
// The scene is read-only once built and may be shared between concurrent
// program generations.
package scene

import (
	"iter"
	"sort"

	"github.com/goki/kigen/ordmap"
	"github.com/soypat/geometry/ms3"
)

// Object is a typed scene element. Type selects the plugin used to generate
// code for the object, i.e: "homogeneous" for a medium or "diffuse" for a bsdf.
type Object struct {
	Type  string
	props map[string]Property
}

// NewObject returns an object of the given plugin type with no properties.
func NewObject(typ string) *Object {
	return &Object{Type: typ, props: make(map[string]Property)}
}

// Set sets a property and returns the object to allow chaining.
func (o *Object) Set(name string, p Property) *Object {
	if o.props == nil {
		o.props = make(map[string]Property)
	}
	o.props[name] = p
	return o
}

// Get returns the named property and whether it exists.
func (o *Object) Get(name string) (Property, bool) {
	p, ok := o.props[name]
	return p, ok
}

// Has reports whether the property exists.
func (o *Object) Has(name string) bool {
	_, ok := o.props[name]
	return ok
}

// Number returns the named property as a number or def if absent.
func (o *Object) Number(name string, def float32) float32 {
	return o.props[name].Number(def)
}

// Int returns the named property as an integer or def if absent.
func (o *Object) Int(name string, def int) int {
	return o.props[name].Int(def)
}

// Bool returns the named property as a boolean or def if absent.
func (o *Object) Bool(name string, def bool) bool {
	return o.props[name].Bool(def)
}

// Vector returns the named property as a vector or def if absent.
func (o *Object) Vector(name string, def ms3.Vec) ms3.Vec {
	return o.props[name].Vector(def)
}

// String returns the named property as a string or def if absent.
func (o *Object) String(name string, def string) string {
	return o.props[name].String(def)
}

// PropertyNames returns the sorted property names of the object.
func (o *Object) PropertyNames() []string {
	names := make([]string, 0, len(o.props))
	for name := range o.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collection is an insertion ordered set of named objects. The iteration order
// is significant: it defines the dispatch ids of generated code.
// The zero value is an empty collection ready to use.
type Collection struct {
	m *ordmap.Map[string, *Object]
}

// Add appends a named object. Adding an existing name replaces the object
// keeping its original position.
func (c *Collection) Add(name string, obj *Object) {
	if c.m == nil {
		c.m = ordmap.New[string, *Object]()
	}
	c.m.Add(name, obj)
}

// Get returns the object of the given name.
func (c *Collection) Get(name string) (*Object, bool) {
	if c.m == nil {
		return nil, false
	}
	idx, ok := c.m.Map[name]
	if !ok {
		return nil, false
	}
	return c.m.Order[idx].Val, true
}

// Index returns the position of the named object in the collection.
func (c *Collection) Index(name string) (int, bool) {
	if c.m == nil {
		return -1, false
	}
	idx, ok := c.m.Map[name]
	return idx, ok
}

// Len returns the number of objects.
func (c *Collection) Len() int {
	if c.m == nil {
		return 0
	}
	return c.m.Len()
}

// At returns the name and object at position i.
func (c *Collection) At(i int) (string, *Object) {
	kv := c.m.Order[i]
	return kv.Key, kv.Val
}

// All iterates over the collection in insertion order.
func (c *Collection) All() iter.Seq2[string, *Object] {
	return func(yield func(string, *Object) bool) {
		for i := 0; i < c.Len(); i++ {
			if !yield(c.At(i)) {
				return
			}
		}
	}
}

// Scene is the full declarative description of what to render.
type Scene struct {
	Textures   Collection
	BSDFs      Collection
	Media      Collection
	Lights     Collection
	Cameras    Collection
	Techniques Collection
	Entities   Collection
	// BBox bounds all scene geometry. Shape loading happens outside of this
	// package so the bounding box is given along with the scene.
	BBox ms3.Box
}

// New returns an empty scene with a unit bounding box.
func New() *Scene {
	return &Scene{
		BBox: ms3.Box{Min: ms3.Vec{X: -1, Y: -1, Z: -1}, Max: ms3.Vec{X: 1, Y: 1, Z: 1}},
	}
}

// Camera returns the first camera of the scene.
func (sc *Scene) Camera() (name string, obj *Object, ok bool) {
	if sc.Cameras.Len() == 0 {
		return "", nil, false
	}
	name, obj = sc.Cameras.At(0)
	return name, obj, true
}

// Technique returns the first technique of the scene.
func (sc *Scene) Technique() (name string, obj *Object, ok bool) {
	if sc.Techniques.Len() == 0 {
		return "", nil, false
	}
	name, obj = sc.Techniques.At(0)
	return name, obj, true
}
