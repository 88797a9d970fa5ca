package gscene

import (
	"fmt"
	"strconv"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gscene/kbuild"
	"github.com/soypat/gscene/scene"
)

// InlineMode selects the texture coordinates used when a texture is inlined
// into a parameter expression.
type InlineMode uint8

const (
	// InlineBare evaluates textures at the origin. Used where no surface is in scope.
	InlineBare InlineMode = iota
	// InlineSurface evaluates textures at the surface texture coordinates.
	InlineSurface
	// InlineLight evaluates textures at the uv argument of an emission closure.
	InlineLight
)

func (m InlineMode) coords() string {
	switch m {
	case InlineSurface:
		return "surf.tex_coords"
	case InlineLight:
		return "uv"
	}
	return "make_vec2(0, 0)"
}

type textureState uint8

const (
	textureLoading textureState = iota + 1
	textureLoaded
	textureFailed
)

type closure struct {
	params map[string]string
	// consts maps literal text to the header variable holding it.
	consts map[string]string
}

// Tree records the parameters added by generators inside nested closures and
// the header declarations they require. A Tree belongs to the generation of a
// single program and must not be shared between goroutines.
//
// Every Add* call requires an open closure. Adding a parameter a second time
// in the same closure is a no-op so the first value wins.
type Tree struct {
	ctx      *Context
	closures []closure
	header   []byte
	textures map[string]textureState
	emitted  map[string]bool
	visiting map[string]bool
	nvar     int
	scratch  []byte
}

// NewTree returns an empty tree bound to ctx.
func NewTree(ctx *Context) *Tree {
	return &Tree{
		ctx:      ctx,
		textures: make(map[string]textureState),
		emitted:  make(map[string]bool),
		visiting: make(map[string]bool),
	}
}

// Context returns the context the tree was created with.
func (t *Tree) Context() *Context { return t.ctx }

// BeginClosure opens a new parameter scope.
func (t *Tree) BeginClosure() {
	t.closures = append(t.closures, closure{
		params: make(map[string]string),
		consts: make(map[string]string),
	})
}

// EndClosure closes the innermost scope. It panics if no scope is open.
func (t *Tree) EndClosure() {
	if len(t.closures) == 0 {
		panic("gscene: EndClosure without matching BeginClosure")
	}
	t.closures = t.closures[:len(t.closures)-1]
}

// Depth returns the number of open closures.
func (t *Tree) Depth() int { return len(t.closures) }

// Err returns a non-nil error if closures were left open.
func (t *Tree) Err() error {
	if len(t.closures) != 0 {
		return fmt.Errorf("shading tree has %d unclosed closure(s)", len(t.closures))
	}
	return nil
}

// PullHeader returns the declarations accumulated since the last call and
// clears them.
func (t *Tree) PullHeader() string {
	h := string(t.header)
	t.header = t.header[:0]
	return h
}

// Inline returns the expression of a parameter added to the innermost closure.
// It panics if the parameter was never added.
func (t *Tree) Inline(name string) string {
	cl := t.current("Inline")
	expr, ok := cl.params[name]
	if !ok {
		panic(fmt.Sprintf("gscene: Inline of parameter %q which was not added to the current closure", name))
	}
	return expr
}

// AddNumber adds a scalar parameter. A string property names a texture whose
// red channel is used.
func (t *Tree) AddNumber(name string, obj *scene.Object, def float32, bare bool, mode InlineMode) {
	cl := t.current("AddNumber")
	if _, ok := cl.params[name]; ok {
		return
	}
	v := def
	if p, ok := obj.Get(name); ok {
		switch {
		case p.Kind() == scene.KindString:
			if ident, ok := t.loadTexture(p.String("")); ok {
				cl.params[name] = ident + "(" + mode.coords() + ").r"
				return
			}
		case p.IsNumeric() || p.Kind() == scene.KindBool:
			v = p.Number(def)
		default:
			logger.Errorf("parameter '%s' of kind %s can not be used as a number", name, p.Kind())
		}
	}
	t.scratch = kbuild.AppendFloat(t.scratch[:0], '-', '.', v)
	t.setLiteral(cl, name, string(t.scratch), bare)
}

// AddColor adds a color parameter. Scalars are expanded to gray colors and
// string properties name textures.
func (t *Tree) AddColor(name string, obj *scene.Object, def ms3.Vec, bare bool, mode InlineMode) {
	cl := t.current("AddColor")
	if _, ok := cl.params[name]; ok {
		return
	}
	v, isTex := t.vectorOrTexture(cl, name, obj, def, mode)
	if isTex {
		return
	}
	t.scratch = kbuild.AppendColor(t.scratch[:0], v)
	t.setLiteral(cl, name, string(t.scratch), bare)
}

// AddVector adds a 3 component vector parameter. Textures are expanded to vectors.
func (t *Tree) AddVector(name string, obj *scene.Object, def ms3.Vec, bare bool, mode InlineMode) {
	cl := t.current("AddVector")
	if _, ok := cl.params[name]; ok {
		return
	}
	v, isTex := t.vectorOrTexture(cl, name, obj, def, mode)
	if isTex {
		cl.params[name] = "color_to_vec3(" + cl.params[name] + ")"
		return
	}
	t.scratch = kbuild.AppendVec3(t.scratch[:0], v)
	t.setLiteral(cl, name, string(t.scratch), bare)
}

// AddTexture adds a parameter holding a texture function. Constant values are
// wrapped in a function ignoring its coordinates.
func (t *Tree) AddTexture(name string, obj *scene.Object, def ms3.Vec, bare bool, mode InlineMode) {
	cl := t.current("AddTexture")
	if _, ok := cl.params[name]; ok {
		return
	}
	if p, ok := obj.Get(name); ok && p.Kind() == scene.KindString {
		if ident, ok := t.loadTexture(p.String("")); ok {
			cl.params[name] = ident
			return
		}
	} else if ok {
		def = p.Vector(def)
	}
	t.scratch = append(t.scratch[:0], "@|_| "...)
	t.scratch = kbuild.AppendColor(t.scratch, def)
	t.setLiteral(cl, name, string(t.scratch), bare)
}

// AddNumberConst adds a scalar parameter computed by the generator instead of
// read from a scene object.
func (t *Tree) AddNumberConst(name string, v float32, bare bool) {
	cl := t.current("AddNumberConst")
	if _, ok := cl.params[name]; ok {
		return
	}
	t.scratch = kbuild.AppendFloat(t.scratch[:0], '-', '.', v)
	t.setLiteral(cl, name, string(t.scratch), bare)
}

// markEmitted records key as emitted and reports whether it already was.
func (t *Tree) markEmitted(key string) (already bool) {
	already = t.emitted[key]
	t.emitted[key] = true
	return already
}

func (t *Tree) current(op string) *closure {
	if len(t.closures) == 0 {
		panic("gscene: " + op + " called outside of a closure")
	}
	return &t.closures[len(t.closures)-1]
}

func (t *Tree) vectorOrTexture(cl *closure, name string, obj *scene.Object, def ms3.Vec, mode InlineMode) (ms3.Vec, bool) {
	p, ok := obj.Get(name)
	if !ok {
		return def, false
	}
	switch p.Kind() {
	case scene.KindString:
		if ident, ok := t.loadTexture(p.String("")); ok {
			cl.params[name] = ident + "(" + mode.coords() + ")"
			return def, true
		}
		return def, false
	case scene.KindNumbers:
		if n := len(p.Numbers()); n != 3 {
			logger.Errorf("parameter '%s' has %d components, expected 3", name, n)
			return def, false
		}
	}
	return p.Vector(def), false
}

// setLiteral binds name to lit. Unless bare, the literal is hoisted into a
// header variable which is shared with any open closure that hoisted the same
// literal.
func (t *Tree) setLiteral(cl *closure, name, lit string, bare bool) {
	if bare {
		cl.params[name] = lit
		return
	}
	for i := len(t.closures) - 1; i >= 0; i-- {
		if v, ok := t.closures[i].consts[lit]; ok {
			cl.params[name] = v
			return
		}
	}
	v := "var_" + strconv.Itoa(t.nvar) + "_" + kbuild.SanitizeIdentifier(name)
	t.nvar++
	t.header = kbuild.AppendLet(t.header, v, lit)
	cl.consts[lit] = v
	cl.params[name] = v
}

// loadTexture emits the declaration of the named texture into the header the
// first time it is referenced and returns its identifier.
func (t *Tree) loadTexture(name string) (string, bool) {
	ident := kbuild.Ident("tex", name)
	switch t.textures[name] {
	case textureLoaded:
		return ident, true
	case textureFailed:
		return "", false
	case textureLoading:
		logger.Errorf("texture '%s' references itself", name)
		return "", false
	}
	obj, ok := t.ctx.Scene.Textures.Get(name)
	if !ok {
		logger.Errorf("unknown texture '%s'", name)
		t.textures[name] = textureFailed
		return "", false
	}
	gen, ok := textureGenerators[obj.Type]
	if !ok {
		logger.Errorf("no texture type '%s' available", obj.Type)
		t.textures[name] = textureFailed
		return "", false
	}
	t.textures[name] = textureLoading
	t.BeginClosure()
	expr, err := gen(name, obj, t)
	t.EndClosure()
	if err != nil {
		logger.Errorf("texture '%s': %s", name, err)
		t.textures[name] = textureFailed
		return "", false
	}
	t.header = kbuild.AppendLet(t.header, ident, expr)
	t.textures[name] = textureLoaded
	return ident, true
}
