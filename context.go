package gscene

import (
	"fmt"
	"strings"

	"github.com/soypat/gscene/scene"
)

// Target selects the device a program is generated for.
type Target uint8

const (
	TargetGeneric Target = iota
	TargetSSE42
	TargetAVX
	TargetAVX2
	TargetAVX512
	TargetASIMD
	TargetNVVM
	TargetAMDGPU
)

var targetNames = [...]string{
	TargetGeneric: "generic",
	TargetSSE42:   "sse42",
	TargetAVX:     "avx",
	TargetAVX2:    "avx2",
	TargetAVX512:  "avx512",
	TargetASIMD:   "asimd",
	TargetNVVM:    "nvvm",
	TargetAMDGPU:  "amdgpu",
}

func (t Target) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return fmt.Sprintf("Target(%d)", uint8(t))
}

// IsGPU reports whether the target device is a GPU.
func (t Target) IsGPU() bool { return t == TargetNVVM || t == TargetAMDGPU }

// ParseTarget parses a case insensitive target name as returned by [Target.String].
func ParseTarget(s string) (Target, error) {
	s = strings.ToLower(s)
	for i, name := range targetNames {
		if name == s {
			return Target(i), nil
		}
	}
	return 0, fmt.Errorf("unknown target %q", s)
}

// ShadowHandlingMode selects how shadow rays are resolved by a technique variant.
type ShadowHandlingMode uint8

const (
	// ShadowSimple resolves shadow rays by occlusion only; no advanced shadow programs are built.
	ShadowSimple ShadowHandlingMode = iota
	// ShadowAdvanced runs the advanced shadow stage with an opaque black material.
	ShadowAdvanced
	// ShadowAdvancedWithMaterials runs the advanced shadow stage once per material with full material evaluation.
	ShadowAdvancedWithMaterials
)

func (m ShadowHandlingMode) String() string {
	switch m {
	case ShadowSimple:
		return "simple"
	case ShadowAdvanced:
		return "advanced"
	case ShadowAdvancedWithMaterials:
		return "advanced_with_materials"
	}
	return fmt.Sprintf("ShadowHandlingMode(%d)", uint8(m))
}

// VariantInfo holds the flags of a resolved technique variant. Every optional
// fragment of a stage program is included or left out by reading these flags.
type VariantInfo struct {
	UsesLights             bool
	UsesAllLightsInMiss    bool
	UsesMedia              bool
	ShadowHandlingMode     ShadowHandlingMode
	RequiresExplicitCamera bool
	LockFramebuffer        bool
}

// Options configures a compilation pass.
type Options struct {
	Target Target
	// SamplesPerIteration is the number of samples each stepping call of the
	// runtime adds per pixel. Zero selects [DefaultSamplesPerIteration].
	SamplesPerIteration int
	// Variant is the index of the active technique variant.
	Variant int
}

// Context is the state of one compilation pass. It is not modified by the
// generators and can be shared by concurrent program generations.
type Context struct {
	Target              Target
	Scene               *scene.Scene
	Env                 *scene.Environment
	SamplesPerIteration int

	techniqueName string
	techniqueObj  *scene.Object
	technique     techniqueGenerator
	variants      []VariantInfo
	variant       int
	mediumIDs     map[string]int
}

// NewContext resolves the scene technique and selects the variant given in opts.
// A scene without technique, or with a technique type that is not registered,
// is rendered with [DefaultTechnique].
func NewContext(sc *scene.Scene, env *scene.Environment, opts Options) (*Context, error) {
	if sc == nil || env == nil {
		return nil, fmt.Errorf("nil scene or environment")
	}
	ctx := &Context{
		Target:              opts.Target,
		Scene:               sc,
		Env:                 env,
		SamplesPerIteration: opts.SamplesPerIteration,
		mediumIDs:           make(map[string]int),
	}
	if ctx.SamplesPerIteration <= 0 {
		ctx.SamplesPerIteration = DefaultSamplesPerIteration
	}
	name, obj, ok := sc.Technique()
	if !ok {
		name, obj = DefaultTechnique, scene.NewObject(DefaultTechnique)
	}
	gen, ok := techniqueGenerators[obj.Type]
	if !ok {
		logger.Errorf("no technique type '%s' available, using '%s'", obj.Type, DefaultTechnique)
		gen = techniqueGenerators[DefaultTechnique]
	}
	ctx.techniqueName = name
	ctx.techniqueObj = obj
	ctx.technique = gen
	ctx.variants = gen.variants(obj)

	// Media ids follow the dispatch block: only media with a known type get one.
	for name, medium := range sc.Media.All() {
		if _, ok := mediumGenerators[medium.Type]; ok {
			ctx.mediumIDs[name] = len(ctx.mediumIDs)
		}
	}
	return ctx.WithVariant(opts.Variant)
}

// WithVariant returns a copy of the context with another technique variant active.
func (ctx *Context) WithVariant(variant int) (*Context, error) {
	if variant < 0 || variant >= len(ctx.variants) {
		return nil, fmt.Errorf("%w: %d of technique %q with %d variant(s)", ErrNoVariant, variant, ctx.techniqueName, len(ctx.variants))
	}
	cp := *ctx
	cp.variant = variant
	return &cp, nil
}

// Variant returns the index of the active technique variant.
func (ctx *Context) Variant() int { return ctx.variant }

// NumVariants returns the number of variants of the scene technique.
func (ctx *Context) NumVariants() int { return len(ctx.variants) }

// VariantInfo returns the flags of the active technique variant.
func (ctx *Context) VariantInfo() VariantInfo { return ctx.variants[ctx.variant] }

// TechniqueName returns the scene name of the technique object in use.
func (ctx *Context) TechniqueName() string { return ctx.techniqueName }

// Entity returns the entity with the given id or an error wrapping [ErrUnknownEntity].
func (ctx *Context) Entity(id int) (scene.Entity, error) {
	e, ok := ctx.Env.Entity(id)
	if !ok {
		return scene.Entity{}, fmt.Errorf("%w: id %d not in table of %d entities", ErrUnknownEntity, id, len(ctx.Env.Entities))
	}
	return e, nil
}

// Material returns the material with the given id or an error wrapping [ErrUnknownMaterial].
func (ctx *Context) Material(id int) (scene.Material, error) {
	m, ok := ctx.Env.Material(id)
	if !ok {
		return scene.Material{}, fmt.Errorf("%w: id %d not in table of %d materials", ErrUnknownMaterial, id, len(ctx.Env.Materials))
	}
	return m, nil
}

// MediumID returns the dispatch id of the named medium or -1 if the medium
// has no generated fragment.
func (ctx *Context) MediumID(name string) int {
	id, ok := ctx.mediumIDs[name]
	if !ok {
		return -1
	}
	return id
}
