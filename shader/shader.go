// Package shader assembles complete kernel stage programs from the fragments
// emitted by package gscene. One program is built per stage, technique variant
// and, depending on the stage, entity or material.
//
// Every builder owns the [gscene.Tree] it generates with, so builders for
// different programs may run concurrently on a shared [gscene.Context].
package shader

import (
	"strconv"

	"github.com/soypat/gscene"
	"github.com/soypat/gscene/kbuild"
	"github.com/soypat/gscene/log"
)

var logger = log.New("shader")

const ind = kbuild.Indent

// appendDevice appends the device construction statement for the target.
func appendDevice(b []byte, target gscene.Target) []byte {
	b = append(b, ind+"let device = "...)
	switch target {
	case gscene.TargetSSE42:
		b = append(b, "make_sse42_device()"...)
	case gscene.TargetAVX:
		b = append(b, "make_avx_device()"...)
	case gscene.TargetAVX2:
		b = append(b, "make_avx2_device()"...)
	case gscene.TargetAVX512:
		b = append(b, "make_avx512_device()"...)
	case gscene.TargetASIMD:
		b = append(b, "make_asimd_device()"...)
	case gscene.TargetNVVM:
		b = append(b, "make_nvvm_device(settings.device)"...)
	case gscene.TargetAMDGPU:
		b = append(b, "make_amdgpu_device(settings.device)"...)
	default:
		b = append(b, "make_cpu_default_device()"...)
	}
	return append(b, ";\n"...)
}

// appendEntry appends the technique header, the entry point signature and
// the device construction.
func appendEntry(b []byte, ctx *gscene.Context, signature string) []byte {
	b = append(b, gscene.GenerateTechniqueHeader(ctx)...)
	b = append(b, '\n')
	b = append(b, "#[export] fn "...)
	b = append(b, signature...)
	b = append(b, " -> () {\n"...)
	b = append(b, ind+"maybe_unused(settings);\n"...)
	b = appendDevice(b, ctx.Target)
	return append(b, '\n')
}

// appendDatabase appends the scene database loading statements which bring
// the shape and entity tables into scope.
func appendDatabase(b []byte) []byte {
	b = append(b, ind+"let dtb      = device.load_scene_database();\n"...)
	b = append(b, ind+"let shapes   = device.load_shape_table(dtb.shapes);\n"...)
	b = append(b, ind+"let entities = device.load_entity_table(dtb.entities);\n"...)
	return b
}

func appendSceneInfo(b []byte, ctx *gscene.Context) []byte {
	b = append(b, "SceneInfo { num_entities = "...)
	b = strconv.AppendInt(b, int64(len(ctx.Env.Entities)), 10)
	b = append(b, ", num_materials = "...)
	b = strconv.AppendInt(b, int64(len(ctx.Env.Materials)), 10)
	return append(b, " }"...)
}

// appendScene appends the scene accessor and scene bindings. Requires the
// database in scope.
func appendScene(b []byte, ctx *gscene.Context) []byte {
	b = append(b, ind+"let acc  = SceneAccessor {\n"...)
	b = append(b, ind+ind+"info     = "...)
	b = appendSceneInfo(b, ctx)
	b = append(b, ",\n"...)
	b = append(b, ind+ind+"shapes   = shapes,\n"...)
	b = append(b, ind+ind+"entities = entities,\n"...)
	b = append(b, ind+"};\n\n"...)
	b = append(b, ind+"let scene = Scene {\n"...)
	b = append(b, ind+ind+"info     = acc.info,\n"...)
	b = append(b, ind+ind+"database = acc\n"...)
	b = append(b, ind+"};\n\n"...)
	return b
}

// appendSamples appends an integer let binding of the samples per iteration.
func appendSamples(b []byte, name string, ctx *gscene.Context) []byte {
	return kbuild.AppendLet(b, name, strconv.Itoa(ctx.SamplesPerIteration)+" : i32")
}

func appendTechnique(b []byte, ctx *gscene.Context, isMiss bool) []byte {
	b = kbuild.AppendLet(b, "technique", gscene.GenerateTechnique(ctx, isMiss, nil))
	return append(b, '\n')
}

func appendUseFramebuffer(b []byte, info gscene.VariantInfo) []byte {
	return kbuild.AppendLet(b, "use_framebuffer", strconv.FormatBool(!info.LockFramebuffer))
}
