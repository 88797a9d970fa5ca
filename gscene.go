// Package gscene translates a declarative scene description into fragments of
// kernel program text. A [Context] holds the compilation state of one pass, a
// [Tree] tracks the scoped bindings of a single program and the Generate*
// functions emit the declarations of each scene category: textures, media,
// bsdfs, lights, cameras and rendering techniques.
//
// Complete per-stage programs are assembled from these fragments by package
// shader.
package gscene

import (
	"errors"

	"github.com/soypat/gscene/log"
)

var logger = log.New("gscene")

var (
	// ErrUnknownEntity is returned when a program is requested for an entity id
	// that is not in the entity table.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrUnknownMaterial is returned when a program is requested for a material
	// id that is not in the material table.
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrNoVariant is returned when the requested technique variant does not exist.
	ErrNoVariant = errors.New("no such technique variant")
)

const (
	// DefaultSamplesPerIteration is used when the context is created without
	// an explicit samples per iteration count.
	DefaultSamplesPerIteration = 4
	// DefaultTechnique is used when the scene has no technique or its type is unknown.
	DefaultTechnique = "path"
)
