package scene

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms3"
)

// Entity is an instance of a shape in the scene, bound to exactly one bsdf and
// at most one area light.
type Entity struct {
	ID    int
	Name  string
	Shape string
	BSDF  string
	// Light names the area light emitting from this entity. Empty if none.
	Light       string
	InnerMedium string
	OuterMedium string
	MaterialID  int
}

// IsAreaLight reports whether an area light is attached to the entity.
func (e Entity) IsAreaLight() bool { return e.Light != "" }

// Material is the unique combination of surface and volume properties shared
// by one or more entities.
type Material struct {
	BSDF        string
	InnerMedium string
	OuterMedium string
	// Light names the area light of the material. Empty if not emissive.
	Light string
}

// HasEmission reports whether the material emits light.
func (m Material) HasEmission() bool { return m.Light != "" }

// HasMediumInterface reports whether the material separates two media.
func (m Material) HasMediumInterface() bool { return m.InnerMedium != "" || m.OuterMedium != "" }

// Environment is the entity and material table derived from a [Scene].
type Environment struct {
	Entities  []Entity
	Materials []Material
	// AreaLights maps entity names to the name of the area light attached to them.
	AreaLights map[string]string
	BBox       ms3.Box
	entityIDs  map[string]int
}

// NewEnvironment builds the entity table of the scene. Entity ids are assigned
// in scene order. Area lights are attached to the entity named by their
// "entity" property.
func NewEnvironment(sc *Scene) (*Environment, error) {
	env := &Environment{
		AreaLights: make(map[string]string),
		BBox:       sc.BBox,
		entityIDs:  make(map[string]int, sc.Entities.Len()),
	}
	var errs []error
	for name, light := range sc.Lights.All() {
		if light.Type != "area" {
			continue
		}
		entity := light.String("entity", "")
		if entity == "" {
			errs = append(errs, fmt.Errorf("area light %q has no entity", name))
			continue
		}
		if prev, ok := env.AreaLights[entity]; ok {
			errs = append(errs, fmt.Errorf("entity %q has area lights %q and %q", entity, prev, name))
			continue
		}
		env.AreaLights[entity] = name
	}

	matIDs := make(map[Material]int)
	for name, obj := range sc.Entities.All() {
		e := Entity{
			ID:          len(env.Entities),
			Name:        name,
			Shape:       obj.String("shape", ""),
			BSDF:        obj.String("bsdf", ""),
			Light:       env.AreaLights[name],
			InnerMedium: obj.String("inner_medium", ""),
			OuterMedium: obj.String("outer_medium", ""),
		}
		if e.BSDF == "" {
			errs = append(errs, fmt.Errorf("entity %q has no bsdf", name))
		}
		mat := Material{BSDF: e.BSDF, InnerMedium: e.InnerMedium, OuterMedium: e.OuterMedium, Light: e.Light}
		id, ok := matIDs[mat]
		if !ok {
			id = len(env.Materials)
			matIDs[mat] = id
			env.Materials = append(env.Materials, mat)
		}
		e.MaterialID = id
		env.entityIDs[name] = e.ID
		env.Entities = append(env.Entities, e)
	}
	if len(errs) > 0 {
		return env, errors.Join(errs...)
	}
	return env, nil
}

// Entity returns the entity with the given id.
func (env *Environment) Entity(id int) (Entity, bool) {
	if id < 0 || id >= len(env.Entities) {
		return Entity{}, false
	}
	return env.Entities[id], true
}

// EntityByName returns the entity with the given name.
func (env *Environment) EntityByName(name string) (Entity, bool) {
	id, ok := env.entityIDs[name]
	if !ok {
		return Entity{}, false
	}
	return env.Entities[id], true
}

// Material returns the material with the given id.
func (env *Environment) Material(id int) (Material, bool) {
	if id < 0 || id >= len(env.Materials) {
		return Material{}, false
	}
	return env.Materials[id], true
}
