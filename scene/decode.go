package scene

import (
	"errors"
	"fmt"
	"io"

	"github.com/soypat/geometry/ms3"
	"gopkg.in/yaml.v3"
)

// document is the on-disk layout of a scene. JSON scene files are valid YAML
// so both encodings are read by [Decode].
type document struct {
	Technique  map[string]any   `yaml:"technique"`
	Camera     map[string]any   `yaml:"camera"`
	BBox       *bboxDoc         `yaml:"bbox"`
	Textures   []map[string]any `yaml:"textures"`
	BSDFs      []map[string]any `yaml:"bsdfs"`
	Media      []map[string]any `yaml:"media"`
	Lights     []map[string]any `yaml:"lights"`
	Cameras    []map[string]any `yaml:"cameras"`
	Techniques []map[string]any `yaml:"techniques"`
	Entities   []map[string]any `yaml:"entities"`
}

type bboxDoc struct {
	Min []float32 `yaml:"min"`
	Max []float32 `yaml:"max"`
}

// Decode reads a scene description. Each collection is a list of objects with
// a "name" and a "type" key, all other keys become properties:
//
//	technique: {type: path, max_depth: 16}
//	media:
//	  - {name: fog, type: homogeneous, sigma_s: [0.1, 0.1, 0.1]}
//	entities:
//	  - {name: floor, shape: floor_mesh, bsdf: white}
func Decode(r io.Reader) (*Scene, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	sc := New()
	if doc.BBox != nil {
		if len(doc.BBox.Min) != 3 || len(doc.BBox.Max) != 3 {
			return nil, errors.New("bbox min and max need three components")
		}
		sc.BBox = ms3.Box{
			Min: ms3.Vec{X: doc.BBox.Min[0], Y: doc.BBox.Min[1], Z: doc.BBox.Min[2]},
			Max: ms3.Vec{X: doc.BBox.Max[0], Y: doc.BBox.Max[1], Z: doc.BBox.Max[2]},
		}
	}
	var errs []error
	addSingle := func(col *Collection, category string, raw map[string]any) {
		if raw == nil {
			return
		}
		if _, ok := raw["name"]; !ok {
			raw["name"] = category
		}
		errs = append(errs, addObjects(col, category, []map[string]any{raw}))
	}
	addSingle(&sc.Techniques, "technique", doc.Technique)
	addSingle(&sc.Cameras, "camera", doc.Camera)
	errs = append(errs,
		addObjects(&sc.Techniques, "technique", doc.Techniques),
		addObjects(&sc.Cameras, "camera", doc.Cameras),
		addObjects(&sc.Textures, "texture", doc.Textures),
		addObjects(&sc.BSDFs, "bsdf", doc.BSDFs),
		addObjects(&sc.Media, "medium", doc.Media),
		addObjects(&sc.Lights, "light", doc.Lights),
		addObjects(&sc.Entities, "entity", doc.Entities),
	)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return sc, nil
}

func addObjects(col *Collection, category string, raws []map[string]any) error {
	for i, raw := range raws {
		name, ok := raw["name"].(string)
		if !ok || name == "" {
			return fmt.Errorf("%s #%d: missing name", category, i)
		}
		if _, exists := col.Get(name); exists {
			return fmt.Errorf("%s %q defined more than once", category, name)
		}
		typ, _ := raw["type"].(string)
		obj := NewObject(typ)
		for key, value := range raw {
			if key == "name" || key == "type" {
				continue
			}
			p, err := toProperty(value)
			if err != nil {
				return fmt.Errorf("%s %q property %q: %w", category, name, key, err)
			}
			obj.Set(key, p)
		}
		col.Add(name, obj)
	}
	return nil
}

func toProperty(v any) (Property, error) {
	switch v := v.(type) {
	case int:
		return Integer(v), nil
	case int64:
		return Integer(int(v)), nil
	case float64:
		return Number(float32(v)), nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case []any:
		nums := make([]float32, len(v))
		for i, elem := range v {
			switch elem := elem.(type) {
			case int:
				nums[i] = float32(elem)
			case float64:
				nums[i] = float32(elem)
			default:
				return Property{}, fmt.Errorf("list element %d is %T, want number", i, elem)
			}
		}
		if len(nums) == 3 {
			return Vector(ms3.Vec{X: nums[0], Y: nums[1], Z: nums[2]}), nil
		}
		return Numbers(nums...), nil
	}
	return Property{}, fmt.Errorf("unsupported value type %T", v)
}
