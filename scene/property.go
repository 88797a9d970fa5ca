package scene

import (
	"github.com/soypat/geometry/ms3"
)

// PropertyKind enumerates the value types a [Property] can hold.
type PropertyKind uint8

const (
	KindNone PropertyKind = iota
	KindNumber
	KindInteger
	KindBool
	KindVector
	KindString
	KindNumbers
)

func (k PropertyKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBool:
		return "bool"
	case KindVector:
		return "vector"
	case KindString:
		return "string"
	case KindNumbers:
		return "numbers"
	}
	return "unknown"
}

// Property is a single value of an [Object]'s property bag. Strings hold either
// references to other scene objects (textures, bsdfs, entities) or plain names.
type Property struct {
	kind PropertyKind
	num  float32
	i    int
	b    bool
	vec  ms3.Vec
	str  string
	nums []float32
}

func Number(v float32) Property     { return Property{kind: KindNumber, num: v} }
func Integer(v int) Property        { return Property{kind: KindInteger, i: v} }
func Bool(v bool) Property          { return Property{kind: KindBool, b: v} }
func Vector(v ms3.Vec) Property     { return Property{kind: KindVector, vec: v} }
func String(v string) Property      { return Property{kind: KindString, str: v} }
func Numbers(v ...float32) Property { return Property{kind: KindNumbers, nums: append([]float32(nil), v...)} }

// Kind returns the type of value stored.
func (p Property) Kind() PropertyKind { return p.kind }

// IsNumeric reports whether the property holds a scalar number.
func (p Property) IsNumeric() bool { return p.kind == KindNumber || p.kind == KindInteger }

// Number returns the property as a float. Integers and booleans are converted.
func (p Property) Number(def float32) float32 {
	switch p.kind {
	case KindNumber:
		return p.num
	case KindInteger:
		return float32(p.i)
	case KindBool:
		if p.b {
			return 1
		}
		return 0
	}
	return def
}

// Int returns the property as an integer. Numbers are truncated.
func (p Property) Int(def int) int {
	switch p.kind {
	case KindInteger:
		return p.i
	case KindNumber:
		return int(p.num)
	case KindBool:
		if p.b {
			return 1
		}
		return 0
	}
	return def
}

// Bool returns the property as a boolean. Numbers are true when non zero.
func (p Property) Bool(def bool) bool {
	switch p.kind {
	case KindBool:
		return p.b
	case KindInteger:
		return p.i != 0
	case KindNumber:
		return p.num != 0
	}
	return def
}

// Vector returns the property as a 3-vector. Scalars are broadcast to all
// components, which is how grey colors are given in scene files.
func (p Property) Vector(def ms3.Vec) ms3.Vec {
	switch p.kind {
	case KindVector:
		return p.vec
	case KindNumber, KindInteger:
		v := p.Number(0)
		return ms3.Vec{X: v, Y: v, Z: v}
	case KindNumbers:
		if len(p.nums) == 3 {
			return ms3.Vec{X: p.nums[0], Y: p.nums[1], Z: p.nums[2]}
		}
	}
	return def
}

// String returns the property string or def if the property is not a string.
func (p Property) String(def string) string {
	if p.kind == KindString {
		return p.str
	}
	return def
}

// Numbers returns the number list held by the property. Vectors are returned
// as three element lists and scalars as single element lists.
func (p Property) Numbers() []float32 {
	switch p.kind {
	case KindNumbers:
		return append([]float32(nil), p.nums...)
	case KindVector:
		return []float32{p.vec.X, p.vec.Y, p.vec.Z}
	case KindNumber, KindInteger:
		return []float32{p.Number(0)}
	}
	return nil
}
