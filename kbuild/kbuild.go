// Package kbuild contains the low level text emission helpers shared by the
// kernel program generators: number and vector literals, identifier escaping
// and integer dispatch blocks.
//
// All helpers follow the append convention: they append to the argument
// buffer and return the result so that callers can reuse scratch space.
package kbuild

import (
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Indent is the indentation used for statements inside an entry point body.
const Indent = "  "

// AppendFloat appends the shortest decimal representation of v that parses back
// to the same float32. neg and decimal replace the minus sign and decimal point
// which allows the result to be embedded in identifiers i.e: 'n' and 'p'.
// Infinite values are written as the flt_max constant.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	if math32.IsInf(v, 0) {
		if v < 0 {
			b = append(b, neg)
		}
		return append(b, "flt_max"...)
	}
	if v == 0 {
		return append(b, '0') // Avoid negative zero.
	}
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', -1, 32)
	if b[start] == '-' {
		b[start] = neg
	}
	if decimal != '.' {
		for i := start; i < len(b); i++ {
			if b[i] == '.' {
				b[i] = decimal
				break
			}
		}
	}
	return b
}

// AppendFloats appends a sep separated list of floats. A zero sep means no separator.
func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
			if sep == ',' {
				b = append(b, ' ')
			}
		}
	}
	return b
}

// AppendInt appends a decimal integer literal.
func AppendInt(b []byte, v int) []byte {
	return strconv.AppendInt(b, int64(v), 10)
}

// AppendBool appends a true or false literal.
func AppendBool(b []byte, v bool) []byte {
	return strconv.AppendBool(b, v)
}

// AppendVec3 appends a vector constructor:
//
//	make_vec3(x, y, z)
func AppendVec3(b []byte, v ms3.Vec) []byte {
	b = append(b, "make_vec3("...)
	b = AppendFloats(b, ',', '-', '.', v.X, v.Y, v.Z)
	return append(b, ')')
}

// AppendColor appends an opaque color constructor:
//
//	make_color(r, g, b, 1)
func AppendColor(b []byte, c ms3.Vec) []byte {
	b = append(b, "make_color("...)
	b = AppendFloats(b, ',', '-', '.', c.X, c.Y, c.Z, 1)
	return append(b, ')')
}

// AppendMat3 appends a 3x3 matrix constructor from its columns.
//
//	make_mat3x3(make_vec3(...), make_vec3(...), make_vec3(...))
func AppendMat3(b []byte, cols [3]ms3.Vec) []byte {
	b = append(b, "make_mat3x3("...)
	for i, c := range cols {
		b = AppendVec3(b, c)
		if i != len(cols)-1 {
			b = append(b, ", "...)
		}
	}
	return append(b, ')')
}

// AppendBBox appends a bounding box constructor.
//
//	make_bbox(make_vec3(...), make_vec3(...))
func AppendBBox(b []byte, bb ms3.Box) []byte {
	b = append(b, "make_bbox("...)
	b = AppendVec3(b, bb.Min)
	b = append(b, ", "...)
	b = AppendVec3(b, bb.Max)
	return append(b, ')')
}

// AppendLet appends a single indented let binding terminated by a newline.
//
//	let <name> = <expr>;
func AppendLet(b []byte, name, expr string) []byte {
	b = append(b, Indent...)
	b = append(b, "let "...)
	b = append(b, name...)
	b = append(b, " = "...)
	b = append(b, expr...)
	return append(b, ";\n"...)
}

// EscapeIdentifier maps an arbitrary scene object name to a valid identifier.
// Letters and digits are kept, every other byte and a leading digit are
// written as an underscore followed by two lowercase hex digits. Distinct
// names yield distinct identifiers. EscapeIdentifier panics on an empty name.
func EscapeIdentifier(name string) string {
	if name == "" {
		panic("kbuild: escaping empty identifier")
	}
	var sb strings.Builder
	sb.Grow(len(name) + 2)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isAlpha(c) || (i > 0 && isDigit(c)) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('_')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0xf])
	}
	return sb.String()
}

const hexDigits = "0123456789abcdef"

// SanitizeIdentifier replaces every byte of name that may not appear in an
// identifier with an underscore. Unlike [EscapeIdentifier] it is not
// injective and so is only used where the caller already guarantees
// uniqueness, i.e: numbered header variables.
func SanitizeIdentifier(name string) string {
	if name == "" {
		panic("kbuild: sanitizing empty identifier")
	}
	var sb strings.Builder
	sb.Grow(len(name) + 1)
	if !isAlpha(name[0]) {
		sb.WriteByte('_')
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isAlpha(c) || isDigit(c) || c == '_' {
			sb.WriteByte(c)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// Ident returns the category prefixed escaped identifier of a scene object, i.e:
// Ident("medium", "fog") returns "medium_fog".
func Ident(category, name string) string {
	return category + "_" + EscapeIdentifier(name)
}

// AppendIdent is the append version of [Ident].
func AppendIdent(b []byte, category, name string) []byte {
	b = append(b, category...)
	b = append(b, '_')
	return append(b, EscapeIdentifier(name)...)
}

func isAlpha(c byte) bool { return c|0x20 >= 'a' && c|0x20 <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
