package gscene

import (
	"strings"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gscene/scene"
)

// Indices of refraction used as parameter defaults.
const (
	IORVacuum        = 1.0
	IORAir           = 1.000277
	IORGlass         = 1.5046
	IORPolypropylene = 1.49
)

var iorPresets = map[string]float32{
	"vacuum":               IORVacuum,
	"helium":               1.000036,
	"hydrogen":             1.000132,
	"air":                  IORAir,
	"carbon dioxide":       1.00045,
	"water":                1.333,
	"acetone":              1.36,
	"ethanol":              1.361,
	"carbon tetrachloride": 1.461,
	"glycerol":             1.4729,
	"benzene":              1.501,
	"silicone oil":         1.52045,
	"bromine":              1.661,
	"water ice":            1.31,
	"fused quartz":         1.458,
	"pyrex":                1.47,
	"acrylic glass":        1.49,
	"polypropylene":        IORPolypropylene,
	"bk7":                  1.5046,
	"glass":                IORGlass,
	"sodium chloride":      1.544,
	"amber":                1.55,
	"pet":                  1.575,
	"diamond":              2.419,
}

// iorValue reads an index of refraction given as a number or a preset name.
func iorValue(obj *scene.Object, name string, def float32) float32 {
	p, ok := obj.Get(name)
	if !ok {
		return def
	}
	if p.Kind() != scene.KindString {
		return p.Number(def)
	}
	preset := strings.ToLower(p.String(""))
	v, ok := iorPresets[preset]
	if !ok {
		logger.Errorf("unknown index of refraction preset '%s'", preset)
		return def
	}
	return v
}

type conductor struct {
	eta, k ms3.Vec
}

// Complex refractive indices of common metals sampled at red, green and blue.
var conductorPresets = map[string]conductor{
	"ag": {eta: ms3.Vec{X: 0.155, Y: 0.117, Z: 0.138}, k: ms3.Vec{X: 4.828, Y: 3.122, Z: 2.147}},
	"al": {eta: ms3.Vec{X: 1.657, Y: 0.880, Z: 0.521}, k: ms3.Vec{X: 9.224, Y: 6.270, Z: 4.837}},
	"au": {eta: ms3.Vec{X: 0.143, Y: 0.374, Z: 1.442}, k: ms3.Vec{X: 3.983, Y: 2.385, Z: 1.603}},
	"cr": {eta: ms3.Vec{X: 4.368, Y: 2.917, Z: 1.654}, k: ms3.Vec{X: 5.204, Y: 4.231, Z: 3.755}},
	"cu": {eta: ms3.Vec{X: 0.200, Y: 0.924, Z: 1.102}, k: ms3.Vec{X: 3.912, Y: 2.452, Z: 2.142}},
	"fe": {eta: ms3.Vec{X: 2.912, Y: 2.950, Z: 2.585}, k: ms3.Vec{X: 3.083, Y: 2.932, Z: 2.767}},
	"ni": {eta: ms3.Vec{X: 2.367, Y: 1.664, Z: 1.468}, k: ms3.Vec{X: 4.486, Y: 3.211, Z: 2.599}},
	"ti": {eta: ms3.Vec{X: 2.742, Y: 2.541, Z: 2.267}, k: ms3.Vec{X: 3.815, Y: 3.435, Z: 3.039}},
}
