package dtype

import (
	"fmt"
	"math"
)

// Kind identifies one of the v3 core scalar type families.
type Kind uint8

const (
	Bool Kind = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

// Type is a registered Zarr core scalar datatype descriptor.
type Type struct {
	Name   string
	Kind   Kind
	Size   int
	Signed bool

	// defaultFill is the fill value a chunk absent from the store
	// materializes to, held as the matching Go scalar type.
	defaultFill any

	// AbsentTolerance is the comparison tolerance used when deciding
	// whether a decoded float equals the fill value closely enough to be
	// surfaced as absent. Zero for non-float kinds (exact comparison).
	AbsentTolerance float64
}

// DefaultFill returns the dtype's default fill value as a Go scalar
// (bool, intN, uintN, float32 or float64matching Kind).
func (t *Type) DefaultFill() any { return t.defaultFill }

var registry = map[string]*Type{}
var order = []string{
	"bool",
	"int8", "int16", "int32", "int64",
	"uint8", "uint16", "uint32", "uint64",
	"float32", "float64",
}

func register(t *Type) {
	registry[t.Name] = t
}

// sqrtEpsFloat32 and sqrtEpsFloat64 are both sqrt of the float64 machine
// epsilon; float32 uses the same tolerance as float64.
var sqrtEpsFloat32 = math.Sqrt(float64(2.2204460492503131e-16)) // shared eps per spec; see Open Questions
var sqrtEpsFloat64 = math.Sqrt(2.2204460492503131e-16)

func init() {
	register(&Type{Name: "bool", Kind: Bool, Size: 1, Signed: false, defaultFill: false})
	register(&Type{Name: "int8", Kind: Int8, Size: 1, Signed: true, defaultFill: int8(-127)})
	register(&Type{Name: "int16", Kind: Int16, Size: 2, Signed: true, defaultFill: int16(-32767)})
	register(&Type{Name: "int32", Kind: Int32, Size: 4, Signed: true, defaultFill: int32(-2147483647)})
	register(&Type{Name: "int64", Kind: Int64, Size: 8, Signed: true, defaultFill: int64(9223372036854775807)})
	register(&Type{Name: "uint8", Kind: Uint8, Size: 1, Signed: false, defaultFill: uint8(255)})
	register(&Type{Name: "uint16", Kind: Uint16, Size: 2, Signed: false, defaultFill: uint16(65535)})
	register(&Type{Name: "uint32", Kind: Uint32, Size: 4, Signed: false, defaultFill: uint32(4294967295)})
	register(&Type{Name: "uint64", Kind: Uint64, Size: 8, Signed: false, defaultFill: uint64(math.MaxUint64)})
	register(&Type{Name: "float32", Kind: Float32, Size: 4, Signed: true, defaultFill: float32(9.9692099683868690e+36), AbsentTolerance: sqrtEpsFloat32})
	register(&Type{Name: "float64", Kind: Float64, Size: 8, Signed: true, defaultFill: float64(9.9692099683868690e+36), AbsentTolerance: sqrtEpsFloat64})
}

// ByName looks up a core dtype by its Zarr wire name.
func ByName(name string) (*Type, error) {
	t, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("dtype: unknown type %q", name)
	}
	return t, nil
}

// Names returns the registered dtype names in canonical table order.
func Names() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// IsFloat reports whether the kind is a floating point kind.
func (t *Type) IsFloat() bool { return t.Kind == Float32 || t.Kind == Float64 }
