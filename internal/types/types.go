package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all kinds of types representable in drift MIR.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindString
	KindInt
	KindUint
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind  Kind
	Width Width // for numeric primitives
}

// MakeInt returns a signed integer descriptor with the given width.
func MakeInt(w Width) Type {
	return Type{Kind: KindInt, Width: w}
}

// MakeUint returns an unsigned integer descriptor with the given width.
func MakeUint(w Width) Type {
	return Type{Kind: KindUint, Width: w}
}

// MakeFloat returns a floating point descriptor with the given width.
func MakeFloat(w Width) Type {
	return Type{Kind: KindFloat, Width: w}
}
