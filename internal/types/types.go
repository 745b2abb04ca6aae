package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

func (id TypeID) IsValid() bool { return id != NoTypeID }

// ClassID and ParamID are opaque ids of a classifier and a type parameter.
// Package types does not know where they come from (the declaration index hands them out).
type (
	ClassID uint32
	ParamID uint32
)

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindError is compatible with everything. Unresolved names produce it, and it never cascades errors.
	KindError
	KindNothing
	KindClass
	KindParam
	KindFn
	// KindFlexible is a platform type with unknown nullability (T!).
	KindFlexible
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindError:
		return "error"
	case KindNothing:
		return "nothing"
	case KindClass:
		return "class"
	case KindParam:
		return "param"
	case KindFn:
		return "fn"
	case KindFlexible:
		return "flexible"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Variance of a declared type parameter.
type Variance uint8

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

// Type is a compact descriptor. Sym is a ClassID or a ParamID depending on Kind,
// Payload is a slot in the interner side tables (class arguments, fn signature, flexible bounds).
type Type struct {
	Kind     Kind
	Sym      uint32
	Nullable bool
	Payload  uint32
}

// FnInfo stores metadata for function types.
type FnInfo struct {
	Receiver TypeID // NoTypeID for plain functions
	Params   []TypeID
	Result   TypeID
}

// FlexInfo holds the lower (not-null) and upper (nullable) bounds of a platform type.
type FlexInfo struct {
	Lower TypeID
	Upper TypeID
}
