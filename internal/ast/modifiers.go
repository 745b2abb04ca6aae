package ast

// Modifiers is a bit mask of declaration modifiers.
type Modifiers uint16

const (
	ModPrivate Modifiers = 1 << iota
	ModInternal
	ModPublic
	ModOpen
	ModAbstract
	ModInner
	ModOperator
	ModVararg
	ModReified
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

// Visibility describes who can see a declaration.
type Visibility uint8

const (
	VisPublic Visibility = iota
	VisInternal
	VisPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisPrivate:
		return "private"
	case VisInternal:
		return "internal"
	default:
		return "public"
	}
}

// Visibility derives visibility from the modifiers; public by default.
func (m Modifiers) Visibility() Visibility {
	switch {
	case m.Has(ModPrivate):
		return VisPrivate
	case m.Has(ModInternal):
		return VisInternal
	}
	return VisPublic
}

// Variance of a type parameter declaration.
type Variance uint8

const (
	Invariant     Variance = iota
	Covariant              // out
	Contravariant          // in
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "out"
	case Contravariant:
		return "in"
	}
	return ""
}
