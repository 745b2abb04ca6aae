package types

// Hierarchy tells types about classifiers and type parameters.
// The declaration layer implements it; queries may build descriptors lazily.
type Hierarchy interface {
	// Supertypes returns direct supertypes of cls expressed through cls's own parameters.
	Supertypes(cls ClassID) []TypeID
	// ClassParams returns declared type parameters of cls in order.
	ClassParams(cls ClassID) []ParamID
	Variance(p ParamID) Variance
	// Bounds returns declared upper bounds; empty means `Any?`.
	Bounds(p ParamID) []TypeID
}

// Namer is used only for rendering.
type Namer interface {
	ClassName(cls ClassID) string
	ParamName(p ParamID) string
}
