package token

var keywords = map[string]Kind{
	"package":    KwPackage,
	"import":     KwImport,
	"class":      KwClass,
	"interface":  KwInterface,
	"annotation": KwAnnotation,
	"fun":        KwFun,
	"val":        KwVal,
	"var":        KwVar,
	"by":         KwBy,
	"return":     KwReturn,
	"this":       KwThis,
	"in":         KwIn,
	"out":        KwOut,
	"private":    KwPrivate,
	"internal":   KwInternal,
	"public":     KwPublic,
	"open":       KwOpen,
	"abstract":   KwAbstract,
	"inner":      KwInner,
	"operator":   KwOperator,
	"reified":    KwReified,
	"vararg":     KwVararg,
	"true":       BoolLit,
	"false":      BoolLit,
	"null":       NullLit,
}

// LookupKeyword returns the kind and true if s is a keyword.
// Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
