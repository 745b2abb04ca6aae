package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident

	KwPackage    // package
	KwImport     // import
	KwClass      // class
	KwInterface  // interface
	KwAnnotation // annotation
	KwFun        // fun
	KwVal        // val
	KwVar        // var
	KwBy         // by
	KwReturn     // return
	KwThis       // this
	KwIn         // in
	KwOut        // out

	// modifiers
	KwPrivate  // private
	KwInternal // internal
	KwPublic   // public
	KwOpen     // open
	KwAbstract // abstract
	KwInner    // inner
	KwOperator // operator
	KwReified  // reified
	KwVararg   // vararg

	IntLit    // 1
	LongLit   // 1L
	FloatLit  // 1.5
	StringLit // "s"
	BoolLit   // true / false
	NullLit   // null

	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	Lt        // <
	Gt        // >
	Comma     // ,
	Dot       // .
	SafeDot   // ?.
	Colon     // :
	Semicolon // ;
	Question  // ?
	Bang      // !
	Arrow     // ->
	Assign    // =
	At        // @
	Star      // *
)

var kindNames = [...]string{
	Invalid:      "invalid",
	EOF:          "EOF",
	Ident:        "identifier",
	KwPackage:    "package",
	KwImport:     "import",
	KwClass:      "class",
	KwInterface:  "interface",
	KwAnnotation: "annotation",
	KwFun:        "fun",
	KwVal:        "val",
	KwVar:        "var",
	KwBy:         "by",
	KwReturn:     "return",
	KwThis:       "this",
	KwIn:         "in",
	KwOut:        "out",
	KwPrivate:    "private",
	KwInternal:   "internal",
	KwPublic:     "public",
	KwOpen:       "open",
	KwAbstract:   "abstract",
	KwInner:      "inner",
	KwOperator:   "operator",
	KwReified:    "reified",
	KwVararg:     "vararg",
	IntLit:       "int literal",
	LongLit:      "long literal",
	FloatLit:     "float literal",
	StringLit:    "string literal",
	BoolLit:      "boolean literal",
	NullLit:      "null",
	LParen:       "(",
	RParen:       ")",
	LBrace:       "{",
	RBrace:       "}",
	Lt:           "<",
	Gt:           ">",
	Comma:        ",",
	Dot:          ".",
	SafeDot:      "?.",
	Colon:        ":",
	Semicolon:    ";",
	Question:     "?",
	Bang:         "!",
	Arrow:        "->",
	Assign:       "=",
	At:           "@",
	Star:         "*",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsModifier reports whether k is a declaration modifier keyword.
func (k Kind) IsModifier() bool {
	return k >= KwPrivate && k <= KwVararg
}
