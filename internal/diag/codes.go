package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004

	// Parser
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedParen      Code = 2002
	SynUnclosedBrace      Code = 2003
	SynUnclosedAngle      Code = 2004
	SynExpectIdentifier   Code = 2005
	SynExpectType         Code = 2006
	SynExpectExpression   Code = 2007
	SynExpectColon        Code = 2008
	SynModifierNotAllowed Code = 2009
	SynUnexpectedTopLevel Code = 2010
	SynExpectDeclaration  Code = 2011

	// Semantic: call resolution
	SemaInfo                     Code = 3000
	SemaUnresolvedReference      Code = 3001
	SemaWrongNumberOfTypeArgs    Code = 3002
	SemaTypeMismatch             Code = 3003
	SemaAmbiguousCall            Code = 3004
	SemaNoValueForParameter      Code = 3005
	SemaTooManyArguments         Code = 3006
	SemaCannotInferTypeParameter Code = 3007
	SemaRecursiveDependency      Code = 3008
	SemaNoneApplicable           Code = 3009
	SemaNamedArgumentNotFound    Code = 3010
	SemaArgumentPassedTwice      Code = 3011
	SemaMixingNamedPositional    Code = 3012
	SemaUpperBoundViolated       Code = 3013
	SemaInvisibleMember          Code = 3014
	SemaUnsafeCall               Code = 3015
	SemaDelegateAccessorMissing  Code = 3016
	SemaDeprecatedUsage          Code = 3017
	SemaReifiedTypeArgument      Code = 3018
	SemaNotAnAnnotationClass     Code = 3019
	SemaImplicitConversion       Code = 3020
	SemaNotCallable              Code = 3021
	SemaReturnTypeMismatch       Code = 3022
	SemaNoThisInContext          Code = 3023
	SemaDuplicateDeclaration     Code = 3024
	SemaUnresolvedImport         Code = 3025
	SemaMissingPropertyType      Code = 3026

	// Project / configuration
	ProjInfo           Code = 5000
	ProjConfigInvalid  Code = 5001
	ProjFileUnreadable Code = 5002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                  "Unknown error",
		LexInfo:                      "Lexical information",
		LexUnknownChar:               "Unknown character",
		LexUnterminatedString:        "Unterminated string literal",
		LexUnterminatedBlockComment:  "Unterminated block comment",
		LexBadNumber:                 "Invalid number literal",
		SynInfo:                      "Syntax information",
		SynUnexpectedToken:           "Unexpected token",
		SynUnclosedParen:             "Unclosed parenthesis",
		SynUnclosedBrace:             "Unclosed brace",
		SynUnclosedAngle:             "Unclosed angle bracket",
		SynExpectIdentifier:          "Expected identifier",
		SynExpectType:                "Expected type",
		SynExpectExpression:          "Expected expression",
		SynExpectColon:               "Expected ':'",
		SynModifierNotAllowed:        "Modifier not allowed here",
		SynUnexpectedTopLevel:        "Unexpected top-level construct",
		SynExpectDeclaration:         "Expected declaration",
		SemaInfo:                     "Semantic information",
		SemaUnresolvedReference:      "unresolved reference",
		SemaWrongNumberOfTypeArgs:    "wrong number of type arguments",
		SemaTypeMismatch:             "type mismatch",
		SemaAmbiguousCall:            "ambiguous call",
		SemaNoValueForParameter:      "no value passed for parameter",
		SemaTooManyArguments:         "too many arguments",
		SemaCannotInferTypeParameter: "cannot infer type parameter",
		SemaRecursiveDependency:      "recursive dependency",
		SemaNoneApplicable:           "none of the candidates is applicable",
		SemaNamedArgumentNotFound:    "no parameter with this name",
		SemaArgumentPassedTwice:      "argument already passed for this parameter",
		SemaMixingNamedPositional:    "positional argument after named argument",
		SemaUpperBoundViolated:       "type argument is not within its bounds",
		SemaInvisibleMember:          "declaration is not visible here",
		SemaUnsafeCall:               "unsafe call on a nullable receiver",
		SemaDelegateAccessorMissing:  "delegate has no suitable accessor",
		SemaDeprecatedUsage:          "usage of deprecated declaration",
		SemaReifiedTypeArgument:      "cannot use this type as a reified type argument",
		SemaNotAnAnnotationClass:     "not an annotation class",
		SemaImplicitConversion:       "argument converted implicitly",
		SemaNotCallable:              "expression is not callable",
		SemaReturnTypeMismatch:       "return type mismatch",
		SemaNoThisInContext:          "'this' is not defined in this context",
		SemaDuplicateDeclaration:     "conflicting declarations",
		SemaUnresolvedImport:         "unresolved import",
		SemaMissingPropertyType:      "property type cannot be determined",
		ProjInfo:                     "Project information",
		ProjConfigInvalid:            "invalid configuration",
		ProjFileUnreadable:           "cannot read source file",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
