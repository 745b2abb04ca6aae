// Package prelude holds the builtin declarations of the language (package tern),
// implicitly imported by every file.
package prelude

import (
	_ "embed"
)

// Package is the package name of the prelude.
const Package = "tern"

// FileName is the virtual file name the prelude is loaded under.
const FileName = "<prelude>/tern.tn"

//go:embed prelude.tn
var source []byte

// Source returns a copy of the prelude text.
func Source() []byte {
	out := make([]byte, len(source))
	copy(out, source)
	return out
}
