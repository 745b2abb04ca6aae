package fuzztests

import (
	"testing"

	"tern/internal/diag"
	"tern/internal/lexer"
	"tern/internal/source"
	"tern/internal/testkit"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.tn", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(64)
		toks := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		if err := testkit.CheckTokenInvariants(toks, file); err != nil {
			t.Fatalf("token invariants: %v\ninput: %q", err, truncateForLog(input, 200))
		}
	})
}
