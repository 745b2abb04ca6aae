package fuzztests

import (
	"context"
	"testing"
	"time"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/driver"
	"tern/internal/parser"
	"tern/internal/source"
	"tern/internal/testkit"
)

// checkTimeout is the maximum time allowed for one input. Longer runs point
// at an infinite loop in recovery or resolution.
const checkTimeout = 5 * time.Second

func FuzzParserBuildsAST(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.tn", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(128)
		builder := ast.NewBuilder(ast.Hints{}, nil)
		res := parser.ParseFile(file, builder, parser.Options{
			Reporter:  diag.BagReporter{Bag: bag},
			MaxErrors: 128,
		})
		// invariants are checked for valid input only
		if bag.HasErrors() {
			return
		}
		if err := testkit.CheckSpanInvariants(builder, res.File, file); err != nil {
			t.Fatalf("span invariants: %v\ninput: %q", err, truncateForLog(input, 200))
		}
	})
}

// FuzzCheckNoHang runs the whole pipeline: resolution must terminate on any
// input, including recursive and ill-typed declarations.
func FuzzCheckNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)

		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			_, err := driver.CheckSources(ctx, []driver.Source{{Path: "fuzz.tn", Content: input}}, driver.Options{Jobs: 1})
			done <- err
		}()

		select {
		case err := <-done:
			if err != nil && ctx.Err() == nil {
				t.Fatalf("check failed: %v", err)
			}
		case <-ctx.Done():
			t.Fatalf("check hang detected: took longer than %v\ninput (%d bytes): %q",
				checkTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
