// Package token defines lexical token kinds and trivia for Tern sources.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Line comments, block comments and whitespace are leading Trivia and
//     never appear in the main token stream.
//   - Newlines are trivia too; the parser queries Token.NewlineBefore where
//     a line break ends an expression.
package token
