package source

import (
	"cmp"
	"fmt"
)

// Span is the half-open byte range [Start, End) of File.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Empty() bool { return s.Start == s.End }

func (s Span) Len() uint32 { return s.End - s.Start }

// String is "file:start-end"; for dumps only, diagnostics go through FileSet.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover extends s to other; spans of different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File == other.File {
		s.Start, s.End = min(s.Start, other.Start), max(s.End, other.End)
	}
	return s
}

// Contains: other lies entirely inside s.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}

// Compare orders by file, then start, then end.
func (s Span) Compare(other Span) int {
	return cmp.Or(
		cmp.Compare(s.File, other.File),
		cmp.Compare(s.Start, other.Start),
		cmp.Compare(s.End, other.End),
	)
}

func (s Span) Less(other Span) bool { return s.Compare(other) < 0 }
