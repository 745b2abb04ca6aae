package diagfmt

import (
	"tern/internal/diag"
	"tern/internal/source"
)

// LocationJSON is a location in a file
type LocationJSON struct {
	File      string `json:"file" yaml:"file" msgpack:"file"`
	StartByte uint32 `json:"start_byte" yaml:"start_byte" msgpack:"start_byte"`
	EndByte   uint32 `json:"end_byte" yaml:"end_byte" msgpack:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty" yaml:"start_line,omitempty" msgpack:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty" yaml:"start_col,omitempty" msgpack:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty" yaml:"end_line,omitempty" msgpack:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty" yaml:"end_col,omitempty" msgpack:"end_col,omitempty"`
}

// NoteJSON is an extra note
type NoteJSON struct {
	Message  string       `json:"message" yaml:"message" msgpack:"message"`
	Location LocationJSON `json:"location" yaml:"location" msgpack:"location"`
}

// DiagnosticJSON is a diagnostic in structured form
type DiagnosticJSON struct {
	Severity string       `json:"severity" yaml:"severity" msgpack:"severity"`
	Code     string       `json:"code" yaml:"code" msgpack:"code"`
	Message  string       `json:"message" yaml:"message" msgpack:"message"`
	Location LocationJSON `json:"location" yaml:"location" msgpack:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty" yaml:"notes,omitempty" msgpack:"notes,omitempty"`
}

// makeLocation builds a LocationJSON from a Span
func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{
		File:      formatPath(fs, fs.Get(span.File), pathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnostics builds the structured form of diagnostics without serializing it.
func BuildDiagnostics(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) []DiagnosticJSON {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for i := range maxItems {
		d := items[i]
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}
		diagnostics = append(diagnostics, dj)
	}
	return diagnostics
}
