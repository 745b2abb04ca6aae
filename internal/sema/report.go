package sema

import (
	"tern/internal/source"
	"tern/internal/types"
)

// CallRecord is a rendering-friendly view of a ResolvedCall for reports.
type CallRecord struct {
	File     string      `json:"file" yaml:"file" msgpack:"file"`
	Line     uint32      `json:"line" yaml:"line" msgpack:"line"`
	Col      uint32      `json:"col" yaml:"col" msgpack:"col"`
	Name     string      `json:"name" yaml:"name" msgpack:"name"`
	Callee   string      `json:"callee" yaml:"callee" msgpack:"callee"`
	Kind     string      `json:"kind" yaml:"kind" msgpack:"kind"`
	Status   string      `json:"status" yaml:"status" msgpack:"status"`
	TypeArgs []string    `json:"type_args,omitempty" yaml:"type_args,omitempty" msgpack:"type_args,omitempty"`
	Receiver string      `json:"receiver,omitempty" yaml:"receiver,omitempty" msgpack:"receiver,omitempty"`
	Result   string      `json:"result" yaml:"result" msgpack:"result"`
	Args     []ArgRecord `json:"args,omitempty" yaml:"args,omitempty" msgpack:"args,omitempty"`
	Safe     bool        `json:"safe,omitempty" yaml:"safe,omitempty" msgpack:"safe,omitempty"`
}

// ArgRecord shows how one parameter was bound.
type ArgRecord struct {
	Param   string `json:"param" yaml:"param" msgpack:"param"`
	Type    string `json:"type" yaml:"type" msgpack:"type"`
	Count   int    `json:"count" yaml:"count" msgpack:"count"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty" msgpack:"default,omitempty"`
	Vararg  bool   `json:"vararg,omitempty" yaml:"vararg,omitempty" msgpack:"vararg,omitempty"`
}

// Record converts rc into a CallRecord; fs may be nil, then positions are left out.
func (e *Engine) Record(fs *source.FileSet, rc *ResolvedCall) CallRecord {
	rec := CallRecord{
		Name:   rc.Name,
		Callee: "<local>",
		Kind:   rc.Kind.String(),
		Status: rc.Status.String(),
		Result: e.TypeString(rc.Result),
		Safe:   rc.Safe,
	}
	if fs != nil {
		start, _ := fs.Resolve(rc.Span)
		rec.File = fs.Get(rc.Span.File).Path
		rec.Line, rec.Col = start.Line, start.Col
	}
	if rc.Callee.IsValid() {
		rec.Callee = e.Index.QualifiedName(rc.Callee)
	}
	for _, t := range rc.TypeArgs {
		rec.TypeArgs = append(rec.TypeArgs, e.TypeString(t))
	}
	if rc.Receiver != types.NoTypeID {
		rec.Receiver = e.TypeString(rc.Receiver)
	}
	for _, b := range rc.Args {
		rec.Args = append(rec.Args, ArgRecord{
			Param:   b.Param,
			Type:    e.TypeString(b.Type),
			Count:   len(b.Args),
			Default: b.Default,
			Vararg:  b.Vararg,
		})
	}
	return rec
}

// Records converts a file result.
func (e *Engine) Records(fs *source.FileSet, res *FileResult) []CallRecord {
	out := make([]CallRecord, 0, len(res.Calls))
	for _, rc := range res.Calls {
		out = append(out, e.Record(fs, rc))
	}
	return out
}
