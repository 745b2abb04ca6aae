package diag

import "tern/internal/source"

// Reporter receives diagnostics from the parser, the index and the resolver.
// BagReporter stores them in a Bag and DedupReporter drops repeats. NopReporter
// is for places where the result matters but errors were reported elsewhere.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// send is the single place where a Diagnostic is unpacked into a Report call.
func send(r Reporter, d Diagnostic) {
	r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
}

// ReportBuilder collects notes for one diagnostic; nothing reaches the
// reporter until Emit.
type ReportBuilder struct {
	to   Reporter
	d    Diagnostic
	sent bool
}

// NewReportBuilder starts a diagnostic for r.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(sev, code, primary, msg)}
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

func ReportInfo(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, primary, msg)
}

// WithNote attaches a secondary location, e.g. a candidate declaration.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b != nil {
		b.d.Notes = append(b.d.Notes, Note{Span: sp, Msg: msg})
	}
	return b
}

// Emit reports the diagnostic; repeated calls are ignored.
func (b *ReportBuilder) Emit() {
	if b == nil || b.sent {
		return
	}
	b.sent = true
	if b.to != nil {
		send(b.to, b.d)
	}
}

// Diagnostic returns what Emit would report.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.d
}

// BagReporter writes to a Bag; a nil Bag silently drops.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r.Bag != nil {
		r.Bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes})
	}
}

type NopReporter struct{}

func (NopReporter) Report(Code, Severity, source.Span, string, []Note) {}

// Replay moves deferred diagnostics (say, from a failed
// candidate) to r, keeping their order.
func Replay(r Reporter, diags []Diagnostic) {
	if r == nil {
		return
	}
	for _, d := range diags {
		send(r, d)
	}
}
