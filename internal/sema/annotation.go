package sema

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/trace"
)

// AnnotationDesc is a resolved annotation: its class and the constructor call.
type AnnotationDesc struct {
	Class symbols.SymbolID
	Span  source.Span
	Call  *ResolvedCall
	// Message is the string argument of @Deprecated.
	Message string
}

type annotationSet struct {
	List  []*AnnotationDesc
	Diags []diag.Diagnostic
	Calls []*ResolvedCall
}

func (e *Engine) annotationSetOf(ctx context.Context, id symbols.SymbolID) *annotationSet {
	v, _ := e.annotations.Get(ctx, id, func(ctx context.Context) *annotationSet {
		return e.computeAnnotations(ctx, id)
	})
	return v
}

// annotationsOf returns the resolved annotations of a declaration. While the
// declaration resolves its own annotations (one refers back to it) the list is empty.
func (e *Engine) annotationsOf(ctx context.Context, id symbols.SymbolID) []*AnnotationDesc {
	if set := e.annotationSetOf(ctx, id); set != nil {
		return set.List
	}
	return nil
}

func (e *Engine) computeAnnotations(ctx context.Context, id symbols.SymbolID) *annotationSet {
	out := &annotationSet{}
	sym := e.sym(id)
	if sym == nil || sym.Kind == symbols.SymbolTypeParam || sym.CtorParam > 0 || !sym.Item.IsValid() {
		return out
	}
	item := e.Index.AST.Items.Get(sym.Item)
	if item == nil || len(item.Annotations) == 0 {
		return out
	}
	sp, ctx := trace.StartSpan(ctx, trace.ScopeNode, "descriptor.annotations")
	defer sp.End(e.Index.QualifiedName(id))

	rep := &collector{}
	c := &exprChecker{e: e, ctx: ctx, rep: rep, sink: &out.Calls}
	v := e.rootEnv(sym)
	for _, ann := range item.Annotations {
		if a := e.resolveAnnotation(c, v, ann); a != nil {
			out.List = append(out.List, a)
			e.checkers.runAnnotation(&AnnotationContext{Engine: e, Ctx: ctx, Target: id, Annotation: a}, rep)
		}
	}
	out.Diags = rep.diags
	return out
}

func (e *Engine) resolveAnnotation(c *exprChecker, v *env, ann ast.Annotation) *AnnotationDesc {
	var cls symbols.SymbolID
	for _, cand := range e.resolveClassifier(typeScope{scope: v.scope, file: v.file}, ann.Path) {
		if e.sym(cand).Kind == symbols.SymbolClass {
			cls = cand
			break
		}
	}
	if !cls.IsValid() {
		b := diag.ReportError(c.rep, diag.SemaUnresolvedReference, ann.Span,
			fmt.Sprintf("unresolved reference: %s", e.Index.PathString(ann.Path)))
		if hint := suggest(e.str(ann.Path[len(ann.Path)-1]), e.classifierNames(v.scope)); hint != "" {
			b.WithNote(ann.Span, fmt.Sprintf("did you mean '%s'?", hint))
		}
		b.Emit()
		// arguments are checked anyway
		r := &resolution{c: c, e: e, ctx: c.ctx, v: v, site: e.annotationSite(ann, symbols.NoSymbolID)}
		r.degradeArgs()
		return nil
	}
	a := &AnnotationDesc{Class: cls, Span: ann.Span}
	if !e.sym(cls).Has(symbols.SymbolFlagAnnotation) {
		return a
	}
	before := len(*c.sink)
	c.resolveCall(v, e.annotationSite(ann, cls))
	for _, rc := range (*c.sink)[before:] {
		if rc.Callee == cls && rc.Span == ann.Span {
			a.Call = rc
		}
	}
	if cls == e.builtin.Deprecated && len(ann.Args) > 0 {
		if lit, ok := e.Index.AST.Exprs.Lit(ann.Args[0].Value); ok && lit.Kind == ast.LitString {
			a.Message = unquote(lit.Text)
		}
	}
	return a
}

func (e *Engine) annotationSite(ann ast.Annotation, cls symbols.SymbolID) *callSite {
	site := &callSite{
		span:     ann.Span,
		nameSpan: ann.Span,
		kind:     callFunction,
		argsSpan: ann.Span,
		only:     cls,
	}
	if len(ann.Path) > 0 {
		site.name = ann.Path[len(ann.Path)-1]
	}
	for _, a := range ann.Args {
		site.args = append(site.args, callArg{name: a.Name, nameSpan: a.NameSpan, expr: a.Value, trailing: a.Trailing})
	}
	return site
}

func unquote(text string) string {
	if s, err := strconv.Unquote(text); err == nil {
		return s
	}
	return strings.Trim(text, `"`)
}
