package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/parser"
	"tern/internal/source"
)

type parsed struct {
	b    *ast.Builder
	file *ast.File
	bag  *diag.Bag
}

func parse(t *testing.T, src string) parsed {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.tn", []byte(src))
	b := ast.NewBuilder(ast.Hints{}, nil)
	bag := diag.NewBag(32)
	res := parser.ParseFile(fs.Get(id), b, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	return parsed{b: b, file: b.Files.Get(res.File), bag: bag}
}

func parseOK(t *testing.T, src string) parsed {
	t.Helper()
	p := parse(t, src)
	require.Zero(t, p.bag.Len(), "diagnostics: %+v", p.bag.Items())
	return p
}

func (p parsed) name(id source.StringID) string {
	return p.b.Strings.MustLookup(id)
}

func (p parsed) item(i int) *ast.Item {
	return p.b.Items.Get(p.file.Items[i])
}

func TestHeaderAndImports(t *testing.T) {
	p := parseOK(t, "package a.b\nimport x.y.Z\nimport q.*\nfun f() = 1")
	require.Len(t, p.file.Package, 2)
	require.Equal(t, "b", p.name(p.file.Package[1]))
	require.Len(t, p.file.Imports, 2)
	require.False(t, p.file.Imports[0].Star)
	require.Equal(t, "Z", p.name(p.file.Imports[0].Path[2]))
	require.True(t, p.file.Imports[1].Star)
	require.Len(t, p.file.Imports[1].Path, 1)
}

func TestGenericExtensionFun(t *testing.T) {
	p := parseOK(t, "fun <T, R> List<T>.map(f: (T) -> R): List<R> = listOf()")
	it := p.item(0)
	require.Equal(t, ast.ItemFun, it.Kind)
	require.Equal(t, "map", p.name(it.Name))
	fn, ok := p.b.Items.Fun(p.file.Items[0])
	require.True(t, ok)
	require.Len(t, fn.TypeParams, 2)
	recv := p.b.Types.Get(fn.Receiver)
	require.Equal(t, "List", p.name(recv.Path[0]))
	require.Len(t, recv.Args, 1)
	param := p.b.Types.Get(fn.Params[0].Type)
	require.Equal(t, ast.TypeFunc, param.Kind)
	require.Len(t, param.Params, 1)
	require.True(t, fn.ExprBody.IsValid())
}

func TestDottedReceiverAndNullable(t *testing.T) {
	p := parseOK(t, "fun String?.orEmpty(): String = this\nfun a.B.ext() {}")
	fn, _ := p.b.Items.Fun(p.file.Items[0])
	require.True(t, p.b.Types.Get(fn.Receiver).Nullable)
	require.Equal(t, "orEmpty", p.name(p.item(0).Name))

	fn2, _ := p.b.Items.Fun(p.file.Items[1])
	recv := p.b.Types.Get(fn2.Receiver)
	require.Len(t, recv.Path, 2)
	require.Equal(t, "ext", p.name(p.item(1).Name))
	require.True(t, fn2.HasBlock)
}

func TestNullableReceiverAfterTypeArgs(t *testing.T) {
	p := parseOK(t, "fun Any?.hashCode(): Int = 0\nfun <T : Any> List<T>?.orEmpty(): List<T> = this\nval f: String?.(Int) -> Int = g")
	fn, _ := p.b.Items.Fun(p.file.Items[0])
	recv := p.b.Types.Get(fn.Receiver)
	require.True(t, recv.Nullable)
	require.Equal(t, "Any", p.name(recv.Path[0]))
	require.Equal(t, "hashCode", p.name(p.item(0).Name))

	fn2, _ := p.b.Items.Fun(p.file.Items[1])
	recv2 := p.b.Types.Get(fn2.Receiver)
	require.True(t, recv2.Nullable)
	require.Len(t, recv2.Args, 1)
	require.Equal(t, "orEmpty", p.name(p.item(1).Name))

	prop, _ := p.b.Items.Prop(p.file.Items[2])
	ft := p.b.Types.Get(prop.Type)
	require.Equal(t, ast.TypeFunc, ft.Kind)
	require.True(t, p.b.Types.Get(ft.Receiver).Nullable)
	require.Len(t, ft.Params, 1)
}

func TestClassWithCtorAndMembers(t *testing.T) {
	p := parseOK(t, `open class Box<out T : Any>(val value: T, n: Int = 0) : Base(), I {
	fun get(): T = value
	private val size: Int = n
}`)
	it := p.item(0)
	require.True(t, it.Mods.Has(ast.ModOpen))
	cls, ok := p.b.Items.Class(p.file.Items[0])
	require.True(t, ok)
	require.True(t, cls.HasCtor)
	require.Len(t, cls.CtorParams, 2)
	require.Equal(t, ast.ParamVal, cls.CtorParams[0].Prop)
	require.True(t, cls.CtorParams[1].Default.IsValid())
	require.Equal(t, ast.Covariant, cls.TypeParams[0].Variance)
	require.Len(t, cls.TypeParams[0].Bounds, 1)
	require.Len(t, cls.Supertypes, 2)
	require.Len(t, cls.Members, 2)
	require.Equal(t, ast.VisPrivate, p.b.Items.Get(cls.Members[1]).Mods.Visibility())
}

func TestAnnotationsAndDelegate(t *testing.T) {
	p := parseOK(t, `annotation class Deprecated(val message: String)
@Deprecated("old")
val x: Int by lazy { 1 }`)
	cls, _ := p.b.Items.Class(p.file.Items[0])
	require.Equal(t, ast.ClassAnnotation, cls.Kind)
	prop := p.item(1)
	require.Len(t, prop.Annotations, 1)
	require.Len(t, prop.Annotations[0].Args, 1)
	data, ok := p.b.Items.Prop(p.file.Items[1])
	require.True(t, ok)
	require.True(t, data.Delegate.IsValid())
	call, ok := p.b.Exprs.Call(data.Delegate)
	require.True(t, ok)
	require.Equal(t, "lazy", p.name(call.Name))
	require.Len(t, call.Args, 1)
	require.True(t, call.Args[0].Trailing)
}

func TestCallForms(t *testing.T) {
	p := parseOK(t, `fun main() {
	val a = foo<Int>(1, name = "x")
	b?.bar()
	(f)(2)
	xs.map { it }
	return
}`)
	fn, _ := p.b.Items.Fun(p.file.Items[0])
	require.Len(t, fn.Block, 5)

	local := p.b.Stmts.Get(fn.Block[0])
	require.Equal(t, ast.StmtLocal, local.Kind)
	call, ok := p.b.Exprs.Call(local.Expr)
	require.True(t, ok)
	require.Len(t, call.TypeArgs, 1)
	require.Len(t, call.Args, 2)
	require.Equal(t, "name", p.name(call.Args[1].Name))

	safe, ok := p.b.Exprs.Call(p.b.Stmts.Get(fn.Block[1]).Expr)
	require.True(t, ok)
	require.True(t, safe.Safe)
	require.True(t, safe.Receiver.IsValid())

	invoke, ok := p.b.Exprs.Call(p.b.Stmts.Get(fn.Block[2]).Expr)
	require.True(t, ok)
	require.True(t, invoke.Target.IsValid())
	require.False(t, invoke.Name.IsValid())

	ret := p.b.Stmts.Get(fn.Block[4])
	require.Equal(t, ast.StmtReturn, ret.Kind)
	require.False(t, ret.Expr.IsValid())
}

func TestLambdaParams(t *testing.T) {
	p := parseOK(t, "val f = { a, b: (Int) -> Int -> a }\nval g = { -> 1 }\nval h = { it }")
	lam := func(i int) *ast.ExprLambdaData {
		prop, _ := p.b.Items.Prop(p.file.Items[i])
		data, ok := p.b.Exprs.Lambda(prop.Init)
		require.True(t, ok)
		return data
	}
	f := lam(0)
	require.True(t, f.ExplicitParams)
	require.Len(t, f.Params, 2)
	require.Equal(t, ast.TypeFunc, p.b.Types.Get(f.Params[1].Type).Kind)
	require.True(t, lam(1).ExplicitParams)
	require.Empty(t, lam(1).Params)
	require.False(t, lam(2).ExplicitParams)
	require.Len(t, lam(2).Body, 1)
}

func TestRecoversAfterBadItem(t *testing.T) {
	p := parse(t, "fun (\nval ok = 1\n) garbage\nfun g() = 2")
	require.True(t, p.bag.HasErrors())
	var names []string
	for i := range p.file.Items {
		names = append(names, p.name(p.item(i).Name))
	}
	require.Contains(t, names, "ok")
	require.Contains(t, names, "g")
}

func TestUnclosedArgs(t *testing.T) {
	p := parse(t, "fun f() = g(1, 2")
	require.Equal(t, 1, p.bag.Count(diag.SynUnclosedParen))
}

func TestMaxErrorsStopsReporting(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("bad.tn", []byte("fun 1\nfun 2\nfun 3\nfun 4"))
	bag := diag.NewBag(0)
	res := parser.ParseFile(fs.Get(id), ast.NewBuilder(ast.Hints{}, nil), parser.Options{
		MaxErrors: 2,
		Reporter:  diag.BagReporter{Bag: bag},
	})
	require.Equal(t, 2, bag.Len())
	require.GreaterOrEqual(t, res.Errors, uint(4))
}
