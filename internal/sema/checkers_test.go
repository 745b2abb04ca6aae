package sema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tern/internal/diag"
	"tern/internal/sema"
)

func TestDeprecationWarning(t *testing.T) {
	x := check(t, `
@Deprecated("use fresh()")
fun old() = 1
fun fresh() = 2
fun main() {
	old()
	fresh()
}
`)
	x.requireClean(t)
	require.Equal(t, 1, x.bag.Count(diag.SemaDeprecatedUsage), x.dump())
	var d diag.Diagnostic
	for _, it := range x.bag.Items() {
		if it.Code == diag.SemaDeprecatedUsage {
			d = it
		}
	}
	assert.Equal(t, diag.SevWarning, d.Severity)
	assert.Contains(t, d.Message, "'old' is deprecated")
	assert.Contains(t, d.Message, "use fresh()")
	require.Len(t, d.Notes, 1)

	// the annotation constructor call is recorded too
	rec := x.call(t, "Deprecated")
	assert.Equal(t, sema.CalleeConstructor.String(), rec.Kind)
}

func TestReifiedTypeArgument(t *testing.T) {
	x := check(t, `
fun <T> plain(): String = typeName<T>()
fun <reified T> kept(): String = typeName<T>()
val direct = typeName<Int>()
`)
	assert.Equal(t, 1, x.bag.Count(diag.SemaReifiedTypeArgument), x.dump())
}

func TestNotAnAnnotationClass(t *testing.T) {
	x := check(t, `
class Plain
@Plain
fun f() {}
`)
	assert.Equal(t, 1, x.bag.Count(diag.SemaNotAnAnnotationClass), x.dump())
}

func TestUnresolvedAnnotation(t *testing.T) {
	x := check(t, `
@Deprecate("typo")
fun f() {}
`)
	require.Equal(t, 1, x.bag.Count(diag.SemaUnresolvedReference), x.dump())
	d := x.bag.Items()[0]
	require.NotEmpty(t, d.Notes)
	assert.Contains(t, d.Notes[0].Msg, "Deprecated")
}

func TestDuplicateSignature(t *testing.T) {
	x := check(t, `
fun dup(x: Int): Int = x
fun dup(y: Int): Int = y
fun <T> gen(x: T) {}
fun <R> gen(y: R) {}
fun fine(x: Int) {}
fun fine(x: Long) {}
`)
	assert.Equal(t, 2, x.bag.Count(diag.SemaDuplicateDeclaration), x.dump())
}

func TestCheckersRegistry(t *testing.T) {
	_, err := sema.CheckersFor([]string{"deprecation", "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sema.ErrUnknownChecker))

	c := sema.NewCheckers()
	require.NoError(t, c.Register("mine", sema.CallCheckerFunc(func(*sema.CallContext, diag.Reporter) {})))
	assert.ErrorIs(t, c.Register("mine", sema.CallCheckerFunc(func(*sema.CallContext, diag.Reporter) {})), sema.ErrDuplicateName)
	assert.ErrorIs(t, c.Register("other", struct{}{}), sema.ErrNoCapability)
	assert.Equal(t, []string{"mine"}, c.Names())

	assert.Equal(t, []string{
		"annotation-class", "deprecation", "duplicate-signature", "reified", "unsafe-call",
	}, sema.BuiltinCheckerNames())
	assert.Equal(t, sema.BuiltinCheckerNames(), sema.DefaultCheckers().Names())
}

func TestEmptyRegistrySkipsChecks(t *testing.T) {
	x := checkFiles(t, sema.Options{Checkers: sema.NewCheckers()}, srcFile{name: "main.tn", text: `package app
@Deprecated("gone")
fun old() = 1
fun unsafe(s: String?) = s.get(0)
val v = old()
`})
	assert.Zero(t, x.bag.Len(), x.dump())
}

func TestCustomCheckerSeesEveryCall(t *testing.T) {
	var names []string
	var decls int
	c := sema.NewCheckers()
	require.NoError(t, c.Register("spy", struct {
		sema.CallCheckerFunc
		sema.DeclarationCheckerFunc
	}{
		func(cc *sema.CallContext, _ diag.Reporter) { names = append(names, cc.Call.Name) },
		func(*sema.DeclarationContext, diag.Reporter) { decls++ },
	}))
	x := checkFiles(t, sema.Options{Checkers: c}, srcFile{name: "main.tn", text: `package app
fun f(x: Int) = x
fun main() { f(1) }
`})
	x.requireClean(t)
	assert.Equal(t, []string{"f"}, names)
	assert.Equal(t, 2, decls)
}

func TestCallContextOwner(t *testing.T) {
	var owners []string
	c := sema.NewCheckers()
	require.NoError(t, c.Register("owner", sema.CallCheckerFunc(func(cc *sema.CallContext, _ diag.Reporter) {
		if cc.Owner.IsValid() {
			owners = append(owners, cc.Engine.Index.Name(cc.Owner))
		}
	})))
	x := checkFiles(t, sema.Options{Checkers: c}, srcFile{name: "main.tn", text: `package app
fun top() = 1
class Host {
	fun run() = top()
}
`})
	x.requireClean(t)
	assert.Equal(t, []string{"Host"}, owners)
}
