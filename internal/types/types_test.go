package types

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeHierarchy declares classes by hand for subtyping checks.
type fakeHierarchy struct {
	supers    map[ClassID][]TypeID
	params    map[ClassID][]ParamID
	variances map[ParamID]Variance
	bounds    map[ParamID][]TypeID
	classes   map[ClassID]string
	pnames    map[ParamID]string
}

func (h *fakeHierarchy) Supertypes(c ClassID) []TypeID   { return h.supers[c] }
func (h *fakeHierarchy) ClassParams(c ClassID) []ParamID { return h.params[c] }
func (h *fakeHierarchy) Variance(p ParamID) Variance     { return h.variances[p] }
func (h *fakeHierarchy) Bounds(p ParamID) []TypeID       { return h.bounds[p] }
func (h *fakeHierarchy) ClassName(c ClassID) string      { return h.classes[c] }
func (h *fakeHierarchy) ParamName(p ParamID) string      { return h.pnames[p] }

const (
	clsAny ClassID = iota + 1
	clsInt
	clsLong
	clsString
	clsList
	clsMutList
	clsComparable
	clsSink
)

const (
	pListE ParamID = iota + 100
	pMutE
	pSinkT
	pFunT
)

type fixture struct {
	in  *Interner
	c   *Checker
	h   *fakeHierarchy
	any TypeID
	i   TypeID
	l   TypeID
	s   TypeID
}

func newFixture() *fixture {
	in := NewInterner()
	h := &fakeHierarchy{
		supers:    map[ClassID][]TypeID{},
		params:    map[ClassID][]ParamID{clsList: {pListE}, clsMutList: {pMutE}, clsSink: {pSinkT}, clsComparable: {}},
		variances: map[ParamID]Variance{pListE: Covariant, pSinkT: Contravariant},
		bounds:    map[ParamID][]TypeID{},
		classes: map[ClassID]string{clsAny: "Any", clsInt: "Int", clsLong: "Long", clsString: "String",
			clsList: "List", clsMutList: "MutableList", clsComparable: "Comparable", clsSink: "Sink"},
		pnames: map[ParamID]string{pListE: "E", pMutE: "E", pSinkT: "T", pFunT: "T"},
	}
	cmp := in.Class(clsComparable, nil, false)
	h.supers[clsInt] = []TypeID{cmp}
	h.supers[clsString] = []TypeID{cmp}
	h.supers[clsMutList] = []TypeID{in.Class(clsList, []TypeID{in.Param(pMutE, false)}, false)}
	c := &Checker{In: in, H: h, Any: clsAny, Widening: map[ClassID][]ClassID{clsInt: {clsLong}}}
	return &fixture{
		in: in, c: c, h: h,
		any: in.Class(clsAny, nil, false),
		i:   in.Class(clsInt, nil, false),
		l:   in.Class(clsLong, nil, false),
		s:   in.Class(clsString, nil, false),
	}
}

func (f *fixture) list(e TypeID) TypeID    { return f.in.Class(clsList, []TypeID{e}, false) }
func (f *fixture) mutList(e TypeID) TypeID { return f.in.Class(clsMutList, []TypeID{e}, false) }

func TestInternerDeduplicates(t *testing.T) {
	f := newFixture()
	require.Equal(t, f.list(f.i), f.list(f.i))
	require.NotEqual(t, f.list(f.i), f.list(f.s))
	require.Equal(t, f.in.Fn(NoTypeID, []TypeID{f.i}, f.s, false), f.in.Fn(NoTypeID, []TypeID{f.i}, f.s, false))
	require.NotEqual(t, f.in.Fn(f.i, nil, f.s, false), f.in.Fn(NoTypeID, []TypeID{f.i}, f.s, false))
	require.Equal(t, f.in.Flexible(f.s), f.in.Flexible(f.in.WithNullable(f.s, true)))
}

func TestInternerConcurrentUse(t *testing.T) {
	f := newFixture()
	var wg sync.WaitGroup
	ids := make([]TypeID, 16)
	for n := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[n] = f.list(f.mutList(f.in.WithNullable(f.i, true)))
		}()
	}
	wg.Wait()
	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
}

func TestSubtypeBasics(t *testing.T) {
	f := newFixture()
	intN := f.in.WithNullable(f.i, true)
	require.True(t, f.c.IsSubtype(f.i, f.any))
	require.True(t, f.c.IsSubtype(f.i, intN))
	require.False(t, f.c.IsSubtype(intN, f.i))
	require.False(t, f.c.IsSubtype(intN, f.any))
	require.False(t, f.c.IsSubtype(f.i, f.s))
	require.True(t, f.c.IsSubtype(f.in.Builtins().Nothing, f.s))
	require.True(t, f.c.IsSubtype(f.in.Builtins().NullableNothing, intN))
	require.False(t, f.c.IsSubtype(f.in.Builtins().NullableNothing, f.i))
}

func TestErrorTypeIsCompatibleBothWays(t *testing.T) {
	f := newFixture()
	errT := f.in.Builtins().Error
	require.True(t, f.c.IsSubtype(errT, f.s))
	require.True(t, f.c.IsSubtype(f.s, errT))
	require.True(t, f.c.IsSubtype(f.list(errT), f.list(f.i)))
}

func TestFlexibleIsPermissive(t *testing.T) {
	f := newFixture()
	flex := f.in.Flexible(f.s)
	require.True(t, f.c.IsSubtype(flex, f.s))
	require.True(t, f.c.IsSubtype(flex, f.in.WithNullable(f.s, true)))
	require.True(t, f.c.IsSubtype(f.in.WithNullable(f.s, true), flex))
	require.Equal(t, "String!", f.in.Format(flex, f.h))
}

func TestDeclarationSiteVariance(t *testing.T) {
	f := newFixture()
	// List<out E>
	require.True(t, f.c.IsSubtype(f.list(f.i), f.list(f.any)))
	require.False(t, f.c.IsSubtype(f.list(f.any), f.list(f.i)))
	// MutableList<E> is invariant
	require.False(t, f.c.IsSubtype(f.mutList(f.i), f.mutList(f.any)))
	require.True(t, f.c.IsSubtype(f.mutList(f.i), f.list(f.any)))
	// Sink<in T>
	sinkAny := f.in.Class(clsSink, []TypeID{f.any}, false)
	sinkInt := f.in.Class(clsSink, []TypeID{f.i}, false)
	require.True(t, f.c.IsSubtype(sinkAny, sinkInt))
	require.False(t, f.c.IsSubtype(sinkInt, sinkAny))
}

func TestFunctionTypes(t *testing.T) {
	f := newFixture()
	anyToInt := f.in.Fn(NoTypeID, []TypeID{f.any}, f.i, false)
	intToAny := f.in.Fn(NoTypeID, []TypeID{f.i}, f.any, false)
	require.True(t, f.c.IsSubtype(anyToInt, intToAny))
	require.False(t, f.c.IsSubtype(intToAny, anyToInt))
	withRecv := f.in.Fn(f.i, nil, f.any, false)
	require.True(t, f.c.IsSubtype(withRecv, intToAny))
	require.True(t, f.c.IsSubtype(anyToInt, f.any))
	require.Equal(t, "Int.() -> Any", f.in.Format(withRecv, f.h))
}

func TestTypeParamBounds(t *testing.T) {
	f := newFixture()
	tp := f.in.Param(pFunT, false)
	require.False(t, f.c.IsSubtype(tp, f.any), "implicit bound is Any?")
	require.True(t, f.c.IsSubtype(tp, f.in.WithNullable(f.any, true)))
	f.h.bounds[pFunT] = []TypeID{f.in.Class(clsComparable, nil, false)}
	require.True(t, f.c.IsSubtype(tp, f.any))
	require.True(t, f.c.IsSubtype(tp, f.in.Class(clsComparable, nil, false)))
	require.False(t, f.c.IsSubtype(f.i, tp))
}

func TestSubstitute(t *testing.T) {
	f := newFixture()
	tp := f.in.Param(pFunT, false)
	tpN := f.in.Param(pFunT, true)
	s := Subst{pFunT: f.i}
	require.Equal(t, f.list(f.i), f.in.Substitute(f.list(tp), s))
	require.Equal(t, f.in.WithNullable(f.i, true), f.in.Substitute(tpN, s))
	fn := f.in.Fn(tp, []TypeID{tp}, f.list(tp), false)
	got := f.in.Substitute(fn, s)
	require.Equal(t, "Int.(Int) -> List<Int>", f.in.Format(got, f.h))
	require.True(t, f.in.Mentions(fn, func(p ParamID) bool { return p == pFunT }))
	require.False(t, f.in.Mentions(got, func(ParamID) bool { return true }))
}

func TestMemberSubstThroughSupertype(t *testing.T) {
	f := newFixture()
	s := f.c.MemberSubst(f.mutList(f.s), clsList)
	require.Equal(t, f.s, s[pListE])
}

func TestCommonSupertype(t *testing.T) {
	f := newFixture()
	nothingN := f.in.Builtins().NullableNothing
	require.Equal(t, f.i, f.c.CommonSupertype([]TypeID{f.i, f.i}))
	require.Equal(t, f.in.WithNullable(f.i, true), f.c.CommonSupertype([]TypeID{f.i, nothingN}))
	require.Equal(t, "Comparable", f.in.Format(f.c.CommonSupertype([]TypeID{f.i, f.s}), f.h))
	require.Equal(t, f.any, f.c.CommonSupertype([]TypeID{f.i, f.list(f.i)}))
	require.Equal(t, f.list(f.any), f.c.CommonSupertype([]TypeID{f.list(f.i), f.list(f.any)}))
}

func TestConvertible(t *testing.T) {
	f := newFixture()
	require.True(t, f.c.Convertible(f.i, f.l))
	require.False(t, f.c.Convertible(f.l, f.i))
	require.False(t, f.c.Convertible(f.in.WithNullable(f.i, true), f.l))
}

func TestFormat(t *testing.T) {
	f := newFixture()
	cases := map[TypeID]string{
		f.in.WithNullable(f.list(f.i), true):               "List<Int>?",
		f.in.Fn(NoTypeID, []TypeID{f.i, f.s}, f.any, true): "((Int, String) -> Any)?",
		f.in.Builtins().Error:                              "<error>",
		f.in.Builtins().NullableNothing:                    "Nothing?",
		f.in.Param(pFunT, true):                            "T?",
	}
	for id, want := range cases {
		require.Equal(t, want, f.in.Format(id, f.h), fmt.Sprintf("type %d", id))
	}
}
