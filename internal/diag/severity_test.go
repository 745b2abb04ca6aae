package diag_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/diag"
	"tern/internal/source"
)

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]diag.Severity{
		"info": diag.SevInfo, "": diag.SevInfo, "WARNING": diag.SevWarning,
		"warn": diag.SevWarning, " error ": diag.SevError, "err": diag.SevError,
	} {
		got, err := diag.ParseSeverity(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := diag.ParseSeverity("fatal")
	require.Error(t, err)
	require.Equal(t, "UNKNOWN", diag.Severity(9).String())
}

func TestBagAtLeast(t *testing.T) {
	bag := diag.NewBag(5)
	sp := source.Span{File: 1, Start: 0, End: 1}
	bag.Add(diag.New(diag.SevInfo, diag.SemaDeprecatedUsage, sp, "info"))
	bag.Add(diag.New(diag.SevWarning, diag.SemaDeprecatedUsage, sp, "warn"))
	bag.Add(diag.NewError(diag.SemaUnresolvedReference, sp, "err"))

	warn := bag.AtLeast(diag.SevWarning)
	require.Equal(t, 2, warn.Len())
	require.Equal(t, 5, warn.Cap())
	require.Equal(t, "warn", warn.Items()[0].Message)
	require.Equal(t, 1, bag.AtLeast(diag.SevError).Len())
	require.Equal(t, 3, bag.Len())

	require.Same(t, bag, bag.Limit(0))
	require.Same(t, bag, bag.Limit(3))
	two := bag.Limit(2)
	require.Equal(t, 2, two.Len())
	require.Equal(t, "err", bag.Items()[2].Message)
}

func TestDedupReporterCountsDuplicates(t *testing.T) {
	bag := diag.NewBag(0)
	r := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	sp := source.Span{File: 1, Start: 3, End: 4}
	r.Report(diag.SemaUnresolvedReference, diag.SevError, sp, "unresolved reference: x", nil)
	r.Report(diag.SemaUnresolvedReference, diag.SevWarning, sp, "unresolved reference: x", nil)
	r.Report(diag.SemaUnresolvedReference, diag.SevError, source.Span{File: 1, Start: 5, End: 6}, "unresolved reference: x", nil)

	require.Equal(t, 2, bag.Len())
	require.Equal(t, 1, r.Suppressed())

	var nilR *diag.DedupReporter
	nilR.Report(diag.SemaUnresolvedReference, diag.SevError, sp, "", nil)
	require.Zero(t, nilR.Suppressed())
}
