package source

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternIdentifiers(t *testing.T) {
	in := NewInterner()
	require.Equal(t, 1, in.Len())
	require.Equal(t, NoStringID, in.Intern(""))

	plus := in.Intern("plus")
	listOf := in.InternBytes([]byte("listOf"))
	require.True(t, plus.IsValid())
	require.NotEqual(t, plus, listOf)
	require.Equal(t, plus, in.Intern("plus"))
	require.Equal(t, "listOf", in.MustLookup(listOf))

	id, ok := in.Find("listOf")
	require.True(t, ok)
	require.Equal(t, listOf, id)
	_, ok = in.Find("mapNotNull")
	require.False(t, ok)
	require.Equal(t, 3, in.Len())

	require.True(t, in.Has(listOf))
	require.False(t, in.Has(StringID(99)))
	_, ok = in.Lookup(StringID(99))
	require.False(t, ok)
	require.Panics(t, func() { in.MustLookup(StringID(99)) })

	snap := in.Snapshot()
	require.Equal(t, []string{"", "plus", "listOf"}, snap)
	snap[1] = "mutated"
	require.Equal(t, "plus", in.MustLookup(plus))
}

func TestInternNormalizesNFC(t *testing.T) {
	in := NewInterner()
	composed := in.Intern("café")
	decomposed := in.Intern("café")
	require.Equal(t, composed, decomposed)
	id, ok := in.Find("café")
	require.True(t, ok)
	require.Equal(t, composed, id)
}

// Call resolution interns names from several goroutines at once.
func TestInternConcurrent(t *testing.T) {
	in := NewInterner()
	const workers, names = 8, 200
	ids := make([][]StringID, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[w] = make([]StringID, names)
			for n := range names {
				ids[w][n] = in.Intern("fn" + strconv.Itoa(n))
				_ = in.Snapshot()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, names+1, in.Len())
	for w := 1; w < workers; w++ {
		require.Equal(t, ids[0], ids[w])
	}
	for n, id := range ids[0] {
		require.Equal(t, "fn"+strconv.Itoa(n), in.MustLookup(id))
	}
}
