// pkg/shareable/dict_test.go
package shareable

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// collect extracts every entry of d in cursor order.
func collect[K, V any](d Dict[K, V]) []Slot[K, V] {
	var out []Slot[K, V]
	for b := d.First(); b != nil; b = b.Next() {
		out = append(out, b.Slot())
	}
	return out
}

func TestDictExampleScenario(t *testing.T) {
	re := require.New(t)
	d := New[int, string]().Add(3, "c").Add(1, "a").Add(2, "b")
	re.Equal([]Slot[int, string]{{1, "a"}, {2, "b"}, {3, "c"}}, collect(d))

	d = d.Remove(2)
	re.Equal([]Slot[int, string]{{1, "a"}, {3, "c"}}, collect(d))
	re.Equal(2, d.Count())
}

func TestDictEmpty(t *testing.T) {
	re := require.New(t)
	d := New[int, int]()
	re.Equal(0, d.Count())
	re.Equal(0, d.Height())
	re.Nil(d.First())
	re.Nil(d.Seek(10))
	re.False(d.Contains(1))
	v, ok := d.Lookup(1)
	re.False(ok)
	re.Zero(v)
	re.NoError(d.Verify())
	re.True(d.Same(d.Remove(1)))

	var zero Dict[string, int]
	re.Equal(0, zero.Count())
	re.Nil(zero.First())
	re.False(zero.Contains("a"))
	re.Equal(DefaultCapacity, zero.Capacity())
	re.Panics(func() { zero.Add("a", 1) })
}

func TestDictEmptyKeepsOrdering(t *testing.T) {
	re := require.New(t)
	d := NewFunc[int, int](func(a, b int) int { return b - a }).Add(1, 1).Add(2, 2)
	e := d.Empty().Add(1, 1).Add(3, 3).Add(2, 2)
	re.Equal([]int{3, 2, 1}, e.Keys())
}

func TestDictInvalidCapacity(t *testing.T) {
	re := require.New(t)
	for _, n := range []int{-2, 0, 4, 7, 9} {
		n := n
		re.Panics(func() { New[int, int](WithCapacity(n)) }, "capacity %d", n)
	}
	re.NotPanics(func() { New[int, int](WithCapacity(MinCapacity)) })
	re.Panics(func() { NewFunc[int, int](nil) })
}

func TestDictAddLookup(t *testing.T) {
	re := require.New(t)
	d := New[int, string](WithCapacity(6))
	for _, k := range rand.New(rand.NewSource(1)).Perm(500) {
		d = d.Add(k, fmt.Sprint(k))
		v, ok := d.Lookup(k)
		re.True(ok)
		re.Equal(fmt.Sprint(k), v)
	}
	re.Equal(500, d.Count())
	re.NoError(d.Verify())

	// updating replaces the value without changing the count
	d2 := d.Add(42, "answer")
	re.Equal(500, d2.Count())
	v, _ := d2.Lookup(42)
	re.Equal("answer", v)
	v, _ = d.Lookup(42)
	re.Equal("42", v)
	re.NoError(d2.Verify())
}

func TestDictSortedTraversal(t *testing.T) {
	re := require.New(t)
	r := rand.New(rand.NewSource(2))
	for _, capacity := range []int{6, 8, 16} {
		d := New[int, int](WithCapacity(capacity))
		want := map[int]bool{}
		for i := 0; i < 2000; i++ {
			k := r.Intn(1000)
			d = d.Add(k, i)
			want[k] = true
		}

		keys := d.Keys()
		re.Len(keys, len(want))
		re.True(sort.IntsAreSorted(keys))
		for i := 1; i < len(keys); i++ {
			re.Less(keys[i-1], keys[i])
		}
		re.NoError(d.Verify(), "capacity %d", capacity)
	}
}

func TestDictRemove(t *testing.T) {
	re := require.New(t)
	r := rand.New(rand.NewSource(3))
	d := New[int, int](WithCapacity(6))
	for _, k := range r.Perm(600) {
		d = d.Add(k, k)
	}

	for i, k := range r.Perm(600) {
		before := d.Count()
		d = d.Remove(k)
		re.False(d.Contains(k))
		re.Equal(before-1, d.Count())
		if i%25 == 0 {
			re.NoError(d.Verify(), "after %d removals", i+1)
		}
	}
	re.Equal(0, d.Count())
	re.Nil(d.First())
}

func TestDictRemoveAbsent(t *testing.T) {
	re := require.New(t)
	d := New[int, int]()
	for i := 0; i < 100; i += 2 {
		d = d.Add(i, i)
	}
	for i := 1; i < 100; i += 2 {
		re.True(d.Same(d.Remove(i)))
	}
	re.True(d.Same(d.Remove(-1)))
	re.True(d.Same(d.Remove(1000)))
}

func TestDictBalanceUnderChurn(t *testing.T) {
	re := require.New(t)
	r := rand.New(rand.NewSource(4))
	for _, capacity := range []int{6, 8, 10} {
		d := New[int, int](WithCapacity(capacity))
		live := map[int]bool{}
		for i := 0; i < 5000; i++ {
			k := r.Intn(400)
			if r.Intn(3) == 0 {
				d = d.Remove(k)
				delete(live, k)
			} else {
				d = d.Add(k, i)
				live[k] = true
			}
			if i%50 == 0 {
				re.NoError(d.Verify(), "capacity %d step %d", capacity, i)
			}
		}
		re.NoError(d.Verify())
		re.Equal(len(live), d.Count())
		for k := range live {
			re.True(d.Contains(k))
		}
	}
}

func TestDictShrinksHeight(t *testing.T) {
	re := require.New(t)
	d := New[int, int](WithCapacity(6))
	for i := 0; i < 1000; i++ {
		d = d.Add(i, i)
	}
	tall := d.Height()
	re.Greater(tall, 2)

	for i := 0; i < 995; i++ {
		d = d.Remove(i)
	}
	re.NoError(d.Verify())
	re.Equal(1, d.Height())
	re.Equal([]int{995, 996, 997, 998, 999}, d.Keys())
}

func TestDictSnapshotIsolation(t *testing.T) {
	re := require.New(t)
	d1 := New[int, int](WithCapacity(6))
	for i := 0; i < 200; i++ {
		d1 = d1.Add(i*2, i)
	}
	before := collect(d1)

	d2 := d1
	for i := 0; i < 200; i++ {
		d2 = d2.Add(i*2+1, -i)
		d2 = d2.Remove(i * 2)
	}

	re.Equal(before, collect(d1))
	re.NoError(d1.Verify())
	re.NoError(d2.Verify())
	re.Equal(200, d2.Count())
	for i := 0; i < 200; i++ {
		re.True(d1.Contains(i*2))
		re.False(d2.Contains(i*2))
	}
}

func TestDictAll(t *testing.T) {
	re := require.New(t)
	d := New[string, int]()
	for i, s := range []string{"pear", "apple", "fig", "kiwi", "banana"} {
		d = d.Add(s, i)
	}

	var keys []string
	for k := range d.All() {
		keys = append(keys, k)
		if k == "fig" {
			break
		}
	}
	re.Equal([]string{"apple", "banana", "fig"}, keys)
}

func TestDictStatsAndWalk(t *testing.T) {
	re := require.New(t)
	d := New[int, int](WithCapacity(6))
	for i := 0; i < 100; i++ {
		d = d.Add(i, i)
	}
	s := d.Stats()
	re.Equal(100, s.Count)
	re.Equal(d.Height(), s.Height)
	re.Greater(s.Leaves, 100/6)
	re.Greater(s.Inners, 0)

	var leafKeys []int
	d.Walk(func(level int, leaf bool, keys []int) bool {
		if leaf {
			re.Equal(s.Height-1, level)
			leafKeys = append(leafKeys, keys...)
		}
		return true
	})
	re.Equal(d.Keys(), leafKeys)

	visited := 0
	d.Walk(func(level int, leaf bool, keys []int) bool {
		visited++
		return false
	})
	re.Equal(1, visited)
}
