// pkg/mtree/bookmark_test.go
package mtree

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/require"
)

func gridTree(t *testing.T) MTree[int] {
	t.Helper()
	re := require.New(t)
	tr := MustNew(cmp.Compare[int], []TreeInfo{
		{Name: "colA", OnDuplicate: Disallow, OnNullKey: Disallow},
		{Name: "colB", OnDuplicate: Disallow, OnNullKey: Disallow},
	}, WithCapacity[int](6))
	// insert out of order so the nested dictionaries split
	for _, a := range []int{7, 5, 3, 9, 1, 6, 4, 8, 2} {
		for _, b := range []int{30, 10, 20, 50, 40, 0, 15, 25, 35} {
			var beh Behaviour
			tr, beh = tr.Add([]int{a, b}, int64(a*100+b))
			re.Equal(Allow, beh)
		}
	}
	return tr
}

func TestPositionAtPrefix(t *testing.T) {
	re := require.New(t)
	tr := gridTree(t)

	got := collect(tr.PositionAt([]int{5}))
	want := []pair{}
	for _, b := range []int{0, 10, 15, 20, 25, 30, 35, 40, 50} {
		want = append(want, pair{[]int{5, b}, int64(500 + b)})
	}
	re.Equal(want, got)

	// the last cursor on the prefix ends the walk
	b := tr.PositionAt([]int{5})
	for i := 0; i < 8; i++ {
		b = b.Next()
	}
	re.Equal([]int{5, 50}, b.Key())
	re.Equal(8, b.Position())
	re.Nil(b.Next())
}

func TestPositionAtFullKey(t *testing.T) {
	re := require.New(t)
	tr := gridTree(t)

	got := collect(tr.PositionAt([]int{9, 25}))
	re.Equal([]pair{{[]int{9, 25}, 925}}, got)

	re.Nil(tr.PositionAt([]int{9, 26}))
	re.Nil(tr.PositionAt([]int{0}))
	re.Nil(tr.PositionAt([]int{10}))
	re.Len(collect(tr.PositionAt(nil)), 81)
}

func TestFirstWalksLexicographically(t *testing.T) {
	re := require.New(t)
	tr := gridTree(t)

	pairs := collect(tr.First())
	re.Len(pairs, tr.Count())
	for i := 1; i < len(pairs); i++ {
		prev, cur := pairs[i-1].key, pairs[i].key
		re.True(prev[0] < cur[0] || (prev[0] == cur[0] && prev[1] < cur[1]), "%v then %v", prev, cur)
	}

	i := 0
	for b := tr.First(); b != nil; b = b.Next() {
		re.Equal(i, b.Position())
		i++
	}
}

func TestBookmarkOverPartialRows(t *testing.T) {
	re := require.New(t)
	tr := MustNew(cmp.Compare[int], []TreeInfo{{Name: "a"}, {Name: "b", OnDuplicate: Allow}})
	tr, _ = tr.Add([]int{1, 1}, 30)
	tr, _ = tr.Add([]int{1, 1}, 10)
	tr, _ = tr.Add([]int{1, 1}, 20)
	tr, _ = tr.Add([]int{2, 0}, 5)
	tr, _ = tr.Add([]int{0, 9}, 1)

	re.Equal([]pair{
		{[]int{0, 9}, 1},
		{[]int{1, 1}, 10},
		{[]int{1, 1}, 20},
		{[]int{1, 1}, 30},
		{[]int{2, 0}, 5},
	}, collect(tr.First()))
	re.Equal([]int64{10, 20, 30}, tr.Rows([]int{1}))
}

func TestBookmarkSnapshot(t *testing.T) {
	re := require.New(t)
	tr := gridTree(t)
	b := tr.PositionAt([]int{3})
	tr = tr.Remove([]int{3})
	re.False(tr.Contains([]int{3}))
	re.Len(collect(b), 9)
}
