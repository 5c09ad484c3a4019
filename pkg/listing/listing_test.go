package listing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	id    int64
	at    time.Time
	flag  bool
	owner int64
}

func entries(n int) []entry {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]entry, n)
	for i := 0; i < n; i++ {
		out[i] = entry{id: int64(i + 1), at: base.Add(time.Duration(i) * time.Minute), flag: i%2 == 0, owner: int64(i % 3)}
	}
	return out
}

func fetcherOf(items []entry) SliceFetcher[entry] {
	return SliceFetcher[entry]{
		Items:     func() []entry { return items },
		ID:        func(e entry) int64 { return e.id },
		CreatedAt: func(e entry) time.Time { return e.at },
	}
}

func entryID(e entry) int64 { return e.id }

func ids(items []entry) []int64 {
	out := make([]int64, len(items))
	for i, e := range items {
		out[i] = e.id
	}
	return out
}

func TestDecode(t *testing.T) {
	t.Run("Should clamp malformed or negative offset tokens to the first page", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "-3", "1.5", " "} {
			p := DecodeOffset(raw)
			assert.Equal(t, OffsetStrategy, p.Strategy(), raw)
			assert.Equal(t, 0, p.Index(), raw)
			assert.True(t, p.IsStart(), raw)
		}
	})

	t.Run("Should decode a valid page index", func(t *testing.T) {
		p := DecodeOffset("4")
		assert.Equal(t, 4, p.Index())
		assert.Equal(t, int64(4), p.Token())
	})

	t.Run("Should treat malformed keyset tokens as the start", func(t *testing.T) {
		for _, raw := range []string{"", "x1", "-1"} {
			p := DecodeKeyset(raw)
			_, ok := p.LastID()
			assert.False(t, ok, raw)
			assert.True(t, p.IsStart(), raw)
		}
	})

	t.Run("Should decode a last seen id and encode it back", func(t *testing.T) {
		p := Decode(KeysetStrategy, "42")
		id, ok := p.LastID()
		require.True(t, ok)
		assert.Equal(t, int64(42), id)
		assert.Equal(t, "42", Encode(p))
	})

	t.Run("Should keep id zero as a real keyset position", func(t *testing.T) {
		p := DecodeKeyset("0")
		_, ok := p.LastID()
		assert.True(t, ok)
	})
}

func TestNewPageRequest(t *testing.T) {
	t.Run("Should default missing or invalid sizes", func(t *testing.T) {
		for _, raw := range []string{"", "0", "-5", "ten"} {
			req := NewPageRequest(OffsetStrategy, "", raw, 10, 100)
			assert.Equal(t, 10, req.Size, raw)
		}
	})

	t.Run("Should cap sizes above the maximum", func(t *testing.T) {
		req := NewPageRequest(KeysetStrategy, "7", "500", 10, 100)
		assert.Equal(t, 100, req.Size)
		id, _ := req.Cursor.LastID()
		assert.Equal(t, int64(7), id)
	})

	t.Run("Should not cap when no maximum is configured", func(t *testing.T) {
		req := NewPageRequest(OffsetStrategy, "", "500", 10, 0)
		assert.Equal(t, 500, req.Size)
	})
}

func TestPredicate(t *testing.T) {
	flagged := Where(func(e entry) bool { return e.flag }, "flag = ?", true)
	ownedBy := func(o int64) Predicate[entry] {
		return Where(func(e entry) bool { return e.owner == o }, "owner = ?", o)
	}

	t.Run("Should match everything and render TRUE when empty", func(t *testing.T) {
		p := True[entry]()
		assert.True(t, p.IsTrue())
		assert.True(t, p.Match(entry{}))
		assert.Equal(t, "TRUE", p.Clause().SQL)
	})

	t.Run("Should AND every term in memory and in SQL", func(t *testing.T) {
		p := And(flagged, ownedBy(2))

		assert.True(t, p.Match(entry{flag: true, owner: 2}))
		assert.False(t, p.Match(entry{flag: false, owner: 2}))
		assert.False(t, p.Match(entry{flag: true, owner: 1}))

		c := p.Clause()
		assert.Equal(t, "(flag = ?) AND (owner = ?)", c.SQL)
		assert.Equal(t, []any{true, int64(2)}, c.Args)
	})

	t.Run("Should not mutate the receiver when extended", func(t *testing.T) {
		base := And(flagged)
		_ = base.And(ownedBy(1))
		assert.Equal(t, 1, base.Len())
	})

	t.Run("Should number placeholders from the given start", func(t *testing.T) {
		sql, args, next := And(flagged, ownedBy(2)).Clause().Render(2)
		assert.Equal(t, "(flag = $2) AND (owner = $3)", sql)
		assert.Len(t, args, 2)
		assert.Equal(t, 4, next)
	})
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	all := entries(25)
	f := fetcherOf(all)
	desc := Order{Direction: Desc}

	t.Run("Should page 25 items by 10 in descending keyset order", func(t *testing.T) {
		// Page 1
		p1, err := Paginate[entry](ctx, f, True[entry](), desc, PageRequest{Cursor: Start(KeysetStrategy), Size: 10}, entryID)
		require.NoError(t, err)
		assert.Equal(t, []int64{25, 24, 23, 22, 21, 20, 19, 18, 17, 16}, ids(p1.Items))
		require.NotNil(t, p1.Next)
		assert.Equal(t, int64(16), p1.Next.Token())

		// Page 2
		p2, err := Paginate[entry](ctx, f, True[entry](), desc, PageRequest{Cursor: *p1.Next, Size: 10}, entryID)
		require.NoError(t, err)
		assert.Equal(t, []int64{15, 14, 13, 12, 11, 10, 9, 8, 7, 6}, ids(p2.Items))
		require.NotNil(t, p2.Next)
		assert.Equal(t, int64(6), p2.Next.Token())

		// Page 3
		p3, err := Paginate[entry](ctx, f, True[entry](), desc, PageRequest{Cursor: *p2.Next, Size: 10}, entryID)
		require.NoError(t, err)
		assert.Equal(t, []int64{5, 4, 3, 2, 1}, ids(p3.Items))
		assert.Nil(t, p3.Next)
	})

	t.Run("Should cover every matching item exactly once with offsets", func(t *testing.T) {
		pred := Where(func(e entry) bool { return e.flag }, "flag")
		order := Order{Direction: Desc, ByCreation: true}
		seen := map[int64]bool{}
		pos := Start(OffsetStrategy)
		pages := 0
		for {
			page, err := Paginate[entry](ctx, f, pred, order, PageRequest{Cursor: pos, Size: 4}, entryID)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(page.Items), 4)
			for _, it := range page.Items {
				assert.True(t, it.flag)
				assert.False(t, seen[it.id], "duplicate %d", it.id)
				seen[it.id] = true
			}
			pages++
			if page.Next == nil {
				break
			}
			pos = *page.Next
		}
		assert.Len(t, seen, 13)
		assert.Equal(t, 4, pages)
	})

	t.Run("Should return an empty page without next when the window is past the end", func(t *testing.T) {
		page, err := Paginate[entry](ctx, f, True[entry](), desc, PageRequest{Cursor: Offset(9), Size: 10}, entryID)
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Nil(t, page.Next)
	})

	t.Run("Should return no next key when the last page is exactly full", func(t *testing.T) {
		page, err := Paginate[entry](ctx, fetcherOf(entries(10)), True[entry](), desc, PageRequest{Cursor: Start(KeysetStrategy), Size: 10}, entryID)
		require.NoError(t, err)
		assert.Len(t, page.Items, 10)
		assert.Nil(t, page.Next)
	})

	t.Run("Should be idempotent for the same position", func(t *testing.T) {
		req := PageRequest{Cursor: Offset(1), Size: 7}
		a, err := Paginate[entry](ctx, f, True[entry](), desc, req, entryID)
		require.NoError(t, err)
		b, err := Paginate[entry](ctx, f, True[entry](), desc, req, entryID)
		require.NoError(t, err)
		assert.Equal(t, ids(a.Items), ids(b.Items))
	})

	t.Run("Should never grow the result when a filter is added", func(t *testing.T) {
		loose, _, err := Fetch[entry](ctx, f, True[entry](), desc, Start(KeysetStrategy), 100)
		require.NoError(t, err)
		strict, _, err := Fetch[entry](ctx, f, Where(func(e entry) bool { return e.owner == 1 }, "owner = 1"), desc, Start(KeysetStrategy), 100)
		require.NoError(t, err)
		assert.Subset(t, ids(loose), ids(strict))
		assert.Less(t, len(strict), len(loose))
	})

	t.Run("Should walk ascending keyset strictly after the last id", func(t *testing.T) {
		last := int64(20)
		items, hasMore, err := Fetch[entry](ctx, f, True[entry](), Order{Direction: Asc}, Keyset(&last), 10)
		require.NoError(t, err)
		assert.Equal(t, []int64{21, 22, 23, 24, 25}, ids(items))
		assert.False(t, hasMore)
	})

	t.Run("Should propagate storage errors without a partial page", func(t *testing.T) {
		boom := errors.New("boom")
		failing := FetcherFunc[entry](func(context.Context, Window[entry]) ([]entry, error) { return []entry{{id: 1}}, boom })
		items, hasMore, err := Fetch[entry](ctx, failing, True[entry](), desc, Start(OffsetStrategy), 10)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, items)
		assert.False(t, hasMore)
	})

	t.Run("Should serve an empty last page for an index whose window overflows", func(t *testing.T) {
		req := NewPageRequest(OffsetStrategy, "4611686018427387905", "4", 10, 100)
		page, err := Paginate[entry](ctx, fetcherOf(entries(20)), True[entry](), Order{Direction: Asc, ByCreation: true}, req, entryID)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Nil(t, page.Next)
	})

	t.Run("Should request one extra row to detect a next page", func(t *testing.T) {
		var got Window[entry]
		spy := FetcherFunc[entry](func(_ context.Context, w Window[entry]) ([]entry, error) {
			got = w
			return nil, nil
		})
		_, _, err := Fetch[entry](ctx, spy, True[entry](), Order{Direction: Desc, ByCreation: true}, Offset(3), 5)
		require.NoError(t, err)
		assert.Equal(t, 6, got.Limit)
		assert.Equal(t, 15, got.Offset)
		assert.Nil(t, got.After)
	})
}

func TestWindowOffset(t *testing.T) {
	assert.Equal(t, 0, windowOffset(0, 10))
	assert.Equal(t, 30, windowOffset(3, 10))
	assert.Equal(t, math.MaxInt32, windowOffset(math.MaxInt32/10+1, 10))
	// 2^62+1 pages de 4 : le produit reboucle sur 4 en 64 bits
	assert.Equal(t, math.MaxInt32, windowOffset(DecodeOffset("4611686018427387905").Index(), 4))
	assert.Equal(t, math.MaxInt32, windowOffset(maxInt, maxInt))
}

func TestNextKey(t *testing.T) {
	items := entries(3)

	t.Run("Should be absent when there is nothing more", func(t *testing.T) {
		assert.Nil(t, NextKey(items, false, Offset(0), entryID))
		assert.Nil(t, NextKey([]entry{}, true, Offset(0), entryID))
	})

	t.Run("Should advance the page index for offsets", func(t *testing.T) {
		next := NextKey(items, true, Offset(2), entryID)
		require.NotNil(t, next)
		assert.Equal(t, 3, next.Index())
	})

	t.Run("Should use the last item id for keysets", func(t *testing.T) {
		next := NextKey(items, true, Keyset(nil), entryID)
		require.NotNil(t, next)
		id, ok := next.LastID()
		assert.True(t, ok)
		assert.Equal(t, int64(3), id)
	})
}
