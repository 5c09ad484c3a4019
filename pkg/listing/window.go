package listing

import (
	"context"
	"math"
	"sort"
	"time"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) SQL() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Order est l'ordre fixe d'un endpoint. ByCreation trie par date de création
// puis par id ; sinon par id seul (obligatoire en keyset).
type Order struct {
	Direction  Direction
	ByCreation bool
}

// Window décrit une lecture bornée. After n'est renseigné qu'en keyset.
type Window[T any] struct {
	Predicate Predicate[T]
	Order     Order
	Offset    int
	After     *int64
	Limit     int
}

// Fetcher exécute une fenêtre contre un stockage.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, w Window[T]) ([]T, error)
}

type FetcherFunc[T any] func(ctx context.Context, w Window[T]) ([]T, error)

func (f FetcherFunc[T]) Fetch(ctx context.Context, w Window[T]) ([]T, error) { return f(ctx, w) }

// Fetch lit au plus size éléments à partir de pos et indique s'il en reste.
// On demande size+1 lignes : la ligne en trop ne sert qu'à détecter la suite.
func Fetch[T any](ctx context.Context, f Fetcher[T], pred Predicate[T], order Order, pos Position, size int) ([]T, bool, error) {
	if size <= 0 {
		size = DefaultSize
	}
	w := Window[T]{Predicate: pred, Order: order, Limit: size + 1}

	switch pos.Strategy() {
	case KeysetStrategy:
		// Le keyset suppose un ordre total sur l'id.
		w.Order.ByCreation = false
		if id, ok := pos.LastID(); ok {
			w.After = &id
		}
	default:
		w.Offset = windowOffset(pos.Index(), size)
	}

	items, err := f.Fetch(ctx, w)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(items) > size
	if hasMore {
		items = items[:size]
	}
	if items == nil {
		items = []T{}
	}
	return items, hasMore, nil
}

// windowOffset borne index*size à MaxInt32 : un index énorme donne une
// fenêtre vide, jamais un décalage qui reboucle sur des données.
func windowOffset(index, size int) int {
	if index < 0 || size <= 0 || index > math.MaxInt32/size {
		return math.MaxInt32
	}
	return index * size
}

// SliceFetcher applique une fenêtre à une collection en mémoire.
type SliceFetcher[T any] struct {
	Items     func() []T
	ID        func(T) int64
	CreatedAt func(T) time.Time
}

func (s SliceFetcher[T]) Fetch(ctx context.Context, w Window[T]) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matched []T
	for _, it := range s.Items() {
		if w.Predicate.Match(it) {
			matched = append(matched, it)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if w.Order.ByCreation && s.CreatedAt != nil {
			ca, cb := s.CreatedAt(a), s.CreatedAt(b)
			if !ca.Equal(cb) {
				if w.Order.Direction == Desc {
					return ca.After(cb)
				}
				return ca.Before(cb)
			}
		}
		if w.Order.Direction == Desc {
			return s.ID(a) > s.ID(b)
		}
		return s.ID(a) < s.ID(b)
	})

	if w.After != nil {
		after := *w.After
		start := len(matched)
		for i, it := range matched {
			id := s.ID(it)
			if (w.Order.Direction == Asc && id > after) || (w.Order.Direction == Desc && id < after) {
				start = i
				break
			}
		}
		matched = matched[start:]
	}

	if w.Offset >= len(matched) {
		return []T{}, nil
	}
	matched = matched[w.Offset:]
	if w.Limit > 0 && len(matched) > w.Limit {
		matched = matched[:w.Limit]
	}

	out := make([]T, len(matched))
	copy(out, matched)
	return out, nil
}
