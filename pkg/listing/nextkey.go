package listing

import "context"

// NextKey calcule le curseur de la page suivante. nil quand la séquence est
// épuisée ou que la page est vide.
func NextKey[T any](items []T, hasMore bool, prev Position, extractID func(T) int64) *Position {
	if !hasMore || len(items) == 0 {
		return nil
	}
	var next Position
	if prev.Strategy() == KeysetStrategy {
		id := extractID(items[len(items)-1])
		next = Keyset(&id)
	} else {
		next = Offset(prev.Index() + 1)
	}
	return &next
}

// Paginate enchaîne fenêtre et clé suivante pour une requête déjà normalisée.
func Paginate[T any](ctx context.Context, f Fetcher[T], pred Predicate[T], order Order, req PageRequest, extractID func(T) int64) (Page[T], error) {
	items, hasMore, err := Fetch(ctx, f, pred, order, req.Cursor, req.Size)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{
		Items: items,
		Next:  NextKey(items, hasMore, req.Cursor, extractID),
	}, nil
}
