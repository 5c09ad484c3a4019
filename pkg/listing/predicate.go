package listing

import (
	"strconv"
	"strings"
)

// Clause est le fragment SQL d'un prédicat, avec des placeholders "?".
type Clause struct {
	SQL  string
	Args []any
}

// Render remplace les "?" par $start, $start+1... pour pgx.
// Renvoie aussi le prochain numéro libre.
func (c Clause) Render(start int) (string, []any, int) {
	var b strings.Builder
	n := start
	for i := 0; i < len(c.SQL); i++ {
		if c.SQL[i] == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteByte(c.SQL[i])
	}
	return b.String(), c.Args, n
}

// Predicate est une valeur composable : le même filtre s'évalue en mémoire
// (Match) ou se traduit en SQL (Clause).
type Predicate[T any] struct {
	terms []term[T]
}

type term[T any] struct {
	match  func(T) bool
	clause Clause
}

// True est l'élément neutre de And.
func True[T any]() Predicate[T] { return Predicate[T]{} }

// Where crée un prédicat atomique.
func Where[T any](match func(T) bool, sql string, args ...any) Predicate[T] {
	return Predicate[T]{terms: []term[T]{{match: match, clause: Clause{SQL: sql, Args: args}}}}
}

// And renvoie la conjonction ; les opérandes ne sont pas modifiés.
func (p Predicate[T]) And(others ...Predicate[T]) Predicate[T] {
	n := len(p.terms)
	for _, o := range others {
		n += len(o.terms)
	}
	terms := make([]term[T], 0, n)
	terms = append(terms, p.terms...)
	for _, o := range others {
		terms = append(terms, o.terms...)
	}
	return Predicate[T]{terms: terms}
}

// And combine une liste de prédicats à partir de True.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	return True[T]().And(preds...)
}

func (p Predicate[T]) IsTrue() bool { return len(p.terms) == 0 }

// Len est le nombre de conditions atomiques.
func (p Predicate[T]) Len() int { return len(p.terms) }

func (p Predicate[T]) Match(item T) bool {
	for _, t := range p.terms {
		if !t.match(item) {
			return false
		}
	}
	return true
}

// Clause joint les fragments par AND ; "TRUE" pour le prédicat neutre.
func (p Predicate[T]) Clause() Clause {
	if len(p.terms) == 0 {
		return Clause{SQL: "TRUE"}
	}
	parts := make([]string, len(p.terms))
	var args []any
	for i, t := range p.terms {
		parts[i] = "(" + t.clause.SQL + ")"
		args = append(args, t.clause.Args...)
	}
	return Clause{SQL: strings.Join(parts, " AND "), Args: args}
}
