package listing

import "strconv"

const DefaultSize = 10

// PageRequest est la requête normalisée : curseur décodé et taille positive.
type PageRequest struct {
	Cursor Position
	Size   int
}

// NewPageRequest normalise key/size bruts. Une taille absente, malformée ou
// non positive prend def ; au-delà de max (si max > 0) elle est plafonnée.
func NewPageRequest(s Strategy, rawKey, rawSize string, def, max int) PageRequest {
	if def <= 0 {
		def = DefaultSize
	}
	size := def
	if n, err := strconv.Atoi(rawSize); err == nil && n > 0 {
		size = n
	}
	if max > 0 && size > max {
		size = max
	}
	return PageRequest{Cursor: Decode(s, rawKey), Size: size}
}

// Page est le résultat d'une lecture : Next == nil signifie "plus rien".
type Page[T any] struct {
	Items []T
	Next  *Position
}

// NextToken renvoie la valeur JSON de "next" (nil => null).
func (p Page[T]) NextToken() *int64 {
	if p.Next == nil {
		return nil
	}
	t := p.Next.Token()
	return &t
}

// Map convertit les éléments en conservant le curseur.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, it := range p.Items {
		out[i] = fn(it)
	}
	return Page[U]{Items: out, Next: p.Next}
}
