package filters

import "strings"

// TextMatch fixe la sensibilité à la casse des critères "contient".
// Par défaut la recherche ignore la casse (ILIKE côté SQL).
type TextMatch int

const (
	CaseInsensitive TextMatch = iota
	CaseSensitive
)

func (m TextMatch) contains(s, sub string) bool {
	if m == CaseSensitive {
		return strings.Contains(s, sub)
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (m TextMatch) operator() string {
	if m == CaseSensitive {
		return "LIKE"
	}
	return "ILIKE"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern protège les jokers SQL : "50%" cherche littéralement "50%".
func likePattern(sub string) string {
	return "%" + likeEscaper.Replace(sub) + "%"
}

// Builder traduit des critères en prédicats. Pur : ne lit aucun stockage.
type Builder struct {
	text TextMatch
}

func NewBuilder(text TextMatch) *Builder {
	return &Builder{text: text}
}
