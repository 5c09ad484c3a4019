// Package listing regroupe le moteur de pagination partagé par tous les
// endpoints de liste : décodage du curseur, prédicats composables, fenêtre de
// lecture et extraction de la clé suivante.
package listing

import (
	"strconv"
	"strings"
)

// Strategy est fixée par endpoint, jamais par le client.
type Strategy int

const (
	OffsetStrategy Strategy = iota
	KeysetStrategy
)

func (s Strategy) String() string {
	if s == KeysetStrategy {
		return "keyset"
	}
	return "offset"
}

// Position est l'union taguée Offset(index) | Keyset(lastId?).
type Position struct {
	strategy Strategy
	index    int
	lastID   int64
	hasLast  bool
}

// Offset construit une position de page indexée. Un index négatif revient au début.
func Offset(index int) Position {
	if index < 0 {
		index = 0
	}
	return Position{strategy: OffsetStrategy, index: index}
}

// Keyset construit une position après lastID ; nil = début de la séquence.
func Keyset(lastID *int64) Position {
	if lastID == nil || *lastID < 0 {
		return Position{strategy: KeysetStrategy}
	}
	return Position{strategy: KeysetStrategy, lastID: *lastID, hasLast: true}
}

// Start renvoie la première position de la stratégie donnée.
func Start(s Strategy) Position {
	if s == KeysetStrategy {
		return Keyset(nil)
	}
	return Offset(0)
}

func (p Position) Strategy() Strategy { return p.strategy }

// Index n'a de sens que pour une position Offset.
func (p Position) Index() int { return p.index }

// LastID renvoie le dernier identifiant vu, false si on est au début.
func (p Position) LastID() (int64, bool) { return p.lastID, p.hasLast }

// IsStart est vrai pour Offset(0) et Keyset(absent).
func (p Position) IsStart() bool {
	if p.strategy == KeysetStrategy {
		return !p.hasLast
	}
	return p.index == 0
}

// Token est la valeur renvoyée au client dans "next" et réémise dans "key".
func (p Position) Token() int64 {
	if p.strategy == KeysetStrategy {
		return p.lastID
	}
	return int64(p.index)
}

func (p Position) String() string {
	if p.strategy == KeysetStrategy {
		if !p.hasLast {
			return "keyset(start)"
		}
		return "keyset(" + strconv.FormatInt(p.lastID, 10) + ")"
	}
	return "offset(" + strconv.Itoa(p.index) + ")"
}

// --- CODEC ---

// DecodeOffset lit un index de page. Absent, malformé ou négatif => 0.
func DecodeOffset(raw string) Position {
	n, ok := parseNonNegative(raw)
	if !ok {
		return Offset(0)
	}
	if n > int64(maxInt) {
		n = int64(maxInt)
	}
	return Offset(int(n))
}

// DecodeKeyset lit un identifiant déjà vu. Absent, malformé ou négatif => début.
func DecodeKeyset(raw string) Position {
	n, ok := parseNonNegative(raw)
	if !ok {
		return Keyset(nil)
	}
	return Keyset(&n)
}

// Decode ne renvoie jamais d'erreur : un curseur invalide ramène au début.
func Decode(s Strategy, raw string) Position {
	if s == KeysetStrategy {
		return DecodeKeyset(raw)
	}
	return DecodeOffset(raw)
}

// Encode est l'inverse de Decode pour les positions valides.
func Encode(p Position) string {
	return strconv.FormatInt(p.Token(), 10)
}

const maxInt = int(^uint(0) >> 1)

func parseNonNegative(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
