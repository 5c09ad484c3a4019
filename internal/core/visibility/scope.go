// Package visibility restreint un prédicat d'entrées de journal selon la
// relation entre le lecteur et l'auteur.
package visibility

import (
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/pkg/listing"
)

type Relation int

const (
	Self Relation = iota
	Friend
	Public
)

func (r Relation) String() string {
	switch r {
	case Self:
		return "self"
	case Friend:
		return "friend"
	default:
		return "public"
	}
}

// RelationOf déduit la relation lecteur -> propriétaire.
func RelationOf(viewerID, ownerID int64, isFriend bool) Relation {
	switch {
	case viewerID == ownerID:
		return Self
	case isFriend:
		return Friend
	default:
		return Public
	}
}

// Scope ajoute la restriction de visibilité au prédicat de base.
//
//   - Self   : entrées du lecteur, privées et marque-pages compris.
//   - Friend : entrées publiques dont l'auteur est un ami confirmé du lecteur.
//     friends est l'ensemble des amis du lecteur (arête lecteur -> auteur) ;
//     un ensemble vide ne laisse rien passer.
//   - Public : entrées publiques uniquement.
func Scope(base listing.Predicate[*domain.Diary], viewerID int64, rel Relation, friends []int64) listing.Predicate[*domain.Diary] {
	switch rel {
	case Self:
		return base.And(listing.Where(func(d *domain.Diary) bool { return d.MemberID == viewerID },
			"diaries.member_id = ?", viewerID))
	case Friend:
		set := make(map[int64]struct{}, len(friends))
		for _, id := range friends {
			set[id] = struct{}{}
		}
		ids := append([]int64{}, friends...)
		return base.And(
			publicOnly(),
			listing.Where(func(d *domain.Diary) bool { _, ok := set[d.MemberID]; return ok },
				"diaries.member_id = ANY(?)", ids),
		)
	default:
		return base.And(publicOnly())
	}
}

// CanRead applique la même règle à une entrée isolée.
func CanRead(d *domain.Diary, viewerID int64, isFriend bool) bool {
	switch RelationOf(viewerID, d.MemberID, isFriend) {
	case Self:
		return true
	case Friend:
		return d.IsPublic
	default:
		return false
	}
}

func publicOnly() listing.Predicate[*domain.Diary] {
	return listing.Where(func(d *domain.Diary) bool { return d.IsPublic },
		"diaries.is_public = TRUE")
}
