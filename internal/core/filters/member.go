package filters

import (
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/pkg/listing"
)

type MemberCriteria struct {
	Nickname  *string
	Email     *string
	ExcludeID *int64
	// IDs restreint aux membres listés. nil = pas de contrainte, vide = aucun.
	IDs []int64
}

func (b *Builder) Member(c MemberCriteria) listing.Predicate[*domain.Member] {
	p := listing.True[*domain.Member]()
	op := b.text.operator()

	if c.Nickname != nil && *c.Nickname != "" {
		v := *c.Nickname
		p = p.And(listing.Where(func(m *domain.Member) bool { return b.text.contains(m.Nickname, v) },
			"members.nickname "+op+" ?", likePattern(v)))
	}
	if c.Email != nil && *c.Email != "" {
		v := *c.Email
		p = p.And(listing.Where(func(m *domain.Member) bool { return b.text.contains(m.Email, v) },
			"members.email "+op+" ?", likePattern(v)))
	}
	if c.ExcludeID != nil {
		id := *c.ExcludeID
		p = p.And(listing.Where(func(m *domain.Member) bool { return m.ID != id },
			"members.id <> ?", id))
	}
	if c.IDs != nil {
		set := toSet(c.IDs)
		ids := append([]int64{}, c.IDs...)
		p = p.And(listing.Where(func(m *domain.Member) bool { _, ok := set[m.ID]; return ok },
			"members.id = ANY(?)", ids))
	}
	return p
}
