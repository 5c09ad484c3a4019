package filters

import (
	"time"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/pkg/listing"
)

type DiaryPredicate = listing.Predicate[*domain.Diary]

// DiaryCriteria : chaque champ est optionnel, nil (ou vide) = pas de filtre.
type DiaryCriteria struct {
	Keyword     *string
	Emojis      []string
	CategoryIDs []int64
	Date        *time.Time
	From        *time.Time
	Until       *time.Time
	Bookmark    *bool
	Public      *bool
	AuthorID    *int64
}

// Diary construit la conjonction des critères présents.
func (b *Builder) Diary(c DiaryCriteria) DiaryPredicate {
	p := listing.True[*domain.Diary]()

	if c.AuthorID != nil {
		id := *c.AuthorID
		p = p.And(listing.Where(func(d *domain.Diary) bool { return d.MemberID == id },
			"diaries.member_id = ?", id))
	}
	if c.Keyword != nil && *c.Keyword != "" {
		kw := *c.Keyword
		op := b.text.operator()
		pattern := likePattern(kw)
		p = p.And(listing.Where(func(d *domain.Diary) bool {
			return b.text.contains(d.Title, kw) || b.text.contains(d.Content, kw)
		}, "diaries.title "+op+" ? OR diaries.content "+op+" ?", pattern, pattern))
	}
	if len(c.Emojis) > 0 {
		set := toSet(c.Emojis)
		emojis := append([]string(nil), c.Emojis...)
		p = p.And(listing.Where(func(d *domain.Diary) bool { _, ok := set[d.Emoji]; return ok },
			"diaries.emoji = ANY(?)", emojis))
	}
	if len(c.CategoryIDs) > 0 {
		set := toSet(c.CategoryIDs)
		cats := append([]int64(nil), c.CategoryIDs...)
		p = p.And(listing.Where(func(d *domain.Diary) bool {
			if d.CategoryID == nil {
				return false
			}
			_, ok := set[*d.CategoryID]
			return ok
		}, "diaries.category_id = ANY(?)", cats))
	}
	if c.Date != nil {
		start := Day(*c.Date)
		end := start.AddDate(0, 0, 1)
		p = p.And(createdIn(&start, &end))
	}
	if c.From != nil || c.Until != nil {
		var from, until *time.Time
		if c.From != nil {
			f := Day(*c.From)
			from = &f
		}
		if c.Until != nil {
			// Borne supérieure inclusive sur le jour : [from, until+1j)
			u := Day(*c.Until).AddDate(0, 0, 1)
			until = &u
		}
		p = p.And(createdIn(from, until))
	}
	if c.Bookmark != nil {
		v := *c.Bookmark
		p = p.And(listing.Where(func(d *domain.Diary) bool { return d.IsBookmark == v },
			"diaries.is_bookmark = ?", v))
	}
	if c.Public != nil {
		v := *c.Public
		p = p.And(listing.Where(func(d *domain.Diary) bool { return d.IsPublic == v },
			"diaries.is_public = ?", v))
	}
	return p
}

// Day tronque un instant au jour calendaire UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func createdIn(from, until *time.Time) DiaryPredicate {
	p := listing.True[*domain.Diary]()
	if from != nil {
		f := *from
		p = p.And(listing.Where(func(d *domain.Diary) bool { return !d.CreatedAt.Before(f) },
			"diaries.created_at >= ?", f))
	}
	if until != nil {
		u := *until
		p = p.And(listing.Where(func(d *domain.Diary) bool { return d.CreatedAt.Before(u) },
			"diaries.created_at < ?", u))
	}
	return p
}

func toSet[K comparable](vals []K) map[K]struct{} {
	set := make(map[K]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}
