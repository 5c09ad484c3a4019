package rest

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/filters"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/pkg/listing"
)

const dateLayout = "2006-01-02"

// diaryQuery : filtres bruts de la query string, validés avant conversion.
type diaryQuery struct {
	Keyword    string   `validate:"omitempty,max=100"`
	Emojis     []string `validate:"max=20,dive,max=16"`
	Categories []string `validate:"max=50,dive,numeric"`
	Date       string   `validate:"omitempty,datetime=2006-01-02"`
	From       string   `validate:"omitempty,datetime=2006-01-02"`
	Until      string   `validate:"omitempty,datetime=2006-01-02"`
	Bookmark   string   `validate:"omitempty,oneof=true false"`
	Public     string   `validate:"omitempty,oneof=true false"`
}

type memberQuery struct {
	Nickname string `validate:"omitempty,max=50"`
	Email    string `validate:"omitempty,max=254"`
}

// multi accepte ?emoji=a&emoji=b comme ?emoji=a,b
func multi(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseDiaryCriteria(v *validator.Validate, q url.Values) (filters.DiaryCriteria, error) {
	raw := diaryQuery{
		Keyword:    strings.TrimSpace(q.Get("keyword")),
		Emojis:     multi(q, "emoji"),
		Categories: multi(q, "category"),
		Date:       q.Get("date"),
		From:       q.Get("from"),
		Until:      q.Get("until"),
		Bookmark:   q.Get("bookmark"),
		Public:     q.Get("public"),
	}
	if err := v.Struct(raw); err != nil {
		return filters.DiaryCriteria{}, err
	}

	var c filters.DiaryCriteria
	if raw.Keyword != "" {
		c.Keyword = &raw.Keyword
	}
	c.Emojis = raw.Emojis
	for _, s := range raw.Categories {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return filters.DiaryCriteria{}, fmt.Errorf("%w: category %q", domain.ErrInvalidInput, s)
		}
		c.CategoryIDs = append(c.CategoryIDs, id)
	}
	c.Date = parseDate(raw.Date)
	c.From = parseDate(raw.From)
	c.Until = parseDate(raw.Until)
	c.Bookmark = parseBool(raw.Bookmark)
	c.Public = parseBool(raw.Public)
	return c, nil
}

func parseMemberCriteria(v *validator.Validate, q url.Values) (filters.MemberCriteria, error) {
	raw := memberQuery{
		Nickname: strings.TrimSpace(q.Get("nickname")),
		Email:    strings.TrimSpace(q.Get("email")),
	}
	if err := v.Struct(raw); err != nil {
		return filters.MemberCriteria{}, err
	}
	var c filters.MemberCriteria
	if raw.Nickname != "" {
		c.Nickname = &raw.Nickname
	}
	if raw.Email != "" {
		c.Email = &raw.Email
	}
	return c, nil
}

// déjà validés : une erreur de parsing ici est impossible
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

func parseBool(s string) *bool {
	if s == "" {
		return nil
	}
	b := s == "true"
	return &b
}

// Paging porte la taille par défaut et le plafond configurés.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

// pageRequest ne rejette jamais key/size : ils sont normalisés.
func (p Paging) pageRequest(r *http.Request, ep ports.Endpoint) listing.PageRequest {
	q := r.URL.Query()
	return listing.NewPageRequest(ep.Strategy, q.Get("key"), q.Get("size"), p.DefaultSize, p.MaxSize)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad %s", domain.ErrInvalidInput, name)
	}
	return id, nil
}
