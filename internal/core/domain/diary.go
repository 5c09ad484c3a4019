package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxTitleLength = 100
	MaxEmojiLength = 16
)

// Diary est une entrée de journal. Elle est privée par défaut.
type Diary struct {
	ID         int64
	MemberID   int64
	Title      string
	Content    string
	Emoji      string
	CategoryID *int64
	Location   *Location
	IsPublic   bool
	IsBookmark bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Renseignés à la lecture, pas stockés sur la ligne
	LikeCount int
	Liked     bool
}

// Location est optionnelle : une entrée peut être géolocalisée.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

type Category struct {
	ID        int64
	MemberID  int64
	Name      string
	CreatedAt time.Time
}

// NewDiary valide les invariants. L'ID est attribué par le stockage.
func NewDiary(memberID int64, title, content, emoji string, categoryID *int64, loc *Location, public bool) (*Diary, error) {
	title = strings.TrimSpace(title)
	if title == "" || len([]rune(title)) > MaxTitleLength {
		return nil, fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidInput, MaxTitleLength)
	}
	if len([]rune(emoji)) > MaxEmojiLength {
		return nil, fmt.Errorf("%w: emoji too long", ErrInvalidInput)
	}
	if loc != nil && (loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180) {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}
	now := time.Now().UTC()
	return &Diary{
		MemberID:   memberID,
		Title:      title,
		Content:    content,
		Emoji:      strings.TrimSpace(emoji),
		CategoryID: categoryID,
		Location:   loc,
		IsPublic:   public,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// OwnedBy est vrai si le membre est l'auteur.
func (d *Diary) OwnedBy(memberID int64) bool { return d.MemberID == memberID }

// SetBookmark ne change que le marque-page de l'auteur.
func (d *Diary) SetBookmark(v bool) {
	d.IsBookmark = v
	d.UpdatedAt = time.Now().UTC()
}
