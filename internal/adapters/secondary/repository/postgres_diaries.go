package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/pkg/listing"
)

var diaryTable = table[*domain.Diary]{
	name: "diaries",
	columns: `diaries.id, diaries.member_id, diaries.title, diaries.content, diaries.emoji,
		diaries.category_id, diaries.latitude, diaries.longitude, diaries.address,
		diaries.is_public, diaries.is_bookmark, diaries.created_at, diaries.updated_at`,
	from: "diaries",
	scan: scanDiary,
}

// DTO pour les colonnes nullables de localisation
type sqlLocation struct {
	lat, lng *float64
	address  *string
}

func (l sqlLocation) toDomain() *domain.Location {
	if l.lat == nil || l.lng == nil {
		return nil
	}
	loc := &domain.Location{Latitude: *l.lat, Longitude: *l.lng}
	if l.address != nil {
		loc.Address = *l.address
	}
	return loc
}

func scanDiary(row pgx.Row) (*domain.Diary, error) {
	var (
		d   domain.Diary
		loc sqlLocation
	)
	err := row.Scan(
		&d.ID, &d.MemberID, &d.Title, &d.Content, &d.Emoji,
		&d.CategoryID, &loc.lat, &loc.lng, &loc.address,
		&d.IsPublic, &d.IsBookmark, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Location = loc.toDomain()
	return &d, nil
}

type pgDiaries struct{ db querier }

func (p *Postgres) Diaries() ports.DiaryRepository { return pgDiaries{p.db} }

func (r pgDiaries) Save(ctx context.Context, d *domain.Diary) error {
	query := `
		INSERT INTO diaries (member_id, title, content, emoji, category_id, latitude, longitude, address, is_public, is_bookmark, created_at, updated_at)
		VALUES (@member, @title, @content, @emoji, @category, @lat, @lng, @address, @public, @bookmark, @created, @updated)
		RETURNING id
	`
	args := pgx.NamedArgs{
		"member":   d.MemberID,
		"title":    d.Title,
		"content":  d.Content,
		"emoji":    d.Emoji,
		"category": d.CategoryID,
		"lat":      nil,
		"lng":      nil,
		"address":  nil,
		"public":   d.IsPublic,
		"bookmark": d.IsBookmark,
		"created":  d.CreatedAt,
		"updated":  d.UpdatedAt,
	}
	if d.Location != nil {
		args["lat"] = d.Location.Latitude
		args["lng"] = d.Location.Longitude
		args["address"] = d.Location.Address
	}
	err := r.db.QueryRow(ctx, query, args).Scan(&d.ID)
	return handleError(err, domain.ErrCategoryNotFound, nil)
}

func (r pgDiaries) FindByID(ctx context.Context, id int64) (*domain.Diary, error) {
	query := `SELECT ` + diaryTable.columns + ` FROM diaries WHERE diaries.id = $1`
	d, err := scanDiary(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, handleError(err, domain.ErrDiaryNotFound, nil)
	}
	return d, nil
}

func (r pgDiaries) UpdateBookmark(ctx context.Context, id int64, bookmark bool, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE diaries SET is_bookmark = $2, updated_at = $3 WHERE id = $1`, id, bookmark, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDiaryNotFound
	}
	return nil
}

// Delete : commentaires et likes partent en cascade (ON DELETE CASCADE).
func (r pgDiaries) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM diaries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDiaryNotFound
	}
	return nil
}

func (r pgDiaries) Fetch(ctx context.Context, w listing.Window[*domain.Diary]) ([]*domain.Diary, error) {
	return diaryTable.fetch(ctx, r.db, w)
}

// --- CATEGORIES ---

type pgCategories struct{ db querier }

func (p *Postgres) Categories() ports.CategoryRepository { return pgCategories{p.db} }

func (r pgCategories) Save(ctx context.Context, c *domain.Category) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (member_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`,
		c.MemberID, c.Name, c.CreatedAt,
	).Scan(&c.ID)
	return handleError(err, domain.ErrMemberNotFound, domain.ErrCategoryExists)
}

func (r pgCategories) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRow(ctx,
		`SELECT id, member_id, name, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.MemberID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, handleError(err, domain.ErrCategoryNotFound, nil)
	}
	return &c, nil
}

func (r pgCategories) ListByMember(ctx context.Context, memberID int64) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, member_id, name, created_at FROM categories WHERE member_id = $1 ORDER BY name`, memberID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Category, error) {
		var c domain.Category
		err := row.Scan(&c.ID, &c.MemberID, &c.Name, &c.CreatedAt)
		return &c, err
	})
}
