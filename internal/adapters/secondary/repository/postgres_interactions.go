package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/pkg/listing"
)

var commentTable = table[*domain.Comment]{
	name:    "comments",
	columns: "comments.id, comments.diary_id, comments.member_id, comments.content, comments.created_at",
	from:    "comments",
	scan: func(row pgx.Row) (*domain.Comment, error) {
		var c domain.Comment
		if err := row.Scan(&c.ID, &c.DiaryID, &c.MemberID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		return &c, nil
	},
}

type pgComments struct{ db querier }

func (p *Postgres) Comments() ports.CommentRepository { return pgComments{p.db} }

func (r pgComments) Save(ctx context.Context, c *domain.Comment) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO comments (diary_id, member_id, content, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.DiaryID, c.MemberID, c.Content, c.CreatedAt,
	).Scan(&c.ID)
	return handleError(err, domain.ErrDiaryNotFound, nil)
}

func (r pgComments) Fetch(ctx context.Context, w listing.Window[*domain.Comment]) ([]*domain.Comment, error) {
	return commentTable.fetch(ctx, r.db, w)
}

// --- LIKES ---

type pgLikes struct{ db querier }

func (p *Postgres) Likes() ports.LikeRepository { return pgLikes{p.db} }

func (r pgLikes) Add(ctx context.Context, diaryID, memberID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO likes (diary_id, member_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		diaryID, memberID)
	if err != nil {
		return false, handleError(err, domain.ErrDiaryNotFound, nil)
	}
	return tag.RowsAffected() == 1, nil
}

func (r pgLikes) Remove(ctx context.Context, diaryID, memberID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM likes WHERE diary_id = $1 AND member_id = $2`, diaryID, memberID)
	return err
}

func (r pgLikes) Count(ctx context.Context, diaryID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM likes WHERE diary_id = $1`, diaryID).Scan(&n)
	return n, err
}

func (r pgLikes) Has(ctx context.Context, diaryID, memberID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE diary_id = $1 AND member_id = $2)`,
		diaryID, memberID,
	).Scan(&ok)
	return ok, err
}
