package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/pkg/listing"
)

var memberTable = table[*domain.Member]{
	name:    "members",
	columns: "members.id, members.email, members.nickname, members.profile_image, members.created_at",
	from:    "members",
	scan:    scanMember,
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	if err := row.Scan(&m.ID, &m.Email, &m.Nickname, &m.ProfileImage, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

type pgMembers struct{ db querier }

func (p *Postgres) Members() ports.MemberRepository { return pgMembers{p.db} }

func (r pgMembers) Save(ctx context.Context, m *domain.Member) error {
	query := `
		INSERT INTO members (email, nickname, profile_image)
		VALUES (@email, @nickname, @image)
		RETURNING id, created_at
	`
	args := pgx.NamedArgs{"email": m.Email, "nickname": m.Nickname, "image": m.ProfileImage}
	err := r.db.QueryRow(ctx, query, args).Scan(&m.ID, &m.CreatedAt)
	return handleError(err, nil, domain.ErrInvalidInput)
}

func (r pgMembers) FindByID(ctx context.Context, id int64) (*domain.Member, error) {
	query := `SELECT ` + memberTable.columns + ` FROM members WHERE members.id = $1`
	m, err := scanMember(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, handleError(err, domain.ErrMemberNotFound, nil)
	}
	return m, nil
}

func (r pgMembers) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r pgMembers) Fetch(ctx context.Context, w listing.Window[*domain.Member]) ([]*domain.Member, error) {
	return memberTable.fetch(ctx, r.db, w)
}
