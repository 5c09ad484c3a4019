package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jupiterclapton/journal/pkg/listing"
)

// querier est satisfait par *pgxpool.Pool et pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres regroupe les repositories adossés au même pool.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.Ping(ctx) }

// EnsureSchema crée les tables et index (idempotent).
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS members (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	nickname      TEXT NOT NULL,
	profile_image TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS categories (
	id         BIGSERIAL PRIMARY KEY,
	member_id  BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (member_id, name)
);

CREATE TABLE IF NOT EXISTS diaries (
	id          BIGSERIAL PRIMARY KEY,
	member_id   BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	content     TEXT NOT NULL DEFAULT '',
	emoji       TEXT NOT NULL DEFAULT '',
	category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
	latitude    DOUBLE PRECISION,
	longitude   DOUBLE PRECISION,
	address     TEXT,
	is_public   BOOLEAN NOT NULL DEFAULT FALSE,
	is_bookmark BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS diaries_member_created_idx ON diaries (member_id, created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS diaries_public_id_idx ON diaries (id DESC) WHERE is_public;

CREATE TABLE IF NOT EXISTS friends (
	owner_id   BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	friend_id  BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (owner_id, friend_id)
);

CREATE TABLE IF NOT EXISTS friend_requests (
	id          BIGSERIAL PRIMARY KEY,
	sender_id   BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	receiver_id BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (sender_id, receiver_id)
);
CREATE INDEX IF NOT EXISTS friend_requests_receiver_idx ON friend_requests (receiver_id, id);

CREATE TABLE IF NOT EXISTS comments (
	id         BIGSERIAL PRIMARY KEY,
	diary_id   BIGINT NOT NULL REFERENCES diaries(id) ON DELETE CASCADE,
	member_id  BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS comments_diary_idx ON comments (diary_id, created_at, id);

CREATE TABLE IF NOT EXISTS likes (
	diary_id   BIGINT NOT NULL REFERENCES diaries(id) ON DELETE CASCADE,
	member_id  BIGINT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (diary_id, member_id)
);
`

// --- FENÊTRE GÉNÉRIQUE ---

// table décrit comment lire une entité : colonnes, FROM (jointures incluses) et scan.
type table[T any] struct {
	name    string
	columns string
	from    string
	scan    func(row pgx.Row) (T, error)
}

// windowQuery traduit une fenêtre en SQL paramétré.
func (t table[T]) windowQuery(w listing.Window[T]) (string, []any) {
	where, predArgs, n := w.Predicate.Clause().Render(1)
	args := append([]any{}, predArgs...)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s", t.columns, t.from, where)

	dir := w.Order.Direction.SQL()
	if w.After != nil {
		op := ">"
		if w.Order.Direction == listing.Desc {
			op = "<"
		}
		fmt.Fprintf(&b, " AND %s.id %s $%d", t.name, op, n)
		args = append(args, *w.After)
		n++
	}

	if w.Order.ByCreation {
		fmt.Fprintf(&b, " ORDER BY %s.created_at %s, %s.id %s", t.name, dir, t.name, dir)
	} else {
		fmt.Fprintf(&b, " ORDER BY %s.id %s", t.name, dir)
	}

	fmt.Fprintf(&b, " LIMIT $%d", n)
	args = append(args, w.Limit)
	n++
	if w.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET $%d", n)
		args = append(args, w.Offset)
	}
	return b.String(), args
}

// fetch : un seul aller-retour SQL par page.
func (t table[T]) fetch(ctx context.Context, db querier, w listing.Window[T]) ([]T, error) {
	query, args := t.windowQuery(w)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	defer rows.Close()

	out := make([]T, 0, w.Limit)
	for rows.Next() {
		item, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// --- HELPERS ---

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// handleError traduit les erreurs PostgreSQL en erreurs du domaine.
func handleError(err, notFound, conflict error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			if conflict != nil {
				return conflict
			}
		case foreignKeyViolation:
			if notFound != nil {
				return notFound
			}
		}
	}
	return err
}
