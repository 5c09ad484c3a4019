package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/pkg/listing"
)

// --- FRIEND EDGES ---

type pgFriends struct{ db querier }

func (p *Postgres) Friends() ports.FriendStore { return pgFriends{p.db} }

func (r pgFriends) IsFriend(ctx context.Context, ownerID, friendID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM friends WHERE owner_id = $1 AND friend_id = $2)`,
		ownerID, friendID,
	).Scan(&ok)
	return ok, err
}

func (r pgFriends) FriendIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT friend_id FROM friends WHERE owner_id = $1 ORDER BY friend_id`, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// Link insère les deux lignes en une instruction : jamais d'arête fantôme.
func (r pgFriends) Link(ctx context.Context, a, b int64) error {
	pair := domain.Pair(a, b, time.Now().UTC())
	_, err := r.db.Exec(ctx, `
		INSERT INTO friends (owner_id, friend_id, created_at)
		VALUES ($1, $2, $5), ($3, $4, $5)
		ON CONFLICT (owner_id, friend_id) DO NOTHING
	`, pair[0].OwnerID, pair[0].FriendID, pair[1].OwnerID, pair[1].FriendID, pair[0].CreatedAt)
	return handleError(err, domain.ErrMemberNotFound, nil)
}

func (r pgFriends) Unlink(ctx context.Context, a, b int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM friends
		WHERE (owner_id = $1 AND friend_id = $2) OR (owner_id = $2 AND friend_id = $1)
	`, a, b)
	return err
}

// --- FRIEND REQUESTS ---

var requestTable = table[*domain.FriendRequest]{
	name: "friend_requests",
	columns: `friend_requests.id, friend_requests.sender_id, friend_requests.receiver_id, friend_requests.created_at,
		members.id, members.email, members.nickname, members.profile_image, members.created_at`,
	from: "friend_requests JOIN members ON members.id = friend_requests.sender_id",
	scan: func(row pgx.Row) (*domain.FriendRequest, error) {
		var (
			req    domain.FriendRequest
			sender domain.Member
		)
		err := row.Scan(&req.ID, &req.SenderID, &req.ReceiverID, &req.CreatedAt,
			&sender.ID, &sender.Email, &sender.Nickname, &sender.ProfileImage, &sender.CreatedAt)
		if err != nil {
			return nil, err
		}
		req.Sender = &sender
		return &req, nil
	},
}

type pgRequests struct{ db querier }

func (p *Postgres) Requests() ports.FriendRequestRepository { return pgRequests{p.db} }

func (r pgRequests) Save(ctx context.Context, req *domain.FriendRequest) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO friend_requests (sender_id, receiver_id) VALUES ($1, $2) RETURNING id, created_at`,
		req.SenderID, req.ReceiverID,
	).Scan(&req.ID, &req.CreatedAt)
	return handleError(err, domain.ErrMemberNotFound, domain.ErrDuplicateRequest)
}

func (r pgRequests) FindByID(ctx context.Context, id int64) (*domain.FriendRequest, error) {
	return r.findOne(ctx, `WHERE friend_requests.id = $1`, id)
}

func (r pgRequests) FindPending(ctx context.Context, senderID, receiverID int64) (*domain.FriendRequest, error) {
	return r.findOne(ctx, `WHERE friend_requests.sender_id = $1 AND friend_requests.receiver_id = $2`, senderID, receiverID)
}

func (r pgRequests) findOne(ctx context.Context, where string, args ...any) (*domain.FriendRequest, error) {
	query := `SELECT ` + requestTable.columns + ` FROM ` + requestTable.from + ` ` + where
	req, err := requestTable.scan(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, handleError(err, domain.ErrRequestNotFound, nil)
	}
	return req, nil
}

func (r pgRequests) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM friend_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r pgRequests) DeleteBetween(ctx context.Context, a, b int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM friend_requests
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
	`, a, b)
	return err
}

// --- ACCEPTATION ---

type pgAcceptor struct{ db *pgxpool.Pool }

func (p *Postgres) Acceptor() ports.FriendshipAcceptor { return pgAcceptor{p.db} }

// Accept : arêtes et purge des demandes dans la même transaction.
func (a pgAcceptor) Accept(ctx context.Context, senderID, receiverID int64) error {
	return pgx.BeginFunc(ctx, a.db, func(tx pgx.Tx) error {
		if err := (pgFriends{tx}).Link(ctx, senderID, receiverID); err != nil {
			return err
		}
		return pgRequests{tx}.DeleteBetween(ctx, senderID, receiverID)
	})
}

func (r pgRequests) Fetch(ctx context.Context, w listing.Window[*domain.FriendRequest]) ([]*domain.FriendRequest, error) {
	return requestTable.fetch(ctx, r.db, w)
}
