// Package cache ajoute un cache Redis en lecture devant le FriendStore.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// FriendCache met en cache l'ensemble des amis d'un membre (un SET par membre).
// Redis indisponible => on lit directement la source ; le breaker évite de
// payer le timeout à chaque requête.
type FriendCache struct {
	next    ports.FriendStore
	client  redis.UniversalClient
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
}

var _ ports.FriendStore = (*FriendCache)(nil)

func NewFriendCache(next ports.FriendStore, client redis.UniversalClient, ttl time.Duration) *FriendCache {
	return &FriendCache{
		next:   next,
		client: client,
		ttl:    ttl,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "redis-friends",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func key(ownerID int64) string { return fmt.Sprintf("friends:%d", ownerID) }

// genKey compte les invalidations d'un membre. Un ensemble lu avant une
// invalidation n'est pas réécrit après elle.
func genKey(ownerID int64) string { return fmt.Sprintf("friends:gen:%d", ownerID) }

var errStaleSet = errors.New("friend set changed while loading")

// Un membre sans ami est mis en cache avec une sentinelle pour distinguer
// "vide" de "absent".
const emptyMarker = "-"

func (c *FriendCache) FriendIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	if ids, ok := c.load(ctx, ownerID); ok {
		return ids, nil
	}
	gen, cacheable := c.generation(ctx, ownerID)
	ids, err := c.next.FriendIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if cacheable {
		c.store(ctx, ownerID, gen, ids)
	}
	return ids, nil
}

func (c *FriendCache) IsFriend(ctx context.Context, ownerID, friendID int64) (bool, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		pipe := c.client.Pipeline()
		exists := pipe.Exists(ctx, key(ownerID))
		member := pipe.SIsMember(ctx, key(ownerID), strconv.FormatInt(friendID, 10))
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		if exists.Val() == 0 {
			return nil, nil
		}
		return member.Val(), nil
	})
	if err == nil && res != nil {
		return res.(bool), nil
	}
	if err != nil {
		slog.DebugContext(ctx, "friend cache bypassed", "error", err)
	}

	// Miss : on charge l'ensemble complet pour les prochaines lectures
	ids, err := c.FriendIDs(ctx, ownerID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == friendID {
			return true, nil
		}
	}
	return false, nil
}

// Link et Unlink écrivent dans la source puis invalident les deux membres.
func (c *FriendCache) Link(ctx context.Context, a, b int64) error {
	if err := c.next.Link(ctx, a, b); err != nil {
		return err
	}
	c.invalidate(ctx, a, b)
	return nil
}

func (c *FriendCache) Unlink(ctx context.Context, a, b int64) error {
	if err := c.next.Unlink(ctx, a, b); err != nil {
		return err
	}
	c.invalidate(ctx, a, b)
	return nil
}

type cachedAcceptor struct {
	next  ports.FriendshipAcceptor
	cache *FriendCache
}

// Acceptor enveloppe l'acceptation transactionnelle pour invalider la paire au commit.
func (c *FriendCache) Acceptor(next ports.FriendshipAcceptor) ports.FriendshipAcceptor {
	return cachedAcceptor{next: next, cache: c}
}

func (a cachedAcceptor) Accept(ctx context.Context, senderID, receiverID int64) error {
	if err := a.next.Accept(ctx, senderID, receiverID); err != nil {
		return err
	}
	a.cache.invalidate(ctx, senderID, receiverID)
	return nil
}

func (c *FriendCache) load(ctx context.Context, ownerID int64) ([]int64, bool) {
	res, err := c.breaker.Execute(func() (any, error) {
		return c.client.SMembers(ctx, key(ownerID)).Result()
	})
	if err != nil {
		slog.DebugContext(ctx, "friend cache bypassed", "error", err)
		return nil, false
	}
	members := res.([]string)
	if len(members) == 0 {
		return nil, false
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if m == emptyMarker {
			continue
		}
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func (c *FriendCache) generation(ctx context.Context, ownerID int64) (int64, bool) {
	res, err := c.breaker.Execute(func() (any, error) {
		n, err := c.client.Get(ctx, genKey(ownerID)).Int64()
		if errors.Is(err, redis.Nil) {
			return int64(0), nil
		}
		return n, err
	})
	if err != nil {
		slog.DebugContext(ctx, "friend cache bypassed", "error", err)
		return 0, false
	}
	return res.(int64), true
}

// store n'écrit l'ensemble que si aucune invalidation n'a eu lieu depuis la
// lecture de gen (WATCH sur le compteur).
func (c *FriendCache) store(ctx context.Context, ownerID, gen int64, ids []int64) {
	members := make([]any, 0, len(ids)+1)
	members = append(members, emptyMarker)
	for _, id := range ids {
		members = append(members, strconv.FormatInt(id, 10))
	}

	_, err := c.breaker.Execute(func() (any, error) {
		err := c.client.Watch(ctx, func(tx *redis.Tx) error {
			cur, err := tx.Get(ctx, genKey(ownerID)).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if cur != gen {
				return errStaleSet
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key(ownerID))
				pipe.SAdd(ctx, key(ownerID), members...)
				pipe.Expire(ctx, key(ownerID), c.ttl)
				return nil
			})
			return err
		}, genKey(ownerID))
		// Course perdue : pas une panne de Redis, le breaker n'a pas à compter
		if errors.Is(err, errStaleSet) || errors.Is(err, redis.TxFailedErr) {
			slog.DebugContext(ctx, "friend cache store skipped, set changed", "owner_id", ownerID)
			return nil, nil
		}
		return nil, err
	})
	if err != nil {
		slog.DebugContext(ctx, "friend cache store skipped", "owner_id", ownerID, "error", err)
	}
}

// invalidate incrémente le compteur puis supprime les ensembles. Si Redis
// échoue ici, un ensemble périmé peut survivre au plus un TTL.
func (c *FriendCache) invalidate(ctx context.Context, ids ...int64) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	if _, err := c.breaker.Execute(func() (any, error) {
		return c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range ids {
				pipe.Incr(ctx, genKey(id))
				pipe.Expire(ctx, genKey(id), c.genTTL())
			}
			pipe.Del(ctx, keys...)
			return nil
		})
	}); err != nil {
		slog.WarnContext(ctx, "friend cache invalidation failed", "keys", keys, "error", err)
	}
}

// Le compteur doit survivre à toute lecture en cours ; au-delà il est inutile.
func (c *FriendCache) genTTL() time.Duration {
	if c.ttl <= 0 {
		return time.Hour
	}
	return 2 * c.ttl
}
