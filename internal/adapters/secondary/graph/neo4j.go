package graph

import (
	"context"

	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jFriendStore stocke les amitiés comme deux relations FRIEND orientées.
type Neo4jFriendStore struct {
	driver neo4j.DriverWithContext
}

var _ ports.FriendStore = (*Neo4jFriendStore)(nil)

func NewNeo4jFriendStore(driver neo4j.DriverWithContext) *Neo4jFriendStore {
	return &Neo4jFriendStore{driver: driver}
}

// EnsureSchema crée l'index d'unicité sur Member.id
func (r *Neo4jFriendStore) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `CREATE CONSTRAINT member_id_unique IF NOT EXISTS FOR (m:Member) REQUIRE m.id IS UNIQUE`
		_, err := tx.Run(ctx, query, nil)
		return nil, err
	})
	return err
}

// Link : les deux flèches sont créées dans la même transaction.
func (r *Neo4jFriendStore) Link(ctx context.Context, a, b int64) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// MERGE est idempotent
		query := `
			MERGE (a:Member {id: $a})
			MERGE (b:Member {id: $b})
			MERGE (a)-[r1:FRIEND]->(b)
			ON CREATE SET r1.created_at = datetime()
			MERGE (b)-[r2:FRIEND]->(a)
			ON CREATE SET r2.created_at = datetime()
		`
		_, err := tx.Run(ctx, query, map[string]any{"a": a, "b": b})
		return nil, err
	})
	return err
}

func (r *Neo4jFriendStore) Unlink(ctx context.Context, a, b int64) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (a:Member {id: $a})-[r:FRIEND]-(b:Member {id: $b})
			DELETE r
		`
		_, err := tx.Run(ctx, query, map[string]any{"a": a, "b": b})
		return nil, err
	})
	return err
}

func (r *Neo4jFriendStore) IsFriend(ctx context.Context, ownerID, friendID int64) (bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			OPTIONAL MATCH (a:Member {id: $owner})-[r:FRIEND]->(b:Member {id: $friend})
			RETURN r IS NOT NULL AS friend
		`
		res, err := tx.Run(ctx, query, map[string]any{"owner": ownerID, "friend": friendID})
		if err != nil {
			return false, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return false, err
		}
		ok, _ := rec.Get("friend")
		b, _ := ok.(bool)
		return b, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (r *Neo4jFriendStore) FriendIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `MATCH (:Member {id: $owner})-[:FRIEND]->(f:Member) RETURN f.id AS id ORDER BY id`
		res, err := tx.Run(ctx, query, map[string]any{"owner": ownerID})
		if err != nil {
			return nil, err
		}
		ids := []int64{}
		for res.Next(ctx) {
			v, _ := res.Record().Get("id")
			if id, ok := v.(int64); ok {
				ids = append(ids, id)
			}
		}
		return ids, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]int64), nil
}
