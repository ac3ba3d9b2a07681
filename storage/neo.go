package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/MegaGrindStone/skyqa"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4J provides a Neo4j graph database implementation of the catalog.
// Objects are nodes carrying a name property; lookups project name, type and distance only.
type Neo4J struct {
	client  neo4j.DriverWithContext
	timeout time.Duration
}

// NewNeo4J creates a new Neo4j driver with the provided connection parameters and verifies that
// the server is reachable. The returned Neo4J instance must be closed with Close() when no longer
// needed to free up resources.
func NewNeo4J(ctx context.Context, target, user, password string) (Neo4J, error) {
	driver, err := neo4j.NewDriverWithContext(
		target,
		neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return Neo4J{}, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(context.Background())
		return Neo4J{}, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	return Neo4J{client: driver, timeout: 30 * time.Second}, nil
}

// Lookup retrieves the object projection by name, ignoring case.
func (n Neo4J) Lookup(ctx context.Context, name string) (skyqa.SkyObject, error) {
	res, err := n.session(ctx, func(ctx context.Context, sess neo4j.SessionWithContext) (any, error) {
		return sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			query := `
MATCH (obj)
WHERE toLower(obj.name) = toLower($object_name)
RETURN obj.name AS name, obj.type AS type, obj.distance_from_earth_ly AS distance
LIMIT 1`
			queryRes, err := tx.Run(ctx, query, map[string]any{
				"object_name": name,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to run query: %w", err)
			}

			records, err := queryRes.Collect(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to collect result: %w", err)
			}
			if len(records) == 0 {
				return nil, nil
			}
			return records[0].AsMap(), nil
		})
	})
	if err != nil {
		return skyqa.SkyObject{}, &skyqa.StorageError{Op: "neo4j lookup", Err: err}
	}
	if res == nil {
		return skyqa.SkyObject{}, skyqa.ErrObjectNotFound
	}
	values, ok := res.(map[string]any)
	if !ok {
		return skyqa.SkyObject{}, &skyqa.StorageError{
			Op:  "neo4j lookup",
			Err: fmt.Errorf("invalid result type, got %T, want map[string]any", res),
		}
	}

	obj, err := objectFromProjection(values)
	if err != nil {
		return skyqa.SkyObject{}, &skyqa.StorageError{Op: "neo4j lookup", Err: err}
	}
	return obj, nil
}

// ListNames returns the names of all objects in ascending order.
func (n Neo4J) ListNames(ctx context.Context) ([]string, error) {
	res, err := n.session(ctx, func(ctx context.Context, sess neo4j.SessionWithContext) (any, error) {
		return sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			query := `
MATCH (obj)
WHERE obj.name IS NOT NULL
RETURN obj.name AS name
ORDER BY obj.name`
			queryRes, err := tx.Run(ctx, query, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to run query: %w", err)
			}

			names := make([]string, 0)
			for record, err := range queryRes.Records(ctx) {
				if err != nil {
					return nil, fmt.Errorf("failed to get result: %w", err)
				}
				name, ok := record.Get("name")
				if !ok {
					return nil, fmt.Errorf("expected name key is not found")
				}
				str, ok := name.(string)
				if !ok {
					return nil, fmt.Errorf("invalid name type, got %T, want string", name)
				}
				names = append(names, str)
			}
			return names, nil
		})
	})
	if err != nil {
		return nil, &skyqa.StorageError{Op: "neo4j list names", Err: err}
	}
	names, ok := res.([]string)
	if !ok {
		return nil, &skyqa.StorageError{
			Op:  "neo4j list names",
			Err: fmt.Errorf("invalid result type: got %T, want []string", res),
		}
	}
	return names, nil
}

// Upsert creates or updates the node of obj. A node whose name differs only in case is renamed to
// obj's spelling first, so that names stay unique ignoring case.
func (n Neo4J) Upsert(ctx context.Context, obj skyqa.SkyObject) error {
	_, err := n.session(ctx, func(ctx context.Context, sess neo4j.SessionWithContext) (any, error) {
		return sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			renameRes, err := tx.Run(
				ctx,
				`
MATCH (obj:SkyObject)
WHERE toLower(obj.name) = toLower($name) AND obj.name <> $name
SET obj.name = $name`,
				map[string]any{"name": obj.Name},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to rename case variants: %w", err)
			}
			if _, err := renameRes.Consume(ctx); err != nil {
				return nil, fmt.Errorf("failed to rename case variants: %w", err)
			}

			mergeRes, err := tx.Run(
				ctx,
				`
MERGE (obj:SkyObject {name: $name})
SET obj += $properties`,
				map[string]any{
					"name":       obj.Name,
					"properties": objectProperties(obj),
				},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to merge object: %w", err)
			}
			return mergeRes.Consume(ctx)
		})
	})
	if err != nil {
		return &skyqa.StorageError{Op: "neo4j upsert", Err: err}
	}
	return nil
}

// Close terminates the connection to the Neo4j database.
func (n Neo4J) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

func (n Neo4J) session(
	ctx context.Context,
	sessFunc func(context.Context, neo4j.SessionWithContext) (any, error),
) (any, error) {
	sess := n.client.NewSession(ctx, neo4j.SessionConfig{})
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), n.timeout)
		defer closeCancel()
		_ = sess.Close(closeCtx)
	}()

	trxCtx, trxCancel := context.WithTimeout(ctx, n.timeout)
	defer trxCancel()

	return sessFunc(trxCtx, sess)
}
