package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MegaGrindStone/skyqa"
	kuzu "github.com/kuzudb/go-kuzu"
)

var errConnectionClosed = errors.New("connection is closed")

// Kuzu provides an embedded Kuzu graph database implementation of the catalog.
// It mirrors the Neo4J catalog: lookups project name, type and distance only.
type Kuzu struct {
	DB   *kuzu.Database
	Conn *kuzu.Connection
}

// NewKuzu opens the Kuzu database at dbPath and ensures its schema exists.
// The returned Kuzu instance must be closed with Close() when no longer needed.
func NewKuzu(dbPath string, systemConfig kuzu.SystemConfig) (Kuzu, error) {
	db, err := kuzu.OpenDatabase(dbPath, systemConfig)
	if err != nil {
		return Kuzu{}, fmt.Errorf("failed to create kuzu database: %w", err)
	}

	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return Kuzu{}, fmt.Errorf("failed to create kuzu connection: %w", err)
	}

	k := Kuzu{DB: db, Conn: conn}

	if err := k.SetupSchema(); err != nil {
		conn.Close()
		db.Close()
		return Kuzu{}, fmt.Errorf("failed to set up schema: %w", err)
	}

	return k, nil
}

// SetupSchema creates the SkyObject node table. It is idempotent.
func (k Kuzu) SetupSchema() error {
	nodeTableQuery := "CREATE NODE TABLE IF NOT EXISTS SkyObject (" +
		"name STRING, " +
		"`type` STRING, " +
		"distance_from_earth_ly DOUBLE, " +
		"size_km DOUBLE, " +
		"mass_kg DOUBLE, " +
		"right_ascension STRING, " +
		"declination STRING, " +
		"PRIMARY KEY (name))"

	res, err := k.Conn.Query(nodeTableQuery)
	if err != nil {
		return fmt.Errorf("failed to execute create SkyObject node table: %w", err)
	}
	res.Close()
	return nil
}

// Lookup retrieves the object projection by name, ignoring case.
func (k Kuzu) Lookup(_ context.Context, name string) (skyqa.SkyObject, error) {
	query := "MATCH (o:SkyObject) " +
		"WHERE lower(o.name) = lower($object_name) " +
		"RETURN o.name, o.`type`, o.distance_from_earth_ly " +
		"LIMIT 1"
	res, err := k.execute(query, map[string]any{"object_name": name})
	if err != nil {
		return skyqa.SkyObject{}, &skyqa.StorageError{Op: "kuzu lookup", Err: err}
	}
	defer res.Close()

	if !res.HasNext() {
		return skyqa.SkyObject{}, skyqa.ErrObjectNotFound
	}
	row, err := res.Next()
	if err != nil {
		return skyqa.SkyObject{}, &skyqa.StorageError{
			Op:  "kuzu lookup",
			Err: fmt.Errorf("failed to get result row: %w", err),
		}
	}

	values := make(map[string]any, 3)
	for i, key := range []string{"name", "type", "distance"} {
		v, err := row.GetValue(uint64(i))
		if err != nil {
			return skyqa.SkyObject{}, &skyqa.StorageError{
				Op:  "kuzu lookup",
				Err: fmt.Errorf("failed to get %s value: %w", key, err),
			}
		}
		values[key] = v
	}

	obj, err := objectFromProjection(values)
	if err != nil {
		return skyqa.SkyObject{}, &skyqa.StorageError{Op: "kuzu lookup", Err: err}
	}
	return obj, nil
}

// ListNames returns the names of all objects in ascending order.
func (k Kuzu) ListNames(context.Context) ([]string, error) {
	if k.Conn == nil {
		return nil, &skyqa.StorageError{Op: "kuzu list names", Err: errConnectionClosed}
	}
	res, err := k.Conn.Query(`MATCH (o:SkyObject) RETURN o.name ORDER BY o.name`)
	if err != nil {
		return nil, &skyqa.StorageError{Op: "kuzu list names", Err: err}
	}
	defer res.Close()

	names := make([]string, 0)
	for res.HasNext() {
		row, err := res.Next()
		if err != nil {
			return nil, &skyqa.StorageError{
				Op:  "kuzu list names",
				Err: fmt.Errorf("failed to get result row: %w", err),
			}
		}
		v, err := row.GetValue(0)
		if err != nil {
			return nil, &skyqa.StorageError{
				Op:  "kuzu list names",
				Err: fmt.Errorf("failed to get name value: %w", err),
			}
		}
		name, ok := v.(string)
		if !ok {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Upsert creates or updates the node of obj. Absent attributes are left untouched.
// The primary key cannot change, so a node whose name differs from obj's only in case is
// replaced by a node carrying the new spelling.
func (k Kuzu) Upsert(_ context.Context, obj skyqa.SkyObject) error {
	props := objectProperties(obj)
	delete(props, "name")

	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Parameters are prefixed so that property names such as type never clash with keywords.
	params := make(map[string]any, len(keys)+1)
	sets := make([]string, len(keys))
	for i, key := range keys {
		sets[i] = fmt.Sprintf("o.`%s` = $p_%s", key, key)
		params["p_"+key] = props[key]
	}
	params["name"] = obj.Name

	mergeQuery := fmt.Sprintf(`
MERGE (o:SkyObject {name: $name})
ON CREATE SET %[1]s
ON MATCH SET %[1]s`, strings.Join(sets, ", "))

	err := k.transaction(func() error {
		res, err := k.execute(`
MATCH (o:SkyObject)
WHERE lower(o.name) = lower($name) AND o.name <> $name
DETACH DELETE o`, map[string]any{"name": obj.Name})
		if err != nil {
			return fmt.Errorf("failed to remove case variants: %w", err)
		}
		res.Close()

		res, err = k.execute(mergeQuery, params)
		if err != nil {
			return err
		}
		res.Close()
		return nil
	})
	if err != nil {
		return &skyqa.StorageError{Op: "kuzu upsert", Err: err}
	}
	return nil
}

func (k Kuzu) transaction(fn func() error) error {
	if k.Conn == nil {
		return errConnectionClosed
	}
	res, err := k.Conn.Query("BEGIN TRANSACTION")
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	res.Close()

	if err := fn(); err != nil {
		if res, rbErr := k.Conn.Query("ROLLBACK"); rbErr == nil {
			res.Close()
		}
		return err
	}

	res, err = k.Conn.Query("COMMIT")
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	res.Close()
	return nil
}

// Close terminates the connection to the Kuzu database.
func (k *Kuzu) Close() {
	if k.Conn != nil {
		k.Conn.Close()
		k.Conn = nil
	}
	if k.DB != nil {
		k.DB.Close()
		k.DB = nil
	}
}

func (k Kuzu) execute(query string, params map[string]any) (*kuzu.QueryResult, error) {
	if k.Conn == nil {
		return nil, errConnectionClosed
	}
	prepped, err := k.Conn.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query: %w", err)
	}

	res, err := k.Conn.Execute(prepped, params)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	return res, nil
}
