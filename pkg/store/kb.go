package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/preetimant/coursesensei/pkg/graph"
)

// Checksum returns a short content hash of a snapshot.
func Checksum(snap graph.Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}

// ImportSnapshot validates snap against the schema and replaces the stored
// knowledge base with it in a single transaction.
func (s *Store) ImportSnapshot(ctx context.Context, schema *graph.Schema, snap graph.Snapshot, source string) (ImportInfo, error) {
	if _, err := graph.Build(schema, snap); err != nil {
		return ImportInfo{}, fmt.Errorf("snapshot does not validate: %w", err)
	}
	checksum, err := Checksum(snap)
	if err != nil {
		return ImportInfo{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportInfo{}, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"attributes", "relations", "nodes", "kb_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return ImportInfo{}, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	nodeStmt, err := tx.PrepareContext(ctx, "INSERT INTO nodes (id, type, position) VALUES (?, ?, ?)")
	if err != nil {
		return ImportInfo{}, fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()
	attrStmt, err := tx.PrepareContext(ctx, "INSERT INTO attributes (node_id, name, position, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return ImportInfo{}, fmt.Errorf("failed to prepare attribute insert: %w", err)
	}
	defer attrStmt.Close()
	relStmt, err := tx.PrepareContext(ctx, "INSERT INTO relations (node_id, name, position, target_id) VALUES (?, ?, ?, ?)")
	if err != nil {
		return ImportInfo{}, fmt.Errorf("failed to prepare relation insert: %w", err)
	}
	defer relStmt.Close()

	for pos, rec := range snap.Nodes {
		if _, err := nodeStmt.ExecContext(ctx, rec.ID, string(rec.Type), pos); err != nil {
			return ImportInfo{}, fmt.Errorf("failed to insert node %s: %w", rec.ID, err)
		}
		for name, vals := range rec.Attributes {
			for i, v := range vals {
				if _, err := attrStmt.ExecContext(ctx, rec.ID, name, i, v); err != nil {
					return ImportInfo{}, fmt.Errorf("failed to insert attribute %s.%s: %w", rec.ID, name, err)
				}
			}
		}
	}
	// Relations go in after every node exists so foreign keys hold.
	for _, rec := range snap.Nodes {
		for name, targets := range rec.Relations {
			for i, target := range targets {
				if _, err := relStmt.ExecContext(ctx, rec.ID, name, i, target); err != nil {
					return ImportInfo{}, fmt.Errorf("failed to insert relation %s.%s: %w", rec.ID, name, err)
				}
			}
		}
	}

	info := ImportInfo{
		Source:     source,
		Checksum:   checksum,
		ImportedAt: time.Now().UTC().Truncate(time.Second),
		Nodes:      len(snap.Nodes),
	}
	meta := map[string]string{
		metaSource:     info.Source,
		metaChecksum:   info.Checksum,
		metaImportedAt: info.ImportedAt.Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO kb_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return ImportInfo{}, fmt.Errorf("failed to record %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportInfo{}, fmt.Errorf("failed to commit import: %w", err)
	}
	return info, nil
}

// Info returns the metadata of the last import.
func (s *Store) Info(ctx context.Context) (ImportInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM kb_meta")
	if err != nil {
		return ImportInfo{}, fmt.Errorf("failed to query kb_meta: %w", err)
	}
	defer rows.Close()

	var info ImportInfo
	found := false
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return ImportInfo{}, fmt.Errorf("failed to scan kb_meta: %w", err)
		}
		found = true
		switch k {
		case metaSource:
			info.Source = v
		case metaChecksum:
			info.Checksum = v
		case metaImportedAt:
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				info.ImportedAt = t
			}
		}
	}
	if err := rows.Err(); err != nil {
		return ImportInfo{}, err
	}
	if !found {
		return ImportInfo{}, ErrEmpty
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes").Scan(&info.Nodes); err != nil {
		return ImportInfo{}, fmt.Errorf("failed to count nodes: %w", err)
	}
	return info, nil
}

// LoadSnapshot reads the stored knowledge base back in import order.
func (s *Store) LoadSnapshot(ctx context.Context) (graph.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, type FROM nodes ORDER BY position")
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("failed to query nodes: %w", err)
	}
	var snap graph.Snapshot
	index := make(map[string]int)
	for rows.Next() {
		var rec graph.NodeRecord
		var typ string
		if err := rows.Scan(&rec.ID, &typ); err != nil {
			rows.Close()
			return graph.Snapshot{}, fmt.Errorf("failed to scan node: %w", err)
		}
		rec.Type = graph.NodeType(typ)
		index[rec.ID] = len(snap.Nodes)
		snap.Nodes = append(snap.Nodes, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return graph.Snapshot{}, err
	}
	if len(snap.Nodes) == 0 {
		return graph.Snapshot{}, ErrEmpty
	}

	err = s.scanPairs(ctx, "SELECT node_id, name, value FROM attributes ORDER BY node_id, name, position", func(id, name, value string) {
		rec := &snap.Nodes[index[id]]
		if rec.Attributes == nil {
			rec.Attributes = make(map[string]graph.Values)
		}
		rec.Attributes[name] = append(rec.Attributes[name], value)
	})
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("failed to load attributes: %w", err)
	}

	err = s.scanPairs(ctx, "SELECT node_id, name, target_id FROM relations ORDER BY node_id, name, position", func(id, name, target string) {
		rec := &snap.Nodes[index[id]]
		if rec.Relations == nil {
			rec.Relations = make(map[string][]string)
		}
		rec.Relations[name] = append(rec.Relations[name], target)
	})
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("failed to load relations: %w", err)
	}

	return snap, nil
}

func (s *Store) scanPairs(ctx context.Context, query string, fn func(id, name, value string)) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id, name, value string
		if err := rows.Scan(&id, &name, &value); err != nil {
			return err
		}
		fn(id, name, value)
	}
	return rows.Err()
}

// LoadGraph loads the stored knowledge base and builds it with schema.
func (s *Store) LoadGraph(ctx context.Context, schema *graph.Schema) (*graph.Graph, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(schema, snap)
	if err != nil {
		return nil, fmt.Errorf("stored knowledge base does not validate: %w", err)
	}
	return g, nil
}

// IsEmpty reports whether err means nothing has been imported yet.
func IsEmpty(err error) bool {
	return errors.Is(err, ErrEmpty)
}

