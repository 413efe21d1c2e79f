package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/preetimant/coursesensei/pkg/api"
	"github.com/preetimant/coursesensei/pkg/graph"
	"github.com/preetimant/coursesensei/pkg/store"
)

// loadKnowledgeBase builds the graph from a snapshot file or a SQLite
// database, chosen by extension.
func loadKnowledgeBase(ctx context.Context, path string) (*graph.Graph, api.KnowledgeBaseInfo, error) {
	schema := graph.CourseSchema()

	if _, err := graph.FormatFromPath(path); err == nil {
		snap, err := graph.LoadSnapshotFile(path)
		if err != nil {
			return nil, api.KnowledgeBaseInfo{}, err
		}
		g, err := graph.Build(schema, snap)
		if err != nil {
			return nil, api.KnowledgeBaseInfo{}, fmt.Errorf("invalid knowledge base %s: %w", path, err)
		}
		sum, err := store.Checksum(snap)
		if err != nil {
			return nil, api.KnowledgeBaseInfo{}, err
		}
		return g, api.KnowledgeBaseInfo{Source: path, Checksum: sum, Nodes: g.Len()}, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
	default:
		return nil, api.KnowledgeBaseInfo{}, fmt.Errorf("unsupported knowledge base %s: want .db, .json or .yaml", path)
	}

	st, err := store.NewStore(path)
	if err != nil {
		return nil, api.KnowledgeBaseInfo{}, err
	}
	defer st.Close()

	info, err := st.Info(ctx)
	if err != nil {
		if store.IsEmpty(err) {
			return nil, api.KnowledgeBaseInfo{}, fmt.Errorf("%s: %w (run 'coursesensei import' first)", path, err)
		}
		return nil, api.KnowledgeBaseInfo{}, err
	}
	g, err := st.LoadGraph(ctx, schema)
	if err != nil {
		return nil, api.KnowledgeBaseInfo{}, err
	}
	return g, api.KnowledgeBaseInfo{Source: info.Source, Checksum: info.Checksum, Nodes: g.Len()}, nil
}
