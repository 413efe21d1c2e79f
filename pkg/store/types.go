package store

import (
	"errors"
	"time"
)

// ErrEmpty is returned when loading a knowledge base that was never imported.
var ErrEmpty = errors.New("knowledge base is empty")

// ImportInfo describes the snapshot currently held by a store.
type ImportInfo struct {
	Source     string    `json:"source"`
	Checksum   string    `json:"checksum"`
	ImportedAt time.Time `json:"imported_at"`
	Nodes      int       `json:"nodes"`
}

const (
	metaSource     = "source"
	metaChecksum   = "checksum"
	metaImportedAt = "imported_at"
)
