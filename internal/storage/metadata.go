package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// ErrArtifactNotFound is returned by GetArtifact for unknown IDs.
var ErrArtifactNotFound = errors.New("artifact not found")

// MetadataDB indexes persisted artifacts in SQLite
type MetadataDB struct {
	db *sql.DB
}

// NewMetadataDB creates a new metadata database
func NewMetadataDB(dbPath string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS artifacts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		source_type TEXT NOT NULL,
		name TEXT NOT NULL,
		local_path TEXT NOT NULL,
		remote_url TEXT NOT NULL DEFAULT '',
		size_bytes INTEGER NOT NULL DEFAULT 0,
		word_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_created_at ON artifacts(created_at);
	CREATE INDEX IF NOT EXISTS idx_artifacts_kind ON artifacts(kind);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MetadataDB{db: db}, nil
}

// SaveArtifact records one persisted artifact
func (mdb *MetadataDB) SaveArtifact(a *types.Artifact) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO artifacts (id, kind, source_type, name, local_path, remote_url, size_bytes, word_count, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := mdb.db.Exec(query, a.ID, a.Kind, a.SourceType, sanitizeFilename(a.Name), a.LocalPath,
		a.RemoteURL, a.SizeBytes, a.WordCount, a.CreatedAt.UTC())
	if err != nil {
		return types.Storage("saving artifact metadata", err)
	}

	return nil
}

// SetRemoteURL records where an artifact was mirrored
func (mdb *MetadataDB) SetRemoteURL(id, url string) error {
	res, err := mdb.db.Exec(`UPDATE artifacts SET remote_url = ? WHERE id = ?`, url, id)
	if err != nil {
		return types.Storage("updating artifact remote url", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrArtifactNotFound
	}
	return nil
}

// GetArtifact retrieves artifact metadata by ID
func (mdb *MetadataDB) GetArtifact(id string) (*types.Artifact, error) {
	query := `
	SELECT id, kind, source_type, name, local_path, remote_url, size_bytes, word_count, created_at
	FROM artifacts WHERE id = ?
	`

	a, err := scanArtifact(mdb.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, types.Storage("reading artifact metadata", err)
	}
	return a, nil
}

// ListArtifacts returns the newest artifacts first. An empty kind lists all kinds.
func (mdb *MetadataDB) ListArtifacts(kind string, limit int) ([]types.Artifact, error) {
	query := `
	SELECT id, kind, source_type, name, local_path, remote_url, size_bytes, word_count, created_at
	FROM artifacts WHERE (? = '' OR kind = ?) ORDER BY seq DESC LIMIT ?
	`

	rows, err := mdb.db.Query(query, kind, kind, limit)
	if err != nil {
		return nil, types.Storage("listing artifacts", err)
	}
	defer rows.Close()

	artifacts := []types.Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, types.Storage("scanning artifact", err)
		}
		artifacts = append(artifacts, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, types.Storage("listing artifacts", err)
	}
	return artifacts, nil
}

// Close closes the database connection
func (mdb *MetadataDB) Close() error {
	return mdb.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (*types.Artifact, error) {
	var a types.Artifact
	err := row.Scan(&a.ID, &a.Kind, &a.SourceType, &a.Name, &a.LocalPath, &a.RemoteURL,
		&a.SizeBytes, &a.WordCount, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
