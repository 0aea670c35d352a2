package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/askme-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*Store)(nil)

// Store is the SQLite-backed document store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.askme/data/knowledge.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".askme", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "knowledge.db")

	// WAL mode for better concurrency between readers and the replace
	// transactions.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ReplaceDocument atomically stores a document record and its full set
// of embeddings, removing any prior record for the same file path.
func (s *Store) ReplaceDocument(ctx context.Context, doc *domain.DocumentRecord, embeddings []domain.EmbeddingRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// The cascade removes the prior embeddings with the old record.
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE file_path = ?", doc.FilePath); err != nil {
		return fmt.Errorf("removing prior document: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents
			(id, file_path, file_name, file_type, file_size_bytes, last_modified, chunk_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.FilePath, doc.FileName, doc.FileType, doc.FileSizeBytes,
		doc.LastModified, doc.ChunkCount, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeddings
			(document_id, chunk_index, text_chunk, vector, dimensions, model_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, emb := range embeddings {
		vectorBlob := float32SliceToBytes(emb.Vector)
		if _, err := stmt.ExecContext(ctx, emb.DocumentID, emb.ChunkIndex, emb.TextChunk,
			vectorBlob, emb.Dimensions, emb.ModelVersion, emb.CreatedAt); err != nil {
			return fmt.Errorf("saving embedding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocumentByPath retrieves a document by its file path.
func (s *Store) GetDocumentByPath(ctx context.Context, path string) (*domain.DocumentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_path, file_name, file_type, file_size_bytes, last_modified, chunk_count, created_at, updated_at
		FROM documents WHERE file_path = ?
	`, path)

	var doc domain.DocumentRecord
	if err := row.Scan(&doc.ID, &doc.FilePath, &doc.FileName, &doc.FileType, &doc.FileSizeBytes,
		&doc.LastModified, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	return &doc, nil
}

// ListDocuments returns all indexed documents ordered by file name.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_path, file_name, file_type, file_size_bytes, last_modified, chunk_count, created_at, updated_at
		FROM documents ORDER BY file_name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.DocumentRecord
		if err := rows.Scan(&doc.ID, &doc.FilePath, &doc.FileName, &doc.FileType, &doc.FileSizeBytes,
			&doc.LastModified, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocumentByPath removes a document and, by cascade, all of its
// embeddings. Deleting an unknown path is a no-op.
func (s *Store) DeleteDocumentByPath(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE file_path = ?", path)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// Clear removes every document and embedding from the store.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents")
	if err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

// ListEmbeddings returns every stored embedding joined with its owning
// document, ordered by file path then chunk index.
func (s *Store) ListEmbeddings(ctx context.Context) ([]driven.StoredEmbedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.document_id, e.chunk_index, e.text_chunk, e.vector, e.dimensions, e.model_version, e.created_at,
		       d.file_name, d.file_path
		FROM embeddings e
		JOIN documents d ON d.id = e.document_id
		ORDER BY d.file_path, e.chunk_index
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var out []driven.StoredEmbedding //nolint:prealloc // size unknown from query
	for rows.Next() {
		var emb driven.StoredEmbedding
		var vectorBlob []byte
		if err := rows.Scan(&emb.DocumentID, &emb.ChunkIndex, &emb.TextChunk, &vectorBlob,
			&emb.Dimensions, &emb.ModelVersion, &emb.CreatedAt, &emb.FileName, &emb.FilePath); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}

		emb.Vector = bytesToFloat32Slice(vectorBlob)
		out = append(out, emb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	return out, nil
}

// CountEmbeddings returns the total number of stored embeddings.
func (s *Store) CountEmbeddings(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
