package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stitchworks/stitch/internal/analyzer"
	"github.com/stitchworks/stitch/internal/workspace"
)

// Store persists project snapshots and session results. It is the
// downstream collaborator of the editing loop: the loop itself never
// touches it, so an aborted session leaves the last snapshot intact and
// re-running the session is always safe.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the store at dbPath.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	// WAL mode allows a reader alongside the single writer
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support multiple writers well
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		project_id TEXT PRIMARY KEY,
		root_path  TEXT NOT NULL,
		version    INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS files (
		project_id TEXT NOT NULL,
		path       TEXT NOT NULL,
		content    TEXT NOT NULL,
		language   TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (project_id, path),
		FOREIGN KEY (project_id) REFERENCES projects(project_id)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		session_id     TEXT PRIMARY KEY,
		project_id     TEXT NOT NULL,
		request        TEXT NOT NULL,
		agent_response TEXT NOT NULL,
		summary        TEXT NOT NULL,
		env_vars       TEXT NOT NULL,
		input_tokens   INTEGER NOT NULL,
		output_tokens  INTEGER NOT NULL,
		turn_count     INTEGER NOT NULL,
		created_at     INTEGER NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(project_id)
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveSnapshot stores (or replaces) a project's file snapshot at version 1.
func (s *Store) SaveSnapshot(ctx context.Context, projectID, rootPath string, files []workspace.FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO projects (project_id, root_path, version, created_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(project_id) DO UPDATE SET root_path = excluded.root_path, version = 1`,
		projectID, rootPath, now); err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("failed to clear files: %w", err)
	}
	for _, f := range files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (project_id, path, content, language, updated_at) VALUES (?, ?, ?, ?, ?)`,
			projectID, f.Path, f.Content, f.Language, now); err != nil {
			return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot returns the persisted file snapshot, ordered by path.
func (s *Store) LoadSnapshot(ctx context.Context, projectID string) ([]workspace.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, content, language FROM files WHERE project_id = ? ORDER BY path`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []workspace.FileRecord
	for rows.Next() {
		var f workspace.FileRecord
		if err := rows.Scan(&f.Path, &f.Content, &f.Language); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Version returns the project's current version counter.
func (s *Store) Version(ctx context.Context, projectID string) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM projects WHERE project_id = ?`, projectID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read project version: %w", err)
	}
	return version, nil
}

// SaveResult writes a finished session: changed files are applied to the
// persisted snapshot, the project version is bumped when anything
// changed, and the transcript row stores the visible reply.
func (s *Store) SaveResult(ctx context.Context, rec Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, f := range rec.Result.ChangedFiles {
		if f.Action == analyzer.ActionDelete {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM files WHERE project_id = ? AND path = ?`, rec.ProjectID, f.Path); err != nil {
				return fmt.Errorf("failed to delete file %s: %w", f.Path, err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (project_id, path, content, language, updated_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(project_id, path) DO UPDATE SET content = excluded.content,
			 language = excluded.language, updated_at = excluded.updated_at`,
			rec.ProjectID, f.Path, f.Content, f.Language, now); err != nil {
			return fmt.Errorf("failed to upsert file %s: %w", f.Path, err)
		}
	}

	if len(rec.Result.ChangedFiles) > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET version = version + 1 WHERE project_id = ?`, rec.ProjectID); err != nil {
			return fmt.Errorf("failed to bump project version: %w", err)
		}
	}

	envVars, err := json.Marshal(rec.Result.EnvVarsNeeded)
	if err != nil {
		return fmt.Errorf("failed to marshal env vars: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, project_id, request, agent_response, summary,
		 env_vars, input_tokens, output_tokens, turn_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProjectID, rec.Request, rec.Result.AgentResponse, rec.Result.Summary,
		string(envVars), rec.Result.TokenUsage.Input, rec.Result.TokenUsage.Output,
		rec.Result.TurnCount, createdAt.Unix()); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return tx.Commit()
}
