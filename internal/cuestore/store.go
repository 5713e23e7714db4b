package cuestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/iorilu/edge-tts/internal/config"
	_ "modernc.org/sqlite"
)

// Document is one stored subtitle result.
type Document struct {
	ID        int64
	SessionID string
	Voice     string
	CueCount  int
	SRT       string
	CreatedAt time.Time
}

// ErrNotFound reports a missing session document.
var ErrNotFound = errors.New("subtitle document not found")

// Store keeps finished subtitle documents in SQLite.
type Store struct {
	db    *sql.DB
	cfg   config.CueStoreConfig
	log   *slog.Logger
	clock func() time.Time
}

// Open initializes the store according to config. Ephemeral mode skips the
// database entirely; every write becomes a no-op.
func Open(ctx context.Context, cfg config.CueStoreConfig, log *slog.Logger) (*Store, error) {
	if cfg.RetentionMode == "ephemeral" {
		return &Store{cfg: cfg, log: log, clock: time.Now}, nil
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, cfg: cfg, log: log, clock: time.Now}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.VacuumOnStart {
		if err := s.vacuum(ctx); err != nil {
			log.Warn("cue store vacuum failed", slog.String("error", err.Error()))
		}
	}

	if err := s.Prune(ctx); err != nil {
		log.Warn("cue store prune on start failed", slog.String("error", err.Error()))
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	ddl := `
CREATE TABLE IF NOT EXISTS subtitle_documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL UNIQUE,
    voice TEXT,
    cue_count INTEGER NOT NULL,
    srt TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_created ON subtitle_documents(created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

func (s *Store) vacuum(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveDocument writes (or replaces) the subtitle document for a session.
func (s *Store) SaveDocument(ctx context.Context, doc Document) error {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.clock().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subtitle_documents(session_id, voice, cue_count, srt, created_at)
		 VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET voice=excluded.voice, cue_count=excluded.cue_count,
		   srt=excluded.srt, created_at=excluded.created_at`,
		doc.SessionID, doc.Voice, doc.CueCount, doc.SRT, doc.CreatedAt)
	return err
}

// GetDocument retrieves the stored document for a session.
func (s *Store) GetDocument(ctx context.Context, sessionID string) (Document, error) {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return Document{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, voice, cue_count, srt, created_at
		 FROM subtitle_documents WHERE session_id = ?`, sessionID)
	var doc Document
	var created string
	if err := row.Scan(&doc.ID, &doc.SessionID, &doc.Voice, &doc.CueCount, &doc.SRT, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
		doc.CreatedAt = ts
	}
	return doc, nil
}

// ListRecent retrieves up to limit documents, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Document, error) {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, voice, cue_count, srt, created_at
		 FROM subtitle_documents ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var created string
		if err := rows.Scan(&doc.ID, &doc.SessionID, &doc.Voice, &doc.CueCount, &doc.SRT, &created); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			doc.CreatedAt = ts
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Prune applies the configured retention. Called on startup; callers may
// also schedule it.
func (s *Store) Prune(ctx context.Context) error {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if s.cfg.RetentionDays > 0 {
		cutoff := s.clock().Add(-time.Duration(s.cfg.RetentionDays) * 24 * time.Hour)
		if _, err = tx.ExecContext(ctx, `DELETE FROM subtitle_documents WHERE created_at < ?`, cutoff.UTC()); err != nil {
			return err
		}
	}
	if s.cfg.MaxSessions > 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM subtitle_documents WHERE session_id IN (
			SELECT session_id FROM subtitle_documents ORDER BY created_at DESC LIMIT -1 OFFSET ?
		)`, s.cfg.MaxSessions)
		if err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}
