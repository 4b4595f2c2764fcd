package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/pkg/filesystem"
	"github.com/doeshing/voicectl/internal/ports"
)

// sqliteTimeLayout is fixed width so text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS commands (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text TEXT NOT NULL,
	type TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	status TEXT NOT NULL,
	response TEXT NOT NULL,
	platform TEXT,
	user_agent TEXT
);
CREATE INDEX IF NOT EXISTS idx_commands_timestamp ON commands(timestamp DESC);
`

// SQLiteStore persists history in a local SQLite database.
type SQLiteStore struct {
	path string
	mu   sync.Mutex
	db   *sql.DB
}

// NewSQLiteStore builds an unopened store. An empty path selects ~/.voicectl/history.db.
func NewSQLiteStore(path string) *SQLiteStore {
	if path == "" {
		path = filesystem.DataPath("history.db")
	}
	return &SQLiteStore{path: path}
}

// Name implements ports.PersistentStore.
func (s *SQLiteStore) Name() string {
	return domain.StorageDriverSQLite
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Connect implements ports.PersistentStore.
func (s *SQLiteStore) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return fmt.Errorf("sqlite pragma: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return fmt.Errorf("sqlite schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, domain.ErrStorageUnavailable
	}
	return s.db, nil
}

// Ping implements ports.PersistentStore. An unopened store retries Connect.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return s.Connect(ctx)
	}
	return db.PingContext(ctx)
}

// Insert implements ports.PersistentStore.
func (s *SQLiteStore) Insert(ctx context.Context, rec domain.CommandRecord) (domain.CommandRecord, error) {
	db, err := s.handle()
	if err != nil {
		return rec, err
	}
	res, err := db.ExecContext(ctx, `INSERT INTO commands
		(text, type, timestamp, status, response, platform, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Text,
		string(rec.Source),
		rec.Timestamp.UTC().Format(sqliteTimeLayout),
		string(rec.Status),
		rec.Response,
		rec.Platform,
		rec.ClientContext,
	)
	if err != nil {
		return rec, fmt.Errorf("sqlite insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return rec, fmt.Errorf("sqlite insert id: %w", err)
	}
	rec.ID = strconv.FormatInt(id, 10)
	return rec, nil
}

// Recent implements ports.PersistentStore. The user agent is not selected.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.CommandRecord, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	query := `SELECT id, text, type, timestamp, status, response, platform
		FROM commands ORDER BY timestamp DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	defer rows.Close()

	var records []domain.CommandRecord
	for rows.Next() {
		var (
			rec      domain.CommandRecord
			id       int64
			source   string
			ts       string
			status   string
			platform sql.NullString
		)
		if err := rows.Scan(&id, &rec.Text, &source, &ts, &status, &rec.Response, &platform); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		rec.ID = strconv.FormatInt(id, 10)
		rec.Source = domain.Source(source)
		rec.Status = domain.Status(status)
		rec.Platform = platform.String
		if t, err := time.Parse(sqliteTimeLayout, ts); err == nil {
			rec.Timestamp = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteAll implements ports.PersistentStore.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM commands"); err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	return nil
}

// Close implements ports.PersistentStore.
func (s *SQLiteStore) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

var _ ports.PersistentStore = (*SQLiteStore)(nil)
