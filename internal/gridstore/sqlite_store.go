// Package gridstore provides persistent storage for rendered grids
// using SQLite. Grid generation is cheap but the upstream column
// queries are not; the store lets a restarted server keep serving
// previously rendered grids within their TTL.
package gridstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed grid store with TTL expiry. Payloads are
// zstd-compressed; rendered SVG text compresses an order of magnitude.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	ttl time.Duration
	log *zap.Logger

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	stopSweeper chan struct{}
	sweeperDone chan struct{}
}

// NewStore opens (or creates) the store at dbPath. Entries older than
// ttl are treated as absent and removed by the sweeper.
func NewStore(dbPath string, ttl time.Duration, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	s := &Store{
		db:      db,
		ttl:     ttl,
		log:     log,
		encoder: encoder,
		decoder: decoder,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS grids (
		key        TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_grids_created_at ON grids(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get retrieves a grid payload. Expired entries read as absent.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload []byte
	var createdAt int64
	err := s.db.QueryRow("SELECT payload, created_at FROM grids WHERE key = ?", key).
		Scan(&payload, &createdAt)
	if err != nil {
		return nil, false
	}
	if time.Since(time.Unix(0, createdAt)) > s.ttl {
		return nil, false
	}

	data, err := s.decoder.DecodeAll(payload, nil)
	if err != nil {
		s.log.Warn("failed to decompress stored grid", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, true
}

// Put stores a grid payload, replacing any previous entry.
func (s *Store) Put(key string, data []byte) error {
	compressed := s.encoder.EncodeAll(data, nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO grids (key, payload, created_at) VALUES (?, ?, ?)",
		key, compressed, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to store grid: %w", err)
	}
	return nil
}

// CleanupExpired deletes entries older than the TTL and returns the
// number removed.
func (s *Store) CleanupExpired() (int, error) {
	cutoff := time.Now().Add(-s.ttl).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM grids WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired grids: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// StartSweeper runs CleanupExpired every period until Close.
func (s *Store) StartSweeper(period time.Duration) {
	if s.stopSweeper != nil {
		return
	}
	s.stopSweeper = make(chan struct{})
	s.sweeperDone = make(chan struct{})

	go func() {
		defer close(s.sweeperDone)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := s.CleanupExpired()
				if err != nil {
					s.log.Warn("grid store sweep failed", zap.Error(err))
				} else if n > 0 {
					s.log.Info("swept expired grids", zap.Int("removed", n))
				}
			case <-s.stopSweeper:
				return
			}
		}
	}()
}

// Close stops the sweeper and closes the database.
func (s *Store) Close() error {
	if s.stopSweeper != nil {
		close(s.stopSweeper)
		<-s.sweeperDone
		s.stopSweeper = nil
	}
	s.decoder.Close()
	if err := s.encoder.Close(); err != nil {
		s.log.Warn("failed to close zstd encoder", zap.Error(err))
	}
	return s.db.Close()
}
