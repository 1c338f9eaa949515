package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oomph-ac/replica/action"
	"github.com/oomph-ac/replica/oerror"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	_ "modernc.org/sqlite"
)

var _ action.Sink = (*SQLite)(nil)

// queueSize is the amount of entries that may wait for the writer before new ones are dropped.
const queueSize = 4096

// SQLite is an action.Sink writing violations to an SQLite database. Entries are written by a single
// background goroutine so that recording never blocks the caller on disk I/O.
type SQLite struct {
	db  *sql.DB
	log *logrus.Entry

	mu     sync.RWMutex
	closed bool
	ch     chan req
	wg     sync.WaitGroup

	dropped atomic.Uint64
}

type req struct {
	entry action.Entry
	// sync is closed by the writer once every entry queued before it was committed.
	sync chan struct{}
}

// OpenSQLite opens or creates the database at path and starts its writer.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, oerror.InvalidArgument("empty history database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLite{
		db:  db,
		log: logrus.WithField("component", "history"),
		ch:  make(chan req, queueSize),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS violations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			player TEXT NOT NULL,
			check_type TEXT NOT NULL,
			sub_type TEXT NOT NULL,
			tag TEXT NOT NULL,
			vl REAL NOT NULL,
			added REAL NOT NULL,
			extra TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_violations_player ON violations(player_id, id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record queues the entry for writing. If the writer falls behind, the entry is dropped and counted.
func (s *SQLite) Record(e action.Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return oerror.New("history database is closed")
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	select {
	case s.ch <- req{entry: e}:
	default:
		s.dropped.Inc()
	}
	return nil
}

// Dropped returns the amount of entries dropped because the writer fell behind.
func (s *SQLite) Dropped() uint64 {
	return s.dropped.Load()
}

// Flush blocks until every entry recorded before the call was committed.
func (s *SQLite) Flush(ctx context.Context) error {
	done := make(chan struct{})
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil
	}
	select {
	case s.ch <- req{sync: done}:
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}
	s.mu.RUnlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recent returns up to n of the most recent entries of a player, newest first. Entries still queued
// are flushed before reading.
func (s *SQLite) Recent(ctx context.Context, player uuid.UUID, n int) ([]action.Entry, error) {
	if n <= 0 {
		return nil, oerror.InvalidArgument("recent entry count must be positive, got %d", n)
	}
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT player_id,player,check_type,sub_type,tag,vl,added,extra,created_at
		FROM violations WHERE player_id=? ORDER BY id DESC LIMIT ?`, player.String(), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []action.Entry
	for rows.Next() {
		var (
			e       action.Entry
			id      string
			created int64
		)
		if err := rows.Scan(&id, &e.Player, &e.Check, &e.SubType, &e.Tag, &e.VL, &e.Added, &e.Extra, &created); err != nil {
			return nil, err
		}
		if e.PlayerID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		e.Time = time.UnixMilli(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close stops accepting entries, writes the queued ones and closes the database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	s.wg.Wait()
	return s.db.Close()
}

func (s *SQLite) loop() {
	var tx *sql.Tx
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.log.Errorf("unable to commit violations: %v", err)
		}
		tx = nil
	}

	for r := range s.ch {
		if r.sync != nil {
			commit()
			close(r.sync)
			continue
		}
		if tx == nil {
			var err error
			if tx, err = s.db.Begin(); err != nil {
				s.log.Errorf("unable to begin transaction: %v", err)
				tx = nil
				continue
			}
		}
		e := r.entry
		if _, err := tx.Exec(`INSERT INTO violations(player_id,player,check_type,sub_type,tag,vl,added,extra,created_at) VALUES(?,?,?,?,?,?,?,?,?)`,
			e.PlayerID.String(), e.Player, e.Check, e.SubType, e.Tag, e.VL, e.Added, e.Extra, e.Time.UnixMilli()); err != nil {
			s.log.Errorf("unable to write violation of %s: %v", e.Player, err)
		}
		// Commit once the queue runs dry.
		if len(s.ch) == 0 {
			commit()
		}
	}
	commit()
}
