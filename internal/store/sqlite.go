package store

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite keeps the key/value pairs in a single table. Writes from other
// processes are detected by polling PRAGMA data_version, which only moves
// when a different connection commits.
type SQLite struct {
	DB *sql.DB

	log      *zap.Logger
	interval time.Duration

	mu       sync.Mutex
	snapshot map[string]string
	version  int64
	subs     map[int]func(Event)
	nextID   int
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// OpenSQLite opens (or creates) the database at filepath.
func OpenSQLite(filepath string, pollInterval time.Duration, logger *zap.Logger) (*SQLite, error) {
	dsn := filepath
	if !strings.Contains(dsn, "?") {
		// Another process may hold the write lock for a moment.
		dsn += "?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// One connection: our own commits then never bump data_version.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS kv (
		"key" TEXT NOT NULL PRIMARY KEY,
		"value" TEXT NOT NULL,
		"updated_at" DATETIME
	);`
	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating kv table: %w", err)
	}

	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SQLite{
		DB:       db,
		log:      logger,
		interval: pollInterval,
		subs:     make(map[int]func(Event)),
	}
	if s.snapshot, err = s.loadAll(); err != nil {
		db.Close()
		return nil, err
	}
	if s.version, err = s.dataVersion(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("sqlite store initialized", zap.String("path", filepath))
	return s, nil
}

func (s *SQLite) Get(key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(key, value string) error {
	query := `
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value=excluded.value,
		updated_at=excluded.updated_at;
	`
	stmt, err := s.DB.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}

	s.mu.Lock()
	s.snapshot[key] = value
	s.mu.Unlock()
	return nil
}

func (s *SQLite) Remove(key string) error {
	if _, err := s.DB.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	s.mu.Lock()
	delete(s.snapshot, key)
	s.mu.Unlock()
	return nil
}

// Subscribe starts the poller on first use.
func (s *SQLite) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	if !s.running {
		s.running = true
		s.stopCh = make(chan struct{})
		s.doneCh = make(chan struct{})
		go s.poll(s.stopCh, s.doneCh)
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close stops the poller and closes the database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	running := s.running
	s.running = false
	s.mu.Unlock()

	if running {
		close(s.stopCh)
		<-s.doneCh
	}
	return s.DB.Close()
}

func (s *SQLite) poll(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if err := s.checkForChanges(); err != nil {
				s.log.Warn("sqlite store poll failed", zap.Error(err))
			}
		}
	}
}

// checkForChanges diffs the table against the last snapshot when another
// connection has committed since the previous check.
func (s *SQLite) checkForChanges() error {
	version, err := s.dataVersion()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if version == s.version {
		s.mu.Unlock()
		return nil
	}
	s.version = version
	s.mu.Unlock()

	current, err := s.loadAll()
	if err != nil {
		return err
	}

	s.mu.Lock()
	var changed []string
	for k, v := range current {
		if old, ok := s.snapshot[k]; !ok || old != v {
			changed = append(changed, k)
		}
	}
	for k := range s.snapshot {
		if _, ok := current[k]; !ok {
			changed = append(changed, k)
		}
	}
	s.snapshot = current
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, key := range changed {
		for _, fn := range subs {
			fn(Event{Key: key, Source: "sqlite"})
		}
	}
	return nil
}

func (s *SQLite) dataVersion() (int64, error) {
	var v int64
	if err := s.DB.QueryRow(`PRAGMA data_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read data_version: %w", err)
	}
	return v, nil
}

func (s *SQLite) loadAll() (map[string]string, error) {
	rows, err := s.DB.Query(`SELECT key, value FROM kv`)
	if err != nil {
		return nil, fmt.Errorf("failed to load kv table: %w", err)
	}
	defer rows.Close()

	all := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			s.log.Warn("error scanning kv row", zap.Error(err))
			continue
		}
		all[k] = v
	}
	return all, rows.Err()
}
