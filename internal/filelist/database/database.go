// Package database records refresh, retarget and service history in SQLite
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dimasma0305/filelist/internal/log"

	// Import pure-Go SQLite driver for database/sql (no CGO required)
	_ "modernc.org/sqlite"
)

// DB wraps the history database
type DB struct {
	db      *sql.DB
	mu      sync.RWMutex
	enabled bool
	path    string
}

// New creates a new database instance
func New(dbPath string, enabled bool) *DB {
	return &DB{
		path:    dbPath,
		enabled: enabled,
	}
}

// Init opens the database and creates tables
func (d *DB) Init() error {
	if !d.enabled {
		log.Info("History database disabled")
		return nil
	}

	dbPath := d.path
	log.Info("Initializing SQLite database: %s", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL lets history readers run while the service writes
	dbPath += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with a single writer
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	d.mu.Lock()
	d.db = db
	d.mu.Unlock()

	if err := d.createTables(); err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}

	log.Info("Database initialized successfully")
	return nil
}

func (d *DB) createTables() error {
	db := d.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	createLogsTable := `
		CREATE TABLE IF NOT EXISTS service_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			level TEXT NOT NULL,
			component TEXT NOT NULL,
			message TEXT NOT NULL,
			error TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_logs_level ON service_logs(level);
	`

	createRefreshesTable := `
		CREATE TABLE IF NOT EXISTS refreshes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			refresh_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			source TEXT NOT NULL,
			directory TEXT NOT NULL,
			pattern TEXT NOT NULL,
			entries INTEGER NOT NULL,
			matches INTEGER NOT NULL,
			raw_bytes INTEGER NOT NULL,
			compressed_bytes INTEGER NOT NULL,
			sequence INTEGER NOT NULL,
			result TEXT NOT NULL,
			error TEXT,
			duration_us INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_refreshes_result ON refreshes(result);
		CREATE INDEX IF NOT EXISTS idx_refreshes_source ON refreshes(source);
	`

	createRetargetsTable := `
		CREATE TABLE IF NOT EXISTS retargets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			target TEXT NOT NULL,
			armed INTEGER NOT NULL,
			error TEXT
		);
	`

	if _, err := db.Exec(createLogsTable); err != nil {
		return fmt.Errorf("failed to create service_logs table: %w", err)
	}
	if _, err := db.Exec(createRefreshesTable); err != nil {
		return fmt.Errorf("failed to create refreshes table: %w", err)
	}
	if _, err := db.Exec(createRetargetsTable); err != nil {
		return fmt.Errorf("failed to create retargets table: %w", err)
	}

	log.DebugH2("Database tables created successfully")
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		log.Info("Closing database connection")
		err := d.db.Close()
		d.db = nil
		return err
	}
	return nil
}

// GetDB returns the underlying connection
func (d *DB) GetDB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// IsEnabled returns whether the database is enabled
func (d *DB) IsEnabled() bool {
	return d.enabled
}
