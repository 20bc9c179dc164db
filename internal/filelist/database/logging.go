package database

import (
	"fmt"
	"os"
	"time"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/filelist/refresh"
)

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// LogToDatabase stores a service log line
func (d *DB) LogToDatabase(level, component, message, errorMsg string) {
	if !d.enabled {
		return
	}
	db := d.GetDB()
	if db == nil {
		return
	}

	query := `
		INSERT INTO service_logs (timestamp, level, component, message, error)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := db.Exec(query, now(), level, component, message, errorMsg); err != nil {
		// not through log.Error: that may be mirrored back here
		fmt.Fprintf(os.Stderr, "Failed to log to database: %v\n", err)
	}
}

// RecordRefresh stores one refresh attempt
func (d *DB) RecordRefresh(res refresh.Result) {
	if !d.enabled {
		return
	}
	db := d.GetDB()
	if db == nil {
		return
	}

	var errMsg string
	if res.Err != nil {
		errMsg = res.Err.Error()
	}

	query := `
		INSERT INTO refreshes (refresh_id, timestamp, source, directory, pattern, entries, matches,
			raw_bytes, compressed_bytes, sequence, result, error, duration_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		res.ID, res.StartedAt.UTC().Format(time.RFC3339Nano), string(res.Source), res.Directory, res.Pattern,
		res.Entries, res.Matches, res.RawBytes, res.CompressedBytes, int64(res.Sequence),
		errors.Kind(res.Err), errMsg, res.Duration.Microseconds(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to record refresh: %v\n", err)
	}
}

// RecordRetarget stores the outcome of a watch retarget
func (d *DB) RecordRetarget(target string, armErr error) {
	if !d.enabled {
		return
	}
	db := d.GetDB()
	if db == nil {
		return
	}

	var errMsg string
	if armErr != nil {
		errMsg = armErr.Error()
	}

	query := `INSERT INTO retargets (timestamp, target, armed, error) VALUES (?, ?, ?, ?)`
	if _, err := db.Exec(query, now(), target, armErr == nil, errMsg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to record retarget: %v\n", err)
	}
}
