package database

import (
	"database/sql"
	"fmt"
	"time"
)

// RefreshRecord is a stored refresh attempt
type RefreshRecord struct {
	ID              int64     `json:"id"`
	RefreshID       string    `json:"refresh_id"`
	Timestamp       time.Time `json:"timestamp"`
	Source          string    `json:"source"`
	Directory       string    `json:"directory"`
	Pattern         string    `json:"pattern"`
	Entries         int       `json:"entries"`
	Matches         int       `json:"matches"`
	RawBytes        int       `json:"raw_bytes"`
	CompressedBytes int       `json:"compressed_bytes"`
	Sequence        uint64    `json:"sequence"`
	Result          string    `json:"result"`
	Error           string    `json:"error,omitempty"`
	DurationMicros  int64     `json:"duration_us"`
}

// RetargetRecord is a stored retarget outcome
type RetargetRecord struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Target    string    `json:"target"`
	Armed     bool      `json:"armed"`
	Error     string    `json:"error,omitempty"`
}

// ServiceLog is a stored log line
type ServiceLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// RecentRefreshes returns up to limit refreshes, newest first
func (d *DB) RecentRefreshes(limit int) ([]RefreshRecord, error) {
	db := d.GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT id, refresh_id, timestamp, source, directory, pattern, entries, matches,
			raw_bytes, compressed_bytes, sequence, result, error, duration_us
		FROM refreshes
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []RefreshRecord{}
	for rows.Next() {
		var r RefreshRecord
		var ts string
		var seq int64
		var errorMsg sql.NullString
		if err := rows.Scan(
			&r.ID, &r.RefreshID, &ts, &r.Source, &r.Directory, &r.Pattern, &r.Entries, &r.Matches,
			&r.RawBytes, &r.CompressedBytes, &seq, &r.Result, &errorMsg, &r.DurationMicros,
		); err != nil {
			return nil, err
		}
		r.Timestamp = parseTime(ts)
		r.Sequence = uint64(seq)
		r.Error = errorMsg.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecentRetargets returns up to limit retargets, newest first
func (d *DB) RecentRetargets(limit int) ([]RetargetRecord, error) {
	db := d.GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := db.Query(`SELECT id, timestamp, target, armed, error FROM retargets ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []RetargetRecord{}
	for rows.Next() {
		var r RetargetRecord
		var ts string
		var errorMsg sql.NullString
		if err := rows.Scan(&r.ID, &ts, &r.Target, &r.Armed, &errorMsg); err != nil {
			return nil, err
		}
		r.Timestamp = parseTime(ts)
		r.Error = errorMsg.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetRecentLogs returns up to limit service log lines, newest first
func (d *DB) GetRecentLogs(limit int) ([]ServiceLog, error) {
	db := d.GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := db.Query(`SELECT id, timestamp, level, component, message, error FROM service_logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	logs := []ServiceLog{}
	for rows.Next() {
		var l ServiceLog
		var ts string
		var errorMsg sql.NullString
		if err := rows.Scan(&l.ID, &ts, &l.Level, &l.Component, &l.Message, &errorMsg); err != nil {
			return nil, err
		}
		l.Timestamp = parseTime(ts)
		l.Error = errorMsg.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
