package core

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/filelist/refresh"
	"github.com/dimasma0305/filelist/internal/filelist/socket"
)

const defaultHistoryLimit = 20

func refreshData(res refresh.Result) map[string]interface{} {
	data := map[string]interface{}{
		"id":               res.ID,
		"source":           string(res.Source),
		"result":           errors.Kind(res.Err),
		"entries":          res.Entries,
		"matches":          res.Matches,
		"compressed_bytes": res.CompressedBytes,
		"sequence":         res.Sequence,
		"duration":         res.Duration.String(),
	}
	if res.Err != nil {
		data["error"] = res.Err.Error()
	}
	return data
}

// HandleStatusCommand handles status requests
func (s *Service) HandleStatusCommand(cmd socket.Command) socket.Response {
	return socket.Response{Success: true, Message: "filelist is running", Data: s.Status()}
}

// HandleGetConfigCommand handles get_config requests
func (s *Service) HandleGetConfigCommand(cmd socket.Command) socket.Response {
	cfg := s.Config()
	return socket.Response{Success: true, Data: map[string]interface{}{
		"directory":      cfg.Directory,
		"pattern":        cfg.Pattern,
		"case_sensitive": cfg.CaseSensitive,
		"full_path":      cfg.FullPath,
	}}
}

// HandleSetConfigCommand handles set_config requests
func (s *Service) HandleSetConfigCommand(cmd socket.Command) socket.Response {
	field, ok := cmd.String("field")
	if !ok || field == "" {
		return socket.Fail("field is required")
	}
	value, ok := cmd.String("value")
	if !ok {
		return socket.Fail("value must be a string")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := s.SetConfig(ctx, field, value)
	if err != nil {
		return socket.Fail("%v", err)
	}

	resp := socket.Response{Success: true, Message: field + " updated", Data: map[string]interface{}{}}
	if res != nil {
		resp.Data["refresh"] = refreshData(*res)
		if res.Err != nil {
			resp.Message = field + " updated, refresh failed: " + res.Err.Error()
		}
	}
	return resp
}

// HandleRefreshCommand handles manual refresh requests
func (s *Service) HandleRefreshCommand(cmd socket.Command) socket.Response {
	res, err := s.Refresh(refresh.SourceManual)
	if err != nil && !errors.IsSoft(err) {
		return socket.Response{Success: false, Error: err.Error(), Data: refreshData(res)}
	}
	return socket.Response{Success: true, Message: "refreshed", Data: refreshData(res)}
}

// HandleGetSnapshotCommand returns the compressed snapshot
func (s *Service) HandleGetSnapshotCommand(cmd socket.Command) socket.Response {
	snap := s.Snapshot()
	data := map[string]interface{}{
		"data":     base64.StdEncoding.EncodeToString(snap.Data[:snap.Length]),
		"length":   snap.Length,
		"capacity": snap.Capacity,
		"sequence": snap.Sequence,
		"codec":    snap.Codec,
	}
	if !snap.UpdatedAt.IsZero() {
		data["updated_at"] = snap.UpdatedAt
	}
	return socket.Response{Success: true, Data: data}
}

// HandleGetNamesCommand returns the decoded snapshot
func (s *Service) HandleGetNamesCommand(cmd socket.Command) socket.Response {
	names, err := s.Names()
	if err != nil {
		return socket.Fail("%v", err)
	}
	return socket.Response{Success: true, Data: map[string]interface{}{
		"names":    names,
		"sequence": s.Snapshot().Sequence,
	}}
}

// HandleGetHistoryCommand returns recent refreshes from the database
func (s *Service) HandleGetHistoryCommand(cmd socket.Command) socket.Response {
	if !s.db.IsEnabled() {
		return socket.Fail("history database is disabled")
	}
	limit := cmd.Int("limit", defaultHistoryLimit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := s.db.RecentRefreshes(limit)
	if err != nil {
		return socket.Fail("Failed to read history: %v", err)
	}
	retargets, err := s.db.RecentRetargets(limit)
	if err != nil {
		return socket.Fail("Failed to read history: %v", err)
	}
	return socket.Response{Success: true, Data: map[string]interface{}{
		"refreshes": records,
		"retargets": retargets,
	}}
}
