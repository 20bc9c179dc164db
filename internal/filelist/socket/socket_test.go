package socket

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dimasma0305/filelist/internal/filelist/database"
)

type fakeHandler struct {
	mu                 sync.Mutex
	setField, setValue string
	refreshed          int
	historyLimit       int
}

func ok(data map[string]interface{}) Response {
	return Response{Success: true, Data: data}
}

func (h *fakeHandler) HandleStatusCommand(Command) Response {
	return ok(map[string]interface{}{"directory": "/data", "watch_armed": true})
}

func (h *fakeHandler) HandleGetConfigCommand(Command) Response {
	return ok(map[string]interface{}{"pattern": ".*"})
}

func (h *fakeHandler) HandleSetConfigCommand(cmd Command) Response {
	field, _ := cmd.String("field")
	value, _ := cmd.String("value")
	if field == "bogus" {
		return Fail("unknown configuration field: %q", field)
	}
	h.mu.Lock()
	h.setField, h.setValue = field, value
	h.mu.Unlock()
	return Response{Success: true, Message: "updated"}
}

func (h *fakeHandler) HandleRefreshCommand(Command) Response {
	h.mu.Lock()
	h.refreshed++
	h.mu.Unlock()
	return ok(map[string]interface{}{"sequence": 2})
}

func (h *fakeHandler) HandleGetSnapshotCommand(Command) Response {
	return ok(map[string]interface{}{
		"data":     base64.StdEncoding.EncodeToString([]byte{0x78, 0xda, 0x01}),
		"length":   3,
		"capacity": 16384,
		"sequence": 7,
		"codec":    "zlib",
	})
}

func (h *fakeHandler) HandleGetNamesCommand(Command) Response {
	return ok(map[string]interface{}{"names": []string{"b.txt", "a.txt"}})
}

func (h *fakeHandler) HandleGetHistoryCommand(cmd Command) Response {
	h.mu.Lock()
	h.historyLimit = cmd.Int("limit", 20)
	h.mu.Unlock()
	return ok(map[string]interface{}{"refreshes": []database.RefreshRecord{
		{RefreshID: "r1", Source: "watch", Result: "ok", Sequence: 3},
	}})
}

func startServer(t *testing.T, h Handler) *Client {
	t.Helper()
	dir, err := os.MkdirTemp("", "flsock")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "s.sock")

	srv := NewServer(path, true, NewDefaultCommandHandler(h))
	if err := srv.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		_ = srv.Close()
		<-done
		_ = os.RemoveAll(dir)
	})

	c := NewClient(path)
	c.SetTimeout(5 * time.Second)
	return c
}

func TestClientServer_Actions(t *testing.T) {
	h := &fakeHandler{}
	c := startServer(t, h)

	if !c.IsRunning() {
		t.Fatal("IsRunning() = false")
	}

	if _, err := c.SetConfig("pattern", `\.nxs$`); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	h.mu.Lock()
	field, value := h.setField, h.setValue
	h.mu.Unlock()
	if field != "pattern" || value != `\.nxs$` {
		t.Errorf("handler saw %q=%q", field, value)
	}

	if _, err := c.SetConfig("bogus", "1"); err == nil || !strings.Contains(err.Error(), "unknown configuration field") {
		t.Errorf("SetConfig(bogus) error = %v", err)
	}

	_, err := c.Refresh()
	h.mu.Lock()
	refreshed := h.refreshed
	h.mu.Unlock()
	if err != nil || refreshed != 1 {
		t.Errorf("Refresh() error = %v, refreshed = %d", err, refreshed)
	}

	snap, err := c.GetSnapshot()
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if !bytes.Equal(snap.Data, []byte{0x78, 0xda, 0x01}) || snap.Length != 3 || snap.Sequence != 7 || snap.Codec != "zlib" {
		t.Errorf("snapshot = %+v", snap)
	}

	names, err := c.GetNames()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b.txt", "a.txt"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	history, err := c.GetHistory(5)
	if err != nil {
		t.Fatal(err)
	}
	h.mu.Lock()
	limit := h.historyLimit
	h.mu.Unlock()
	if limit != 5 || len(history) != 1 || history[0].RefreshID != "r1" {
		t.Errorf("history = %+v (limit %d)", history, limit)
	}
}

func TestClientServer_UnknownAction(t *testing.T) {
	c := startServer(t, &fakeHandler{})

	resp, err := c.SendCommand("explode", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Success || !strings.Contains(resp.Error, "Unknown command") {
		t.Errorf("response = %+v", resp)
	}
}

func TestClient_NoServer(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	c.SetTimeout(100 * time.Millisecond)

	if c.IsRunning() {
		t.Error("IsRunning() = true with no server")
	}
	if err := c.WaitForService(300 * time.Millisecond); err == nil {
		t.Error("WaitForService() should time out")
	}
}

func TestServer_Disabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.sock")
	srv := NewServer(path, false, NewDefaultCommandHandler(&fakeHandler{}))
	if err := srv.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("disabled server created a socket")
	}
	srv.Run(context.Background())
}

func TestCommand_Accessors(t *testing.T) {
	cmd := Command{Data: map[string]interface{}{"field": "pattern", "limit": float64(3)}}
	if v, ok := cmd.String("field"); !ok || v != "pattern" {
		t.Errorf("String(field) = %q, %v", v, ok)
	}
	if _, ok := cmd.String("limit"); ok {
		t.Error("String(limit) should not be a string")
	}
	if got := cmd.Int("limit", 20); got != 3 {
		t.Errorf("Int(limit) = %d", got)
	}
	if got := cmd.Int("missing", 20); got != 20 {
		t.Errorf("Int(missing) = %d", got)
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	PrintHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No refreshes") {
		t.Errorf("empty history output = %q", buf.String())
	}

	buf.Reset()
	PrintHistory(&buf, []database.RefreshRecord{
		{Source: "watch", Result: "not_found", Directory: "/gone", Error: "directory not found"},
	})
	out := buf.String()
	if !strings.Contains(out, "/gone") || !strings.Contains(out, "directory not found") {
		t.Errorf("history output = %q", out)
	}
}
