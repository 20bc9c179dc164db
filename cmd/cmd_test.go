package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dimasma0305/filelist/internal/filelist/config"
	"github.com/dimasma0305/filelist/internal/filelist/core"
	"github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/filelist/socket"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResolvePaths(t *testing.T) {
	opts := config.Options{
		Configuration: config.Configuration{Directory: "data"},
		PidFile:       ".filelist/filelist.pid",
		LogFile:       "/var/log/filelist.log",
		SocketPath:    ".filelist/filelist.sock",
	}
	got := resolvePaths("/srv/project", opts)

	want := opts
	want.PidFile = "/srv/project/.filelist/filelist.pid"
	want.SocketPath = "/srv/project/.filelist/filelist.sock"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolvePaths mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchFor(t *testing.T) {
	patch, err := patchFor(config.FieldPattern, `\.txt$`)
	if err != nil || patch.Pattern == nil || *patch.Pattern != `\.txt$` {
		t.Fatalf("pattern patch = %+v, %v", patch, err)
	}
	if patch.Directory != nil || patch.CaseSensitive != nil || patch.FullPath != nil {
		t.Errorf("unexpected fields set: %+v", patch)
	}

	patch, err = patchFor(config.FieldFullPath, "true")
	if err != nil || patch.FullPath == nil || !*patch.FullPath {
		t.Fatalf("full_path patch = %+v, %v", patch, err)
	}

	if _, err := patchFor(config.FieldCaseSensitive, "sometimes"); !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("bad bool: got %v, want ErrInvalidConfig", err)
	}
	if _, err := patchFor("owner", "root"); !errors.Is(err, errors.ErrUnknownField) {
		t.Errorf("unknown field: got %v, want ErrUnknownField", err)
	}
}

func TestApplyStartFlags(t *testing.T) {
	base := config.Default
	base.Directory = "/from/config"
	base.Pattern = "config-pattern"

	if err := startCmd.ParseFlags([]string{"--pattern", "flag-pattern", "--full-path", "--foreground"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	got := applyStartFlags(startCmd, []string{"/from/args"}, base)

	if got.Directory != "/from/args" {
		t.Errorf("Directory = %q, want /from/args", got.Directory)
	}
	if got.Pattern != "flag-pattern" {
		t.Errorf("Pattern = %q, want flag-pattern", got.Pattern)
	}
	if !got.FullPath {
		t.Error("FullPath not applied")
	}
	if got.DaemonMode {
		t.Error("--foreground should disable daemon mode")
	}
	// flags that were not given keep the configured value
	if got.Codec != base.Codec || got.Capacity != base.Capacity || got.CaseSensitive != base.CaseSensitive {
		t.Errorf("unset flags overrode config: %+v", got)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	if _, err := executeCommand(t, "-C", dir, "init", "--yes", "--directory", "/srv/in", "--pattern", `\.csv$`, "--codec", "zstd"); err != nil {
		t.Fatalf("init: %v", err)
	}

	opts, found, err := config.Load(dir)
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if opts.Directory != "/srv/in" || opts.Pattern != `\.csv$` || opts.Codec != "zstd" {
		t.Errorf("written config = %+v", opts.Configuration)
	}

	if _, err := executeCommand(t, "-C", dir, "init", "--yes", "--directory", "/srv/other"); err == nil {
		t.Error("init over an existing config should fail without --force")
	}
}

func TestCommands_NotRunning(t *testing.T) {
	dir := t.TempDir()
	_, err := executeCommand(t, "-C", dir, "list")
	if !errors.Is(err, errors.ErrServiceNotRunning) {
		t.Errorf("list without a service: got %v, want ErrServiceNotRunning", err)
	}
}

func startService(t *testing.T, project, watched string) {
	t.Helper()

	sockDir, err := os.MkdirTemp("", "flcmd")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(sockDir) })

	opts := config.Default
	opts.Directory = watched
	opts.SocketPath = filepath.Join(sockDir, "s.sock")
	if err := config.Save(project, opts); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := loadOptions(project)
	if err != nil {
		t.Fatalf("loadOptions: %v", err)
	}
	svc, err := core.New(loaded)
	if err != nil {
		t.Fatalf("core.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Error("service did not stop")
		}
	})

	if err := socket.NewClient(loaded.SocketPath).WaitForService(5 * time.Second); err != nil {
		t.Fatalf("service did not start: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for svc.Snapshot().Sequence == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
}

func TestCommands_AgainstRunningService(t *testing.T) {
	project, watched := t.TempDir(), t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.log"} {
		if err := os.WriteFile(filepath.Join(watched, name), nil, 0600); err != nil {
			t.Fatal(err)
		}
	}
	startService(t, project, watched)

	out, err := executeCommand(t, "-C", project, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	names := strings.Fields(out)
	sort.Strings(names)
	if diff := cmp.Diff([]string{"a.txt", "b.txt", "c.log"}, names); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	if _, err := executeCommand(t, "-C", project, "set", "pattern", `\.txt$`); err != nil {
		t.Fatalf("set: %v", err)
	}

	out, err = executeCommand(t, "-C", project, "get", "pattern")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out) != `\.txt$` {
		t.Errorf("get pattern = %q", out)
	}

	out, err = executeCommand(t, "-C", project, "list", "--json")
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	var got []string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("list --json output %q: %v", out, err)
	}
	sort.Strings(got)
	if diff := cmp.Diff([]string{"a.txt", "b.txt"}, got); diff != "" {
		t.Errorf("filtered list mismatch (-want +got):\n%s", diff)
	}
	listJSON = false

	if _, err := executeCommand(t, "-C", project, "set", "colour", "red"); err == nil {
		t.Error("set with an unknown field should fail")
	}

	out, err = executeCommand(t, "-C", project, "history", "-n", "5")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "config") {
		t.Errorf("history should include the config refresh:\n%s", out)
	}
}
