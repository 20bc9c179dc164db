package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
)

func TestLoad_MissingFile(t *testing.T) {
	opts, found, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if found {
		t.Error("Load() reported a file that does not exist")
	}
	if diff := cmp.Diff(Default, opts); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	dir := t.TempDir()
	confDir := filepath.Join(dir, FILELIST_DIR)
	if err := os.MkdirAll(confDir, 0750); err != nil {
		t.Fatal(err)
	}
	content := `directory: /data/x
pattern: '\.txt$'
case_sensitive: true
full_path: true
capacity: 4096
codec: zstd
regex_engine: pcre
http_addr: 127.0.0.1:8080
stop_timeout: 3s
`
	if err := os.WriteFile(filepath.Join(confDir, CONFIG_FILE), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	opts, found, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !found {
		t.Fatal("Load() did not find the config file")
	}

	want := Configuration{Directory: "/data/x", Pattern: `\.txt$`, CaseSensitive: true, FullPath: true}
	if diff := cmp.Diff(want, opts.Configuration); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}
	if opts.Capacity != 4096 || opts.Codec != "zstd" || opts.RegexEngine != "pcre" {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.HTTPAddr != "127.0.0.1:8080" {
		t.Errorf("HTTPAddr = %q", opts.HTTPAddr)
	}
	if opts.StopTimeout != 3*time.Second {
		t.Errorf("StopTimeout = %v", opts.StopTimeout)
	}
	// untouched fields keep their defaults
	if opts.SocketPath != Default.SocketPath {
		t.Errorf("SocketPath = %q, want default", opts.SocketPath)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, FILELIST_DIR), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(dir), []byte("directory: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(dir); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, FILELIST_DIR), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(dir), []byte("directory: /data\npatern: x\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(dir); !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	opts := Default
	opts.Directory = "/srv/data"
	opts.Pattern = "log$"
	opts.FullPath = true

	if err := Save(dir, opts); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, found, err := Load(dir)
	if err != nil || !found {
		t.Fatalf("Load() = found %v, err %v", found, err)
	}
	if diff := cmp.Diff(opts.Configuration, got.Configuration); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	valid := Default
	valid.Directory = "/tmp"

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"valid", func(*Options) {}, false},
		{"missing directory", func(o *Options) { o.Directory = "  " }, true},
		{"zero capacity", func(o *Options) { o.Capacity = 0 }, true},
		{"unknown engine", func(o *Options) { o.RegexEngine = "posix" }, true},
		{"unknown codec", func(o *Options) { o.Codec = "lz4" }, true},
		{"pcre engine", func(o *Options) { o.RegexEngine = "pcre" }, false},
		{"zstd codec", func(o *Options) { o.Codec = "zstd" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			err := opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrInvalidConfig) {
				t.Errorf("Validate() error should wrap ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestWithDefaults(t *testing.T) {
	got := Options{Configuration: Configuration{Directory: "/d"}}.WithDefaults()
	if got.Pattern != Default.Pattern || got.Capacity != DefaultCapacity || got.Codec != "zlib" {
		t.Errorf("WithDefaults() = %+v", got)
	}
	if got.Directory != "/d" {
		t.Errorf("WithDefaults() changed directory to %q", got.Directory)
	}
}
