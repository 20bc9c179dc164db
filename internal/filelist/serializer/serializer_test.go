package serializer

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"empty", nil, `[]`},
		{"single", []string{"a.txt"}, `["a.txt"]`},
		{"order kept", []string{"z", "a", "m"}, `["z","a","m"]`},
		{"html not escaped", []string{"<a&b>.txt"}, `["<a&b>.txt"]`},
		{"quotes and backslashes", []string{`say "hi"`, `C:\x`}, `["say \"hi\"","C:\\x"]`},
		{"full paths", []string{"/data/x/a.txt"}, `["/data/x/a.txt"]`},
		{"invalid utf-8 replaced", []string{"a\xffb"}, `["a\ufffdb"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Serialize(tt.names)
			if err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Serialize() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	names := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		names = append(names, fmt.Sprintf("run_%05d.nxs", i))
	}
	names = append(names, "ünïcödé.txt", "")

	for _, name := range []string{CodecZlib, CodecZstd} {
		t.Run(name, func(t *testing.T) {
			codec, err := NewCodec(name)
			if err != nil {
				t.Fatalf("NewCodec(%q) error = %v", name, err)
			}
			if codec.Name() != name {
				t.Errorf("Name() = %q, want %q", codec.Name(), name)
			}

			res, err := Encode(names, codec)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if len(res.Compressed) >= len(res.Raw) {
				t.Errorf("compressed %d bytes is not smaller than raw %d", len(res.Compressed), len(res.Raw))
			}

			got, err := Decode(res.Compressed, codec)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(names, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	codec, _ := NewCodec(CodecZlib)
	names := []string{"a", "b", "c"}
	first, err := Encode(names, codec)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Encode(names, codec)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Compressed, second.Compressed) {
		t.Error("encoding the same list twice produced different bytes")
	}
}

func TestNewCodec_Unknown(t *testing.T) {
	if _, err := NewCodec("lz4"); !errors.Is(err, errors.ErrCodecFailure) {
		t.Errorf("NewCodec(lz4) error = %v, want ErrCodecFailure", err)
	}
}

func TestDecode_Corrupt(t *testing.T) {
	codec, _ := NewCodec(CodecZlib)
	if _, err := Decode([]byte("not zlib"), codec); !errors.Is(err, errors.ErrCodecFailure) {
		t.Errorf("Decode() error = %v, want ErrCodecFailure", err)
	}
}

func TestBuffer_Publish(t *testing.T) {
	buf := NewBuffer(8, CodecZlib)

	if snap := buf.Snapshot(); snap.Length != 0 || snap.Sequence != 0 {
		t.Fatalf("initial snapshot = %+v", snap)
	}

	if overflowed := buf.Publish([]byte("hello")); overflowed {
		t.Fatal("Publish() of 5 bytes into capacity 8 overflowed")
	}
	snap := buf.Snapshot()
	if string(snap.Data) != "hello" || snap.Length != 5 || snap.Sequence != 1 {
		t.Errorf("snapshot after publish = %+v", snap)
	}
	if snap.Capacity != 8 || snap.Codec != CodecZlib {
		t.Errorf("snapshot metadata = %+v", snap)
	}
}

func TestBuffer_OverflowKeepsPrevious(t *testing.T) {
	buf := NewBuffer(8, CodecZlib)
	buf.Publish([]byte("keep"))
	before := buf.Snapshot()

	tests := []struct {
		name    string
		payload []byte
	}{
		{"equal to capacity", bytes.Repeat([]byte("x"), 8)},
		{"larger than capacity", bytes.Repeat([]byte("x"), 64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if overflowed := buf.Publish(tt.payload); !overflowed {
				t.Fatal("Publish() should report overflow")
			}
			after := buf.Snapshot()
			if diff := cmp.Diff(before, after); diff != "" {
				t.Errorf("snapshot changed on overflow (-before +after):\n%s", diff)
			}
		})
	}
}

func TestBuffer_PublishCopiesPayload(t *testing.T) {
	buf := NewBuffer(16, CodecZlib)
	payload := []byte("abc")
	buf.Publish(payload)
	payload[0] = 'X'

	if got := string(buf.Snapshot().Data); got != "abc" {
		t.Errorf("snapshot aliased the caller's slice: %q", got)
	}
}

func TestBuffer_ReadInto(t *testing.T) {
	buf := NewBuffer(16, CodecZlib)
	buf.Publish([]byte("longer payload"))
	buf.Publish([]byte("short"))

	dst := bytes.Repeat([]byte{'#'}, 16)
	n := buf.ReadInto(dst)
	if n != 5 {
		t.Fatalf("ReadInto() = %d, want 5", n)
	}
	if string(dst[:n]) != "short" {
		t.Errorf("valid bytes = %q", dst[:n])
	}
	// trailing bytes are untouched, callers rely on n
	if string(dst[n:]) != strings.Repeat("#", 11) {
		t.Errorf("trailing bytes = %q", dst[n:])
	}

	small := make([]byte, 3)
	if n := buf.ReadInto(small); n != 3 || string(small) != "sho" {
		t.Errorf("ReadInto(small) = %d %q", n, small)
	}
}

func TestBuffer_ConcurrentReadersSeeCompleteSnapshots(t *testing.T) {
	buf := NewBuffer(1024, CodecZlib)
	payloads := [][]byte{
		bytes.Repeat([]byte("a"), 100),
		bytes.Repeat([]byte("b"), 300),
		bytes.Repeat([]byte("c"), 50),
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := buf.Snapshot()
				if snap.Length != len(snap.Data) {
					t.Errorf("length %d does not match data %d", snap.Length, len(snap.Data))
					return
				}
				if snap.Length > 0 && !bytes.Equal(snap.Data, bytes.Repeat(snap.Data[:1], snap.Length)) {
					t.Errorf("observed a mixed snapshot")
					return
				}
			}
		}()
	}

	for i := 0; i < 300; i++ {
		buf.Publish(payloads[i%len(payloads)])
	}
	close(stop)
	wg.Wait()

	if got := buf.Snapshot().Sequence; got != 300 {
		t.Errorf("Sequence = %d, want 300", got)
	}
}
