package textsieve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	sieveerrors "github.com/textsieve/textsieve/errors"
)

// drainChunk reads every record of c, returning them as strings.
func drainChunk(t *testing.T, c *chunk) []string {
	t.Helper()
	r, err := openChunk(c)
	if err != nil {
		t.Fatalf("openChunk: %v", err)
	}
	defer r.close()

	var lines []string
	for {
		line, ok, err := r.next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !ok {
			return lines
		}
		lines = append(lines, string(line))
	}
}

func TestChunkRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
	}{
		{"plain", []string{"alpha", "beta", "gamma"}},
		{"empty_records", []string{"", "x", "", ""}},
		{"binaryish", []string{"a\x00b", "tab\tseparated"}},
		{"none", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			window := make([][]byte, len(tc.lines))
			for i, l := range tc.lines {
				window[i] = []byte(l)
			}
			c, err := writeChunk(t.TempDir(), 0, window)
			if err != nil {
				t.Fatalf("writeChunk: %v", err)
			}
			got := drainChunk(t, c)
			if len(got) != len(tc.lines) {
				t.Fatalf("got %d records, want %d", len(got), len(tc.lines))
			}
			for i := range got {
				if got[i] != tc.lines[i] {
					t.Errorf("record %d = %q, want %q", i, got[i], tc.lines[i])
				}
			}
		})
	}
}

func TestChunkChecksumDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	c, err := writeChunk(dir, 0, [][]byte{[]byte("alpha"), []byte("beta")})
	if err != nil {
		t.Fatal(err)
	}

	// Flip one record byte between header and trailer.
	data, err := os.ReadFile(c.path)
	if err != nil {
		t.Fatal(err)
	}
	data[chunkHeaderSize+1] ^= 0xFF
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := openChunk(c)
	if err != nil {
		t.Fatalf("openChunk: %v", err)
	}
	defer r.close()
	var readErr error
	for {
		_, ok, err := r.next()
		if err != nil {
			readErr = err
			break
		}
		if !ok {
			break
		}
	}
	if !errors.Is(readErr, sieveerrors.ErrChunkChecksum) {
		t.Errorf("got %v, want ErrChunkChecksum", readErr)
	}
}

func TestChunkRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	c, err := writeChunk(dir, 0, [][]byte{[]byte("alpha")})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := openChunk(c); !errors.Is(err, sieveerrors.ErrChunkMagic) {
		t.Errorf("got %v, want ErrChunkMagic", err)
	}
}

func TestChunkRejectsTruncatedFile(t *testing.T) {
	c := &chunk{path: filepath.Join(t.TempDir(), "chunk-000000"), ordinal: 0}
	if err := os.WriteFile(c.path, []byte("TSC"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := openChunk(c); !errors.Is(err, sieveerrors.ErrChunkTruncated) {
		t.Errorf("got %v, want ErrChunkTruncated", err)
	}
}

func TestChunkRemoveIdempotent(t *testing.T) {
	c, err := writeChunk(t.TempDir(), 3, [][]byte{[]byte("alpha")})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.remove(); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := c.remove(); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestChunkWriterAbortRemovesFile(t *testing.T) {
	dir := t.TempDir()
	cw, err := newChunkWriter(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := cw.append([]byte("alpha")); err != nil {
		t.Fatal(err)
	}
	if err := cw.abort(); err != nil {
		t.Fatalf("abort: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("abort left %d file(s) behind", len(entries))
	}
}

func TestWriteChunkFailsWithoutDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if _, err := writeChunk(missing, 0, [][]byte{[]byte("alpha")}); !errors.Is(err, sieveerrors.ErrChunkStorage) {
		t.Errorf("got %v, want ErrChunkStorage", err)
	}
}
