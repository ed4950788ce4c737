package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// UpdateEnv rewrites golden files instead of comparing against them when set.
const UpdateEnv = "GOLDEN_UPDATE"

// Golden compares got against testdata/<name>.golden.
func Golden(t testing.TB, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")

	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create testdata dir: %v", err)
		}
		if err := os.WriteFile(path, got, 0644); err != nil {
			t.Fatalf("failed to update golden file: %v", err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s (set %s=1 to create it): %v", path, UpdateEnv, err)
	}

	if bytes.Equal(got, want) {
		return
	}
	line, wantLine, gotLine := firstDiff(want, got)
	t.Errorf("output mismatch for %s at line %d\nwant: %q\ngot:  %q\n\nfull output:\n%s",
		name, line, wantLine, gotLine, got)
}

// firstDiff returns the 1-based number and contents of the first differing line.
func firstDiff(want, got []byte) (int, string, string) {
	wl := bytes.Split(want, []byte("\n"))
	gl := bytes.Split(got, []byte("\n"))
	for i := 0; i < len(wl) || i < len(gl); i++ {
		var w, g []byte
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if !bytes.Equal(w, g) {
			return i + 1, string(w), string(g)
		}
	}
	return 0, "", ""
}
