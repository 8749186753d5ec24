package resource

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestDir(t *testing.T) (*Dir, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "stars", "ten-star.csv"), "StarID,ProperName\n")
	writeFile(t, filepath.Join(root, "census", "Income_by_Race.csv"), "\xEF\xBB\xBFState,Income\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "not csv")

	d, err := NewDir(root)
	if err != nil {
		t.Fatal(err)
	}
	return d, root
}

func TestDir_Resolve(t *testing.T) {
	d, root := newTestDir(t)

	tests := []struct {
		name    string
		query   string
		want    string
		wantErr error
	}{
		{"without extension", "ten-star", filepath.Join(root, "stars", "ten-star.csv"), nil},
		{"with extension", "ten-star.csv", filepath.Join(root, "stars", "ten-star.csv"), nil},
		{"case insensitive", "income_by_race", filepath.Join(root, "census", "Income_by_Race.csv"), nil},
		{"upper-case extension", "TEN-STAR.CSV", filepath.Join(root, "stars", "ten-star.csv"), nil},
		{"missing", "nope", "", ErrNotFound},
		{"non csv file", "notes.txt", "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Resolve(tt.query)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDir_OpenSanitizes(t *testing.T) {
	d, _ := newTestDir(t)

	rc, path, err := d.Open("income_by_race")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()

	if filepath.Base(path) != "Income_by_Race.csv" {
		t.Errorf("path = %q", path)
	}
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "State,Income\n" {
		t.Errorf("got %q, BOM not stripped", data)
	}
}

func TestDir_Within(t *testing.T) {
	d, root := newTestDir(t)
	outside := filepath.Join(t.TempDir(), "elsewhere.csv")
	writeFile(t, outside, "a\n")

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"inside", filepath.Join(root, "stars", "ten-star.csv"), "ten-star", nil},
		{"other extension stripped", filepath.Join(root, "notes.txt"), "notes", nil},
		{"outside root", outside, "", ErrOutsideRoot},
		{"dot-dot escape", filepath.Join(root, "..", "x.csv"), "", ErrOutsideRoot},
		{"root itself", root, "", ErrOutsideRoot},
		{"missing inside root", filepath.Join(root, "ghost.csv"), "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Within(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDir_MissingRoot(t *testing.T) {
	d, err := NewDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Resolve("x"); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestDir_OpenPath(t *testing.T) {
	d, root := newTestDir(t)

	rc, path, err := d.OpenPath(filepath.Join(root, "census", "Income_by_Race.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	if !filepath.IsAbs(path) {
		t.Errorf("path %q is not absolute", path)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "State,Income\n" {
		t.Errorf("got %q", data)
	}

	outside := filepath.Join(t.TempDir(), "x.csv")
	writeFile(t, outside, "a\n")
	if _, _, err := d.OpenPath(outside); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("got %v, want ErrOutsideRoot", err)
	}
}
