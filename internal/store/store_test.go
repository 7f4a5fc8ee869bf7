package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNew tests output directory creation.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates nested directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "docs.example.com_")
		if _, err := New(dir); err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory at %s", dir)
		}
	})

	t.Run("existing directory is fine", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if _, err := New(dir); err != nil {
			t.Fatalf("New on existing directory failed: %v", err)
		}
	})
}

// TestPageRoundTrip tests Write, Exists, and Read together.
func TestPageRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	const slug = "docs.example.com_guide"

	if s.Exists(slug) {
		t.Error("page should not exist before Write")
	}

	if err := s.Write(slug, "page body"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if !s.Exists(slug) {
		t.Error("page should exist after Write")
	}

	got, err := s.Read(slug)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "page body" {
		t.Errorf("expected %q, got %q", "page body", got)
	}
}

// TestReadMissing tests that reading an absent page is an error.
func TestReadMissing(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := s.Read("no_such_page"); err == nil {
		t.Error("expected error reading missing page")
	}
}

// TestConcatenate tests combined artifact generation.
func TestConcatenate(t *testing.T) {
	t.Parallel()

	t.Run("includes every page with headers", func(t *testing.T) {
		t.Parallel()

		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		pages := map[string]string{
			"docs.example.com_":      "root content",
			"docs.example.com_guide": "guide content",
		}
		for slug, body := range pages {
			if err := s.Write(slug, body); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}

		n, err := s.Concatenate()
		if err != nil {
			t.Fatalf("Concatenate failed: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 pages concatenated, got %d", n)
		}

		data, err := os.ReadFile(filepath.Join(s.Dir(), CombinedArtifact))
		if err != nil {
			t.Fatalf("failed to read combined artifact: %v", err)
		}
		combined := string(data)

		for slug, body := range pages {
			if !strings.Contains(combined, "===== "+slug+".txt =====") {
				t.Errorf("combined artifact missing header for %s", slug)
			}
			if !strings.Contains(combined, body) {
				t.Errorf("combined artifact missing content %q", body)
			}
		}
	})

	t.Run("excludes the artifact itself on rerun", func(t *testing.T) {
		t.Parallel()

		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if err := s.Write("page", "body"); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		if _, err := s.Concatenate(); err != nil {
			t.Fatalf("first Concatenate failed: %v", err)
		}
		n, err := s.Concatenate()
		if err != nil {
			t.Fatalf("second Concatenate failed: %v", err)
		}
		if n != 1 {
			t.Errorf("artifact fed itself: expected 1 page on rerun, got %d", n)
		}

		data, err := os.ReadFile(filepath.Join(s.Dir(), CombinedArtifact))
		if err != nil {
			t.Fatalf("failed to read combined artifact: %v", err)
		}
		if strings.Contains(string(data), CombinedArtifact) {
			t.Error("combined artifact must not include its own header")
		}
	})

	t.Run("ignores non-text files", func(t *testing.T) {
		t.Parallel()

		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if err := s.Write("page", "body"); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := os.WriteFile(filepath.Join(s.Dir(), "notes.md"), []byte("skip me"), 0600); err != nil {
			t.Fatalf("failed to write extra file: %v", err)
		}

		n, err := s.Concatenate()
		if err != nil {
			t.Fatalf("Concatenate failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 page, got %d", n)
		}
	})

	t.Run("empty directory yields empty artifact", func(t *testing.T) {
		t.Parallel()

		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		n, err := s.Concatenate()
		if err != nil {
			t.Fatalf("Concatenate failed: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 pages, got %d", n)
		}
		if _, err := os.Stat(filepath.Join(s.Dir(), CombinedArtifact)); err != nil {
			t.Error("combined artifact should still be created")
		}
	})
}
