package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CombinedArtifact is the filename of the concatenated crawl output.
// It lives alongside the per-page files and is excluded from its own input.
const CombinedArtifact = "_totalcrawl.txt"

// textExtension is the extension for per-page output files.
const textExtension = ".txt"

// PageStore persists fetched pages as flat text files, one per URL slug,
// under a single directory derived from the entry URL.
//
// The store doubles as the crawl's resume mechanism: the presence of a
// page file is the sole signal that a URL was already processed. No index
// or manifest exists beside the files themselves.
type PageStore struct {
	// dir is the output directory. Created on construction.
	dir string
}

// New creates a PageStore rooted at dir, creating the directory if needed.
// A directory creation failure is an unrecoverable environment problem
// and is returned to the caller.
func New(dir string) (*PageStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &PageStore{dir: dir}, nil
}

// Dir returns the output directory path.
func (s *PageStore) Dir() string {
	return s.dir
}

// Path returns the file path for a page slug.
func (s *PageStore) Path(slug string) string {
	return filepath.Join(s.dir, slug+textExtension)
}

// Exists reports whether a page file for the slug is already on disk.
func (s *PageStore) Exists(slug string) bool {
	_, err := os.Stat(s.Path(slug))
	return err == nil
}

// Read returns the content of a previously stored page.
func (s *PageStore) Read(slug string) (string, error) {
	data, err := os.ReadFile(s.Path(slug)) //nolint:gosec // Path is derived from a sanitized slug
	if err != nil {
		return "", fmt.Errorf("failed to read cached page %s: %w", slug, err)
	}
	return string(data), nil
}

// Write persists a page body verbatim.
func (s *PageStore) Write(slug, content string) error {
	if err := os.WriteFile(s.Path(slug), []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write page %s: %w", slug, err)
	}
	return nil
}

// Concatenate writes the combined artifact: every page file in listing
// order, each preceded by a header line naming its source file and a
// blank line, followed by a blank line separator. Any prior artifact is
// overwritten. It returns the number of page files included.
//
// Design decision: We stream file-by-file through a buffered writer
// rather than loading all pages into memory because documentation crawls
// can accumulate hundreds of megabytes of text.
func (s *PageStore) Concatenate() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list output directory: %w", err)
	}

	out, err := os.Create(filepath.Join(s.dir, CombinedArtifact))
	if err != nil {
		return 0, fmt.Errorf("failed to create combined artifact: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == CombinedArtifact || !strings.HasSuffix(name, textExtension) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name)) //nolint:gosec // Names come from ReadDir
		if err != nil {
			return count, fmt.Errorf("failed to read %s: %w", name, err)
		}

		if _, err := fmt.Fprintf(w, "===== %s =====\n\n", name); err != nil {
			return count, fmt.Errorf("failed to write combined artifact: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return count, fmt.Errorf("failed to write combined artifact: %w", err)
		}
		if _, err := w.WriteString("\n\n"); err != nil {
			return count, fmt.Errorf("failed to write combined artifact: %w", err)
		}
		count++
	}

	if err := w.Flush(); err != nil {
		return count, fmt.Errorf("failed to flush combined artifact: %w", err)
	}
	return count, nil
}
