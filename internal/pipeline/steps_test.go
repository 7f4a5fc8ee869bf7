package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doccrawl/doccrawl/internal/model"
	"github.com/doccrawl/doccrawl/internal/store"
)

// fakeSaver records the report it was asked to persist.
type fakeSaver struct {
	saved *model.CrawlReport
	err   error
}

func (f *fakeSaver) SaveCrawlReport(_ context.Context, report *model.CrawlReport) (int64, error) {
	f.saved = report
	return 7, f.err
}

// TestConcatenateStep tests artifact generation through the step.
func TestConcatenateStep(t *testing.T) {
	t.Parallel()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := st.Write("page_a", "alpha"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := st.Write("page_b", "beta"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	step := NewConcatenateStep(st, nil)
	if step.Name() != "concatenate" {
		t.Errorf("unexpected step name %q", step.Name())
	}

	report := model.NewCrawlReport("https://a.com/", st.Dir())
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if report.ConcatenatedPages != 2 {
		t.Errorf("ConcatenatedPages = %d, want 2", report.ConcatenatedPages)
	}

	data, err := os.ReadFile(filepath.Join(st.Dir(), store.CombinedArtifact))
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	if !strings.Contains(string(data), "alpha") || !strings.Contains(string(data), "beta") {
		t.Error("artifact missing page content")
	}
}

// TestHistoryStep tests session persistence through the step.
func TestHistoryStep(t *testing.T) {
	t.Parallel()

	t.Run("saves the report", func(t *testing.T) {
		t.Parallel()

		saver := &fakeSaver{}
		step := NewHistoryStep(saver, nil)

		report := model.NewCrawlReport("https://a.com/", "out")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if saver.saved != report {
			t.Error("report was not passed to the saver")
		}
	})

	t.Run("wraps save errors", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("db locked")
		step := NewHistoryStep(&fakeSaver{err: boom}, nil)

		report := model.NewCrawlReport("https://a.com/", "out")
		if err := step.Do(context.Background(), report); !errors.Is(err, boom) {
			t.Errorf("expected wrapped db error, got %v", err)
		}
	})
}
