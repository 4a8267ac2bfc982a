package tidy_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cybergodev/tidy"
)

func TestTidyBatch(t *testing.T) {
	t.Parallel()

	p := tidy.NewWithDefaults()
	defer p.Close()

	opts := tidy.Options{"show-body-only": true}

	t.Run("empty batch", func(t *testing.T) {
		results, err := p.TidyBatch([]string{}, opts)
		if err != nil {
			t.Fatalf("TidyBatch() failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("TidyBatch() returned %d results, want 0", len(results))
		}
	})

	t.Run("keeps input order", func(t *testing.T) {
		docs := []string{"<p>Test 1", "<p>Test 2", "<p>Test 3", "<p>Test 4", "<p>Test 5", "<p>Test 6"}
		results, err := p.TidyBatch(docs, opts)
		if err != nil {
			t.Fatalf("TidyBatch() failed: %v", err)
		}
		if len(results) != len(docs) {
			t.Fatalf("TidyBatch() returned %d results, want %d", len(results), len(docs))
		}
		for i, res := range results {
			want := "<p>" + strings.TrimPrefix(docs[i], "<p>") + "</p>\n"
			if res.Output != want {
				t.Errorf("results[%d].Output = %q, want %q", i, res.Output, want)
			}
		}
	})

	t.Run("partial failure", func(t *testing.T) {
		docs := []string{"<p>fine", "<blink2>bad</blink2>", "<p>also fine"}
		results, err := p.TidyBatch(docs, opts)
		if err == nil {
			t.Fatal("TidyBatch() reported no error")
		}
		if !strings.Contains(err.Error(), "partial failure (2/3 succeeded)") || !strings.Contains(err.Error(), "item 1:") {
			t.Errorf("error = %v", err)
		}
		if !errors.Is(err, tidy.ErrParse) {
			t.Errorf("error %v should wrap the parse error", err)
		}
		if results[0] == nil || results[1] != nil || results[2] == nil {
			t.Errorf("results = %v, want the failed item nil", results)
		}
	})

	t.Run("all fail", func(t *testing.T) {
		_, err := p.TidyBatch([]string{"<p>x", "<p>y"}, tidy.Options{"bogus": 1})
		if err == nil || !strings.Contains(err.Error(), "all 2 items failed") {
			t.Errorf("error = %v", err)
		}
		if tidy.KindOf(err) != tidy.ConfigurationError {
			t.Errorf("KindOf() = %v, want ConfigurationError", tidy.KindOf(err))
		}
	})
}

func TestTidyFile(t *testing.T) {
	t.Parallel()

	p := tidy.NewWithDefaults()
	defer p.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte("<title>File</title><p>from disk"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := p.TidyFile(path, nil)
	if err != nil {
		t.Fatalf("TidyFile() failed: %v", err)
	}
	if !strings.Contains(res.Output, "<p>from disk</p>") {
		t.Errorf("Output = %q", res.Output)
	}

	if _, err := p.TidyFile("", nil); err == nil {
		t.Error("TidyFile(\"\") succeeded")
	}
	_, err = p.TidyFile(filepath.Join(dir, "missing.html"), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestTidyFile_InputEncoding(t *testing.T) {
	t.Parallel()

	p := tidy.NewWithDefaults()
	defer p.Close()

	path := filepath.Join(t.TempDir(), "latin1.html")
	if err := os.WriteFile(path, []byte("<p>na\xefve</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := p.TidyFile(path, tidy.Options{"input-encoding": "latin1", "show-body-only": true})
	if err != nil {
		t.Fatalf("TidyFile() failed: %v", err)
	}
	if res.Output != "<p>naïve</p>\n" {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestTidyBatchFiles(t *testing.T) {
	t.Parallel()

	p := tidy.NewWithDefaults()
	defer p.Close()

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.html", "b.html", "c.html"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("<p>"+name), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}

	results, err := p.TidyBatchFiles(paths, tidy.Options{"show-body-only": true})
	if err != nil {
		t.Fatalf("TidyBatchFiles() failed: %v", err)
	}
	for i, name := range []string{"a.html", "b.html", "c.html"} {
		if want := "<p>" + name + "</p>\n"; results[i].Output != want {
			t.Errorf("results[%d].Output = %q, want %q", i, results[i].Output, want)
		}
	}

	missing := filepath.Join(dir, "missing.html")
	_, err = p.TidyBatchFiles(append(paths, missing), nil)
	if err == nil || !strings.Contains(err.Error(), missing) {
		t.Errorf("error = %v, want it to name %s", err, missing)
	}
}
