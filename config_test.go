package tidy_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cybergodev/tidy"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	src := `# tidy settings
indent: auto
Wrap: 80
output-xhtml: yes
new-blocklevel-tags: [x-card, x-panel]
new-inline-tags:
  - x-badge
alt-text:
`
	opts, err := tidy.ParseConfig(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseConfig() failed: %v", err)
	}

	want := tidy.Options{
		"indent":              "auto",
		"wrap":                80,
		"output-xhtml":        "yes",
		"new-blocklevel-tags": "x-card, x-panel",
		"new-inline-tags":     "x-badge",
		"alt-text":            "",
	}
	if len(opts) != len(want) {
		t.Fatalf("ParseConfig() = %v, want %v", opts, want)
	}
	for name, v := range want {
		if opts[name] != v {
			t.Errorf("opts[%q] = %#v, want %#v", name, opts[name], v)
		}
	}

	out, err := tidy.ParseString("<title>t</title><x-card>c</x-card>", opts)
	if err != nil {
		t.Fatalf("ParseString() with parsed options failed: %v", err)
	}
	if !strings.Contains(out, `xmlns="http://www.w3.org/1999/xhtml"`) {
		t.Errorf("parsed options were not applied:\n%s", out)
	}
}

func TestParseConfig_Empty(t *testing.T) {
	t.Parallel()

	opts, err := tidy.ParseConfig(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseConfig() failed: %v", err)
	}
	if len(opts) != 0 {
		t.Errorf("ParseConfig() = %v, want no options", opts)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		target  error
		message string
	}{
		{"unknown option", "indent: yes\nwrap: 0\nbogus: 1\n", tidy.ErrUnknownOption, "line 3: unknown tidy option 'bogus'"},
		{"repeated option", "wrap: 1\nWRAP: 2\n", tidy.ErrInvalidValue, "line 2: option 'wrap' already set on line 1"},
		{"invalid value", "indent: no\nwrap: wide\n", tidy.ErrInvalidValue, "line 2: "},
		{"nested mapping", "wrap:\n  a: 1\n", tidy.ErrInvalidValue, "unsupported value"},
		{"not a mapping", "- indent\n- wrap\n", tidy.ErrConfiguration, "must be a mapping"},
		{"malformed", "indent: [yes\n", tidy.ErrConfiguration, "cannot read configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tidy.ParseConfig(strings.NewReader(tt.src))
			if err == nil {
				t.Fatalf("ParseConfig() = %v, want an error", opts)
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("error = %v, want %v", err, tt.target)
			}
			if tidy.KindOf(err) != tidy.ConfigurationError {
				t.Errorf("KindOf() = %v, want ConfigurationError", tidy.KindOf(err))
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error = %q, want it to contain %q", err, tt.message)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tidy.conf")
	if err := os.WriteFile(path, []byte("indent: auto\nshow-body-only: yes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := tidy.LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() failed: %v", err)
	}
	out, err := tidy.ParseString("<div><p>x</p></div>", opts)
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}
	if out != "<div>\n  <p>x</p>\n</div>\n" {
		t.Errorf("ParseString() = %q", out)
	}

	_, err = tidy.LoadConfigFile(filepath.Join(dir, "missing.conf"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestOptionsMerge(t *testing.T) {
	t.Parallel()

	base := tidy.Options{"indent": "auto", "wrap": 68}
	merged := base.Merge(tidy.Options{"wrap": 0, "output-xml": true})

	if merged["indent"] != "auto" || merged["wrap"] != 0 || merged["output-xml"] != true {
		t.Errorf("Merge() = %v", merged)
	}
	if base["wrap"] != 68 || len(base) != 2 {
		t.Errorf("Merge() modified the receiver: %v", base)
	}

	var empty tidy.Options
	if got := empty.Merge(nil); got == nil || len(got) != 0 {
		t.Errorf("nil.Merge(nil) = %#v, want an empty map", got)
	}
}
