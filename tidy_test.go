package tidy_test

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/cybergodev/tidy"
)

func mustQuery(t *testing.T, out string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("goquery could not read output: %v", err)
	}
	return doc
}

func checkWellFormed(t *testing.T, out string) {
	t.Helper()
	d := xml.NewDecoder(strings.NewReader(out))
	d.Strict = true
	for {
		_, err := d.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("output is not well-formed XML: %v\n%s", err, out)
		}
	}
}

func TestParseString_XHTMLDocument(t *testing.T) {
	t.Parallel()

	out, err := tidy.ParseString("<title>Foo</title><p>Foo!", tidy.Options{
		"indent":       1,
		"markup":       1,
		"add-xml-decl": 1,
		"output-xhtml": 1,
	})
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}

	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="utf-8"?>`) {
		t.Errorf("output does not start with an XML declaration:\n%s", out)
	}
	if !strings.Contains(out, "</p>") {
		t.Errorf("output has no closed <p>:\n%s", out)
	}
	checkWellFormed(t, out)

	doc := mustQuery(t, out)
	if got := strings.TrimSpace(doc.Find("title").Text()); got != "Foo" {
		t.Errorf("title = %q, want %q", got, "Foo")
	}
	if got := strings.TrimSpace(doc.Find("body p").Text()); got != "Foo!" {
		t.Errorf("paragraph = %q, want %q", got, "Foo!")
	}
	if xmlns, _ := doc.Find("html").Attr("xmlns"); xmlns != "http://www.w3.org/1999/xhtml" {
		t.Errorf("xmlns = %q", xmlns)
	}
}

func TestParseString_EmptyDocument(t *testing.T) {
	t.Parallel()

	out, err := tidy.ParseString("", nil)
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("output has no doctype:\n%s", out)
	}

	doc := mustQuery(t, out)
	for _, sel := range []string{"html", "head", "head > title", "body"} {
		if doc.Find(sel).Length() != 1 {
			t.Errorf("skeleton is missing %s:\n%s", sel, out)
		}
	}
	if doc.Find("body").Children().Length() != 0 {
		t.Errorf("body of an empty document should be empty:\n%s", out)
	}
}

func TestParseString_UnknownOption(t *testing.T) {
	t.Parallel()

	out, err := tidy.ParseString("<p>x", tidy.Options{"not-a-real-option": 1})
	if err == nil {
		t.Fatal("ParseString() succeeded with an unknown option")
	}
	if out != "" {
		t.Errorf("output = %q, want none", out)
	}
	if !errors.Is(err, tidy.ErrConfiguration) || !errors.Is(err, tidy.ErrUnknownOption) {
		t.Errorf("error %v should match ErrConfiguration and ErrUnknownOption", err)
	}
	if errors.Is(err, tidy.ErrParse) {
		t.Errorf("error %v should not match ErrParse", err)
	}
	if tidy.KindOf(err) != tidy.ConfigurationError {
		t.Errorf("KindOf() = %v, want ConfigurationError", tidy.KindOf(err))
	}

	var te *tidy.Error
	if !errors.As(err, &te) {
		t.Fatalf("error %T is not a *tidy.Error", err)
	}
	if te.Option != "not-a-real-option" {
		t.Errorf("Option = %q", te.Option)
	}
}

func TestParseString_ConfigurationBeforeParse(t *testing.T) {
	t.Parallel()

	// the document alone would fail to parse
	_, err := tidy.ParseString("<blink2>x</blink2>", tidy.Options{"wrap": 0, "bogus": true})
	if tidy.KindOf(err) != tidy.ConfigurationError {
		t.Errorf("KindOf() = %v, want ConfigurationError (err: %v)", tidy.KindOf(err), err)
	}
}

func TestParseString_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts tidy.Options
	}{
		{"word for integer", tidy.Options{"wrap": "wide"}},
		{"auto bool out of range", tidy.Options{"indent": 3}},
		{"list for boolean", tidy.Options{"markup": []int{1}}},
		{"bool for string", tidy.Options{"doctype": true}},
		{"unknown encoding", tidy.Options{"char-encoding": "ebcdic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tidy.ParseString("<p>x", tt.opts)
			if !errors.Is(err, tidy.ErrInvalidValue) {
				t.Errorf("error = %v, want ErrInvalidValue", err)
			}
			if tidy.KindOf(err) != tidy.ConfigurationError {
				t.Errorf("KindOf() = %v, want ConfigurationError", tidy.KindOf(err))
			}
		})
	}
}

func TestParseString_ParseError(t *testing.T) {
	t.Parallel()

	src := "<title>t</title><blink2>x</blink2>"
	out, err := tidy.ParseString(src, nil)
	if err == nil {
		t.Fatalf("ParseString() succeeded on a document with errors: %q", out)
	}
	if !errors.Is(err, tidy.ErrParse) || tidy.KindOf(err) != tidy.ParseError {
		t.Fatalf("error = %v, want a parse error", err)
	}

	var te *tidy.Error
	errors.As(err, &te)
	if !strings.Contains(te.Message, "<blink2> is not recognized!") {
		t.Errorf("Message = %q, want the engine report", te.Message)
	}
	if len(te.Diagnostics) == 0 {
		t.Error("Diagnostics is empty")
	}

	out, err = tidy.ParseString(src, tidy.Options{"force-output": true})
	if err != nil {
		t.Fatalf("force-output: %v", err)
	}
	if mustQuery(t, out).Find("blink2").Length() != 1 {
		t.Errorf("forced output lost the element:\n%s", out)
	}
}

func TestParseString_DepthLimit(t *testing.T) {
	t.Parallel()

	src := strings.Repeat("<div>", tidy.DefaultMaxDepth+10) + "x"
	_, err := tidy.ParseString(src, nil)
	if !errors.Is(err, tidy.ErrMaxDepthExceeded) {
		t.Errorf("error = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestProcessor_DepthBeyondTreeBuilder(t *testing.T) {
	t.Parallel()

	c := tidy.DefaultConfig()
	c.MaxDepth = tidy.MaxNestingDepth
	p, err := tidy.New(c)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer p.Close()

	_, err = p.Tidy(strings.Repeat("<div>", 2000)+"x", nil)
	if !errors.Is(err, tidy.ErrMaxDepthExceeded) {
		t.Fatalf("error = %v, want ErrMaxDepthExceeded", err)
	}
	if !errors.Is(err, tidy.ErrParse) {
		t.Errorf("error = %v, want a parse error", err)
	}
	if !strings.Contains(err.Error(), "exceeds 512 levels") {
		t.Errorf("error = %v, want the nesting bound in the message", err)
	}
}

func TestParseString_Deterministic(t *testing.T) {
	t.Parallel()

	src := `<table><tr><td>1<td>2</table><ul><li>a<li>b</ul><p>Some <b>bold</b> text`
	opts := tidy.Options{"indent": "auto", "wrap": 40}
	first, err := tidy.ParseString(src, opts)
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := tidy.ParseString(src, opts)
		if err != nil {
			t.Fatalf("ParseString() failed: %v", err)
		}
		if got != first {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}

func TestParseString_Idempotent(t *testing.T) {
	t.Parallel()

	for _, opts := range []tidy.Options{
		nil,
		{"indent": "auto"},
		{"output-xhtml": true, "indent": true},
	} {
		first, err := tidy.ParseString("<title>T</title><h1>Head</h1><p>one<p>two <i>it</i>", opts)
		if err != nil {
			t.Fatalf("ParseString(%v) failed: %v", opts, err)
		}
		second, err := tidy.ParseString(first, opts)
		if err != nil {
			t.Fatalf("second ParseString(%v) failed: %v", opts, err)
		}
		if first != second {
			t.Errorf("tidying twice changed the output for %v:\n%s\nvs\n%s", opts, first, second)
		}
	}
}

func TestParseString_IdempotentMarkup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		opts tidy.Options
	}{
		{"plaintext", "<plaintext>a<b>c", nil},
		{"plaintext indented", "<plaintext>a<b>c", tidy.Options{"indent": true}},
		{"plaintext xhtml", "<plaintext>a<b>c", tidy.Options{"output-xhtml": true}},
		{"xmp", "<xmp>1 < 2 && <b></xmp><p>after", nil},
		{"comment after hidden end tag", "<p>x</p>\n<!-- c --><p>y", tidy.Options{"hide-endtags": true}},
		{"text after hidden end tag", "<div><p>a</p>b</div>", tidy.Options{"hide-endtags": true}},
		{"inline after hidden end tag", "<div><p>a</p><span>b</span></div>", tidy.Options{"hide-endtags": true}},
		{"lists and tables", "<ul><li>a<li>b</ul><table><tr><td>1<td>2</table>", tidy.Options{"hide-endtags": true, "indent": "auto"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			first, err := tidy.ParseString("<title>T</title>"+tt.src, tt.opts)
			if err != nil {
				t.Fatalf("ParseString() failed: %v", err)
			}
			second, err := tidy.ParseString(first, tt.opts)
			if err != nil {
				t.Fatalf("second ParseString() failed: %v", err)
			}
			if first != second {
				t.Errorf("tidying twice changed the output:\n%s\nvs\n%s", first, second)
			}
			if strings.Contains(first, "</plaintext>") {
				t.Errorf("plaintext written with an end tag:\n%s", first)
			}
		})
	}
}

func TestTidy_Diagnostics(t *testing.T) {
	t.Parallel()

	res, err := tidy.Tidy("<title>Foo</title><p>Foo!", nil)
	if err != nil {
		t.Fatalf("Tidy() failed: %v", err)
	}
	if res.Warnings != 2 || res.Errors != 0 {
		t.Errorf("Warnings, Errors = %d, %d; want 2, 0", res.Warnings, res.Errors)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(res.Diagnostics))
	}
	d := res.Diagnostics[1]
	if d.Line != 1 || d.Column != 19 || d.Severity != tidy.SeverityWarning {
		t.Errorf("diagnostic = %+v", d)
	}
	if !strings.Contains(res.Report, "2 warnings, 0 errors were found!") {
		t.Errorf("Report = %q", res.Report)
	}
	if res.ProcessingTime <= 0 {
		t.Error("ProcessingTime not set")
	}
}

func TestParseBytes_Encodings(t *testing.T) {
	t.Parallel()

	out, err := tidy.ParseBytes([]byte("<p>caf\xe9</p>"), tidy.Options{
		"input-encoding": "latin1",
		"show-body-only": true,
	})
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	if want := []byte("<p>café</p>\n"); !bytes.Equal(out, want) {
		t.Errorf("ParseBytes() = %q, want %q", out, want)
	}

	out, err = tidy.ParseBytes([]byte("<p>café</p>"), tidy.Options{
		"output-encoding": "ascii",
		"show-body-only":  true,
	})
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	if want := "<p>caf&#233;</p>\n"; string(out) != want {
		t.Errorf("ParseBytes() = %q, want %q", out, want)
	}
}

func TestOptionTable(t *testing.T) {
	t.Parallel()

	names := tidy.OptionNames()
	if !sort.StringsAreSorted(names) {
		t.Error("OptionNames() is not sorted")
	}
	for _, want := range []string{"indent", "markup", "output-xhtml", "add-xml-decl", "wrap"} {
		if _, ok := tidy.LookupOption(want); !ok {
			t.Errorf("option %q missing", want)
		}
	}

	info, ok := tidy.LookupOption("Indent")
	if !ok {
		t.Fatal("LookupOption is case-sensitive")
	}
	if info.Name != "indent" || info.Type != "Integer" || info.Default != "no" {
		t.Errorf("LookupOption(indent) = %+v", info)
	}
	if strings.Join(info.Values, ",") != "no,yes,auto" {
		t.Errorf("Values = %v", info.Values)
	}

	if _, ok := tidy.LookupOption("not-a-real-option"); ok {
		t.Error("LookupOption found an unknown option")
	}
}

func TestEngines(t *testing.T) {
	t.Parallel()

	found := false
	for _, name := range tidy.Engines() {
		if name == "native" {
			found = true
		}
	}
	if !found {
		t.Errorf("Engines() = %v, want native", tidy.Engines())
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	if k := tidy.KindOf(errors.New("plain")); k != 0 {
		t.Errorf("KindOf(plain) = %v", k)
	}
	if k := tidy.KindOf(nil); k != 0 {
		t.Errorf("KindOf(nil) = %v", k)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	tidy.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer tidy.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if _, err := tidy.ParseString("<p>x", nil); err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}
	if !strings.Contains(buf.String(), "tidied document") {
		t.Errorf("debug log missing, got %q", buf.String())
	}

	tidy.SetLogger(nil)
	if _, err := tidy.ParseString("<p>x", nil); err != nil {
		t.Fatalf("ParseString() with a silenced logger failed: %v", err)
	}
}
