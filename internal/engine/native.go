package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/cybergodev/tidy/internal"
	"github.com/cybergodev/tidy/internal/config"
	"github.com/cybergodev/tidy/internal/diag"
	"github.com/cybergodev/tidy/internal/pprint"
	"golang.org/x/net/html"
)

type nativeBackend struct{}

func (nativeBackend) Name() string { return DefaultBackend }

func (nativeBackend) NewDoc(limits Limits) (Doc, error) {
	return &nativeDoc{cfg: config.New(), limits: limits}, nil
}

type stage int

const (
	stageNew stage = iota
	stageParsed
	stageCleaned
)

// nativeDoc parses with golang.org/x/net/html and serializes with pprint.
type nativeDoc struct {
	cfg      *config.Config
	limits   Limits
	tags     *internal.TagTable
	root     *html.Node
	diags    []diag.Diagnostic
	fragment bool
	stage    stage
	released bool
}

func (d *nativeDoc) SetOption(name string, value any) error {
	if d.released {
		return released()
	}
	return d.cfg.Set(name, value)
}

func (d *nativeDoc) SetOptionValue(name, text string) error {
	if d.released {
		return released()
	}
	return d.cfg.SetValue(name, text)
}

func (d *nativeDoc) ParseString(document string) error {
	return d.ParseBytes([]byte(document))
}

func (d *nativeDoc) ParseBytes(data []byte) error {
	if d.released {
		return released()
	}
	d.root, d.diags, d.stage = nil, nil, stageNew

	enc := d.cfg.Str(config.InputEncoding)
	decoded, err := internal.DecodeToUTF8(data, enc)
	if err != nil {
		return diag.Parsef(err, nil, "cannot decode input as %s: %v", enc, err)
	}

	d.tags = internal.NewTagTable(
		d.cfg.Tags(config.NewBlocklevelTags),
		d.cfg.Tags(config.NewInlineTags),
		d.cfg.Tags(config.NewEmptyTags),
		d.cfg.Tags(config.NewPreTags),
	)
	text := string(decoded)
	d.diags, d.fragment = lint(text, d.tags)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}

	root, err := html.ParseWithOptions(strings.NewReader(text), html.ParseOptionEnableScripting(false))
	if err != nil {
		// the tree builder refuses documents nested deeper than it can hold
		if strings.Contains(err.Error(), "open stack of elements exceeds") {
			limit := d.limits.MaxDepth
			if limit <= 0 || limit > MaxNestingDepth {
				limit = MaxNestingDepth
			}
			return diag.Parsef(diag.ErrMaxDepthExceeded, d.diags,
				"document nesting exceeds %d levels", limit)
		}
		return diag.Parsef(diag.ErrParse, d.diags, "%v", err)
	}
	if limit := d.limits.MaxDepth; limit > 0 {
		if depth := internal.MaxDepth(root, limit); depth > limit {
			return diag.Parsef(diag.ErrMaxDepthExceeded, d.diags,
				"document nesting exceeds %d levels", limit)
		}
	}
	d.root = root
	d.stage = stageParsed
	return nil
}

func (d *nativeDoc) CleanAndRepair() error {
	if d.released {
		return released()
	}
	if d.stage < stageParsed {
		return diag.Parsef(diag.ErrParse, nil, "no document has been parsed")
	}
	if d.stage == stageCleaned {
		return nil
	}
	c := &cleaner{cfg: d.cfg}
	c.run(d.root)
	d.diags = append(d.diags, c.diags...)
	d.stage = stageCleaned
	return nil
}

func (d *nativeDoc) Save() (string, error) {
	if d.released {
		return "", released()
	}
	if d.stage < stageParsed {
		return "", diag.Parsef(diag.ErrParse, nil, "no document has been parsed")
	}
	reported := d.Diagnostics()
	if _, errs := diag.Count(d.diags); errs > 0 && !d.cfg.Bool(config.ForceOutput) {
		return "", diag.Parsef(diag.ErrParse, reported, "%s", diag.Report(reported, false))
	}
	if !d.cfg.Bool(config.Markup) {
		return "", nil
	}

	out := pprint.Render(d.root, d.printOptions())
	enc := d.cfg.Str(config.OutputEncoding)
	encoded, err := internal.EncodeFromUTF8(out, enc)
	if err != nil {
		return "", diag.Parsef(err, reported, "cannot encode output as %s: %v", enc, err)
	}
	return string(encoded), nil
}

func (d *nativeDoc) printOptions() pprint.Options {
	cfg := d.cfg
	opts := pprint.Options{
		Indent:           cfg.Int(config.Indent),
		IndentSpaces:     cfg.Int(config.IndentSpaces),
		IndentAttributes: cfg.Bool(config.IndentAttributes),
		Wrap:             cfg.Int(config.Wrap),
		TabSize:          cfg.Int(config.TabSize),
		VerticalSpace:    cfg.Bool(config.VerticalSpace),
		XMLDecl:          cfg.Bool(config.AddXMLDecl),
		Charset:          internal.CharsetLabel(cfg.Str(config.OutputEncoding)),
		Doctype:          cfg.Str(config.Doctype),
		HideEndTags:      cfg.Bool(config.HideEndTags),
		UppercaseTags:    cfg.Bool(config.UppercaseTags),
		UppercaseAttrs:   cfg.Bool(config.UppercaseAttributes),
		SortAttributes:   cfg.Str(config.SortAttributes) == "alpha",
		BreakBeforeBR:    cfg.Bool(config.BreakBeforeBR),
		QuoteAmpersand:   cfg.Bool(config.QuoteAmpersand),
		QuoteMarks:       cfg.Bool(config.QuoteMarks),
		QuoteNbsp:        cfg.Bool(config.QuoteNbsp),
		NumericEntities:  cfg.Bool(config.NumericEntities),
		EscapeCDATA:      cfg.Bool(config.EscapeCDATA),
		Tags:             d.tags,
	}
	switch {
	case cfg.Bool(config.OutputXHTML):
		opts.Mode = pprint.XHTML
	case cfg.Bool(config.OutputXML):
		opts.Mode = pprint.XML
	default:
		opts.Mode = pprint.HTML
	}
	switch cfg.Int(config.ShowBodyOnly) {
	case config.Yes:
		opts.BodyOnly = true
	case config.Auto:
		opts.BodyOnly = d.fragment
	}
	switch cfg.Str(config.Newline) {
	case "CRLF":
		opts.Newline = "\r\n"
	case "CR":
		opts.Newline = "\r"
	default:
		opts.Newline = "\n"
	}
	return opts
}

// Diagnostics returns the messages selected by show-warnings,
// show-errors and mute, in document order.
func (d *nativeDoc) Diagnostics() []diag.Diagnostic {
	return filterDiagnostics(d.diags, d.cfg)
}

func (d *nativeDoc) Report() string {
	return diag.Report(d.Diagnostics(), d.cfg.Bool(config.Quiet))
}

func (d *nativeDoc) Release() {
	d.released = true
	d.root = nil
	d.diags = nil
}

func released() error {
	return diag.Parsef(diag.ErrReleased, nil, "document handle used after release")
}

func filterDiagnostics(ds []diag.Diagnostic, cfg *config.Config) []diag.Diagnostic {
	muted := make(map[string]bool)
	for _, code := range cfg.Tags(config.Mute) {
		muted[code] = true
	}
	showWarnings := cfg.Bool(config.ShowWarnings)
	maxErrors := cfg.Int(config.ShowErrors)

	out := make([]diag.Diagnostic, 0, len(ds))
	errs := 0
	for _, d := range ds {
		if muted[d.Code] {
			continue
		}
		switch d.Severity {
		case diag.Warning:
			if !showWarnings {
				continue
			}
		case diag.Error:
			if errs >= maxErrors {
				continue
			}
			errs++
		}
		out = append(out, d)
	}
	return out
}
