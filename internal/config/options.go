// Package config holds the closed table of tidy options and a typed
// value store for one engine handle.
//
// Every recognized option has an ID, a canonical name, a value type and a
// default. Names that are not in the table are rejected; nothing is
// forwarded to an engine unchecked.
package config

import (
	"sort"
	"strings"
)

// Type is the value type of an option.
type Type int

const (
	Boolean Type = iota
	Integer
	String
)

func (t Type) String() string {
	switch t {
	case Boolean:
		return "Boolean"
	case Integer:
		return "Integer"
	default:
		return "String"
	}
}

// ID identifies a recognized option.
type ID int

const (
	Unknown ID = iota
	AddMetaCharset
	AddXMLDecl
	AltText
	Bare
	BreakBeforeBR
	CharEncoding
	Doctype
	DropEmptyElements
	DropEmptyParas
	EncloseText
	EscapeCDATA
	FixURI
	ForceOutput
	HideComments
	HideEndTags
	Indent
	IndentAttributes
	IndentSpaces
	InputEncoding
	Markup
	Mute
	NewBlocklevelTags
	NewEmptyTags
	NewInlineTags
	NewPreTags
	Newline
	NumericEntities
	OutputEncoding
	OutputHTML
	OutputXHTML
	OutputXML
	Quiet
	QuoteAmpersand
	QuoteMarks
	QuoteNbsp
	ShowBodyOnly
	ShowErrors
	ShowWarnings
	SortAttributes
	TabSize
	TidyMark
	UppercaseAttributes
	UppercaseTags
	VerticalSpace
	Wrap
	numIDs
)

// AutoBool values for the no/yes/auto pick list.
const (
	No = iota
	Yes
	Auto
)

var autoBoolPick = []string{"no", "yes", "auto"}

// Encodings lists the character encoding names accepted by the
// char-encoding, input-encoding and output-encoding options.
var Encodings = []string{
	"raw", "ascii", "latin0", "latin1", "utf8", "win1252", "mac", "ibm858",
	"utf16", "utf16le", "utf16be", "big5", "shiftjis", "euc-jp", "gbk", "euc-kr",
}

// Option describes one entry of the option table.
type Option struct {
	ID      ID
	Name    string
	Type    Type
	Default string
	Pick    []string
	TagList bool
	Min     int
	Max     int
	Doc     string
}

func boolOpt(id ID, name, def, doc string) Option {
	return Option{ID: id, Name: name, Type: Boolean, Default: def, Pick: []string{"no", "yes"}, Doc: doc}
}

func intOpt(id ID, name, def string, min, max int, doc string) Option {
	return Option{ID: id, Name: name, Type: Integer, Default: def, Min: min, Max: max, Doc: doc}
}

func autoOpt(id ID, name, def, doc string) Option {
	return Option{ID: id, Name: name, Type: Integer, Default: def, Pick: autoBoolPick, Min: No, Max: Auto, Doc: doc}
}

func pickOpt(id ID, name, def string, pick []string, doc string) Option {
	return Option{ID: id, Name: name, Type: String, Default: def, Pick: pick, Doc: doc}
}

func strOpt(id ID, name, doc string) Option {
	return Option{ID: id, Name: name, Type: String, Doc: doc}
}

func tagsOpt(id ID, name, doc string) Option {
	return Option{ID: id, Name: name, Type: String, TagList: true, Doc: doc}
}

var table = [numIDs]Option{
	AddMetaCharset:      boolOpt(AddMetaCharset, "add-meta-charset", "no", "add a <meta charset> element for the output encoding"),
	AddXMLDecl:          boolOpt(AddXMLDecl, "add-xml-decl", "no", "emit an XML declaration in XHTML and XML output"),
	AltText:             strOpt(AltText, "alt-text", "alt text inserted into <img> elements that lack one"),
	Bare:                boolOpt(Bare, "bare", "no", "replace typographic quotes and dashes with ASCII"),
	BreakBeforeBR:       boolOpt(BreakBeforeBR, "break-before-br", "no", "write a line break before each <br>"),
	CharEncoding:        pickOpt(CharEncoding, "char-encoding", "utf8", Encodings, "set both input-encoding and output-encoding"),
	Doctype:             pickOpt(Doctype, "doctype", "auto", []string{"auto", "html5", "omit", "strict", "transitional", "loose"}, "document type declaration to emit"),
	DropEmptyElements:   boolOpt(DropEmptyElements, "drop-empty-elements", "yes", "discard empty presentational inline elements"),
	DropEmptyParas:      boolOpt(DropEmptyParas, "drop-empty-paras", "yes", "discard empty paragraphs"),
	EncloseText:         boolOpt(EncloseText, "enclose-text", "no", "wrap text found directly in <body> in a <p>"),
	EscapeCDATA:         boolOpt(EscapeCDATA, "escape-cdata", "no", "escape script and style content instead of wrapping it in CDATA"),
	FixURI:              boolOpt(FixURI, "fix-uri", "yes", "percent-escape illegal characters in URI attributes"),
	ForceOutput:         boolOpt(ForceOutput, "force-output", "no", "produce output even when errors are found"),
	HideComments:        boolOpt(HideComments, "hide-comments", "no", "drop comments from the output"),
	HideEndTags:         boolOpt(HideEndTags, "hide-endtags", "no", "omit optional end tags in HTML output"),
	Indent:              autoOpt(Indent, "indent", "no", "indent block-level content"),
	IndentAttributes:    boolOpt(IndentAttributes, "indent-attributes", "no", "write each attribute on its own line"),
	IndentSpaces:        intOpt(IndentSpaces, "indent-spaces", "2", 0, 64, "spaces per indentation level"),
	InputEncoding:       pickOpt(InputEncoding, "input-encoding", "utf8", Encodings, "character encoding of the input"),
	Markup:              boolOpt(Markup, "markup", "yes", "write the tidied document"),
	Mute:                tagsOpt(Mute, "mute", "diagnostic codes to suppress"),
	NewBlocklevelTags:   tagsOpt(NewBlocklevelTags, "new-blocklevel-tags", "custom block-level elements"),
	NewEmptyTags:        tagsOpt(NewEmptyTags, "new-empty-tags", "custom empty elements"),
	NewInlineTags:       tagsOpt(NewInlineTags, "new-inline-tags", "custom inline elements"),
	NewPreTags:          tagsOpt(NewPreTags, "new-pre-tags", "custom preformatted elements"),
	Newline:             pickOpt(Newline, "newline", "LF", []string{"LF", "CRLF", "CR"}, "line ending style of the output"),
	NumericEntities:     boolOpt(NumericEntities, "numeric-entities", "no", "write numeric instead of named entities"),
	OutputEncoding:      pickOpt(OutputEncoding, "output-encoding", "utf8", Encodings, "character encoding of the output"),
	OutputHTML:          boolOpt(OutputHTML, "output-html", "no", "write HTML"),
	OutputXHTML:         boolOpt(OutputXHTML, "output-xhtml", "no", "write XHTML"),
	OutputXML:           boolOpt(OutputXML, "output-xml", "no", "write well-formed XML"),
	Quiet:               boolOpt(Quiet, "quiet", "no", "omit summary lines from the report"),
	QuoteAmpersand:      boolOpt(QuoteAmpersand, "quote-ampersand", "yes", "write & in text as &amp;"),
	QuoteMarks:          boolOpt(QuoteMarks, "quote-marks", "no", "write quotation marks in text as entities"),
	QuoteNbsp:           boolOpt(QuoteNbsp, "quote-nbsp", "yes", "write non-breaking spaces as entities"),
	ShowBodyOnly:        autoOpt(ShowBodyOnly, "show-body-only", "no", "write only the content of <body>"),
	ShowErrors:          intOpt(ShowErrors, "show-errors", "6", 0, 1<<20, "maximum number of errors reported"),
	ShowWarnings:        boolOpt(ShowWarnings, "show-warnings", "yes", "report warnings"),
	SortAttributes:      pickOpt(SortAttributes, "sort-attributes", "none", []string{"none", "alpha"}, "attribute order in the output"),
	TabSize:             intOpt(TabSize, "tab-size", "8", 1, 64, "tab stop width used in preformatted text"),
	TidyMark:            boolOpt(TidyMark, "tidy-mark", "yes", "add a generator <meta> element"),
	UppercaseAttributes: boolOpt(UppercaseAttributes, "uppercase-attributes", "no", "write attribute names in upper case (HTML only)"),
	UppercaseTags:       boolOpt(UppercaseTags, "uppercase-tags", "no", "write element names in upper case (HTML only)"),
	VerticalSpace:       boolOpt(VerticalSpace, "vertical-space", "no", "add a blank line after block-level elements"),
	Wrap:                intOpt(Wrap, "wrap", "68", 0, 1<<20, "column at which text is wrapped, 0 disables wrapping"),
}

var byName = func() map[string]ID {
	m := make(map[string]ID, numIDs)
	for id := ID(1); id < numIDs; id++ {
		m[table[id].Name] = id
	}
	return m
}()

// Lookup returns the option registered under name. Names are matched
// case-insensitively.
func Lookup(name string) (Option, bool) {
	id, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Option{}, false
	}
	return table[id], true
}

// Get returns the table entry for id.
func Get(id ID) Option {
	if id <= Unknown || id >= numIDs {
		return Option{}
	}
	return table[id]
}

// All returns every option sorted by name.
func All() []Option {
	opts := make([]Option, 0, numIDs-1)
	for id := ID(1); id < numIDs; id++ {
		opts = append(opts, table[id])
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Name < opts[j].Name })
	return opts
}

// Names returns the sorted names of all options.
func Names() []string {
	opts := All()
	names := make([]string, len(opts))
	for i, o := range opts {
		names[i] = o.Name
	}
	return names
}
