// Package pprint serializes a repaired document tree as HTML, XHTML or
// XML, with tidy-style indentation, wrapping and entity handling.
package pprint

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cybergodev/tidy/internal"
	"golang.org/x/net/html"
)

// Mode selects the output dialect.
type Mode int

const (
	HTML Mode = iota
	XHTML
	XML
)

// Indentation styles, matching the indent option's no/yes/auto values.
const (
	IndentNo = iota
	IndentYes
	IndentAuto
)

const xhtmlNamespace = "http://www.w3.org/1999/xhtml"

// Options controls serialization.
type Options struct {
	Mode             Mode
	Indent           int
	IndentSpaces     int
	IndentAttributes bool
	Wrap             int
	TabSize          int
	VerticalSpace    bool
	BodyOnly         bool
	XMLDecl          bool
	Charset          string // IANA label written in the XML declaration
	Doctype          string // auto, html5, omit, strict, transitional, loose
	HideEndTags      bool
	UppercaseTags    bool
	UppercaseAttrs   bool
	SortAttributes   bool
	BreakBeforeBR    bool
	QuoteAmpersand   bool
	QuoteMarks       bool
	QuoteNbsp        bool
	NumericEntities  bool
	EscapeCDATA      bool
	Newline          string
	Tags             *internal.TagTable
}

// DefaultOptions mirrors the defaults of the option table.
func DefaultOptions() Options {
	return Options{
		IndentSpaces:   2,
		Wrap:           68,
		TabSize:        8,
		Doctype:        "auto",
		QuoteAmpersand: true,
		QuoteNbsp:      true,
		Newline:        "\n",
	}
}

// Empty elements that sit on their own line like block elements.
var blockEmpty = map[string]bool{
	"hr": true, "meta": true, "link": true, "base": true, "col": true,
	"frame": true, "basefont": true, "param": true, "source": true, "track": true,
}

type printer struct {
	opts Options
	unit int
	sb   strings.Builder

	col      int
	dirty    bool // current line has content
	level    int  // indentation for the next content on a fresh line
	space    bool // whitespace seen since the last word
	runStart bool // no word written yet in the current inline run
	blank    bool // emit a blank line before the next line
}

// Render serializes doc.
func Render(doc *html.Node, opts Options) string {
	if opts.Tags == nil {
		opts.Tags = internal.NewTagTable(nil, nil, nil, nil)
	}
	if opts.TabSize <= 0 {
		opts.TabSize = 8
	}
	p := &printer{opts: opts}
	if opts.Indent != IndentNo {
		p.unit = opts.IndentSpaces
	}

	if opts.BodyOnly {
		root := internal.FindElementByTag(doc, "body")
		if root == nil {
			root = doc
		}
		p.children(root, 0)
	} else {
		p.prologue(doc)
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.DoctypeNode {
				continue
			}
			p.block(c, 0)
		}
	}
	p.endLine()

	out := p.sb.String()
	if opts.Newline != "" && opts.Newline != "\n" {
		out = strings.ReplaceAll(out, "\n", opts.Newline)
	}
	return out
}

func (p *printer) prologue(doc *html.Node) {
	if p.opts.XMLDecl && p.opts.Mode != HTML {
		decl := `<?xml version="1.0"`
		if p.opts.Charset != "" {
			decl += ` encoding="` + p.opts.Charset + `"`
		}
		p.line(0, decl+"?>")
	}
	var original *html.Node
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			original = c
			break
		}
	}
	if dt := doctype(p.opts, original); dt != "" {
		p.line(0, dt)
	}
}

func (p *printer) line(level int, s string) {
	p.startLine(level)
	p.emit(s)
}

// startLine ends the current line, if any, and sets the indentation for
// the next content.
func (p *printer) startLine(level int) {
	p.endLine()
	if p.blank {
		p.sb.WriteByte('\n')
		p.blank = false
	}
	p.level = level
	p.space = false
}

func (p *printer) endLine() {
	if p.dirty {
		p.sb.WriteByte('\n')
		p.col = 0
		p.dirty = false
	}
}

func (p *printer) emit(s string) {
	if s == "" {
		return
	}
	if !p.dirty {
		n := p.level * p.unit
		p.sb.WriteString(strings.Repeat(" ", n))
		p.col = n
		p.dirty = true
	}
	p.sb.WriteString(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		p.col = utf8.RuneCountInString(s[i+1:])
	} else {
		p.col += utf8.RuneCountInString(s)
	}
}

// word writes an inline token, turning pending whitespace into a space
// or, past the wrap column, a line break.
func (p *printer) word(w string, level int) {
	if p.space && !p.runStart {
		if p.opts.Wrap > 0 && p.col+1+utf8.RuneCountInString(w) > p.opts.Wrap {
			p.startLine(level)
		} else {
			p.emit(" ")
		}
	}
	p.space = false
	p.runStart = false
	p.emit(w)
}

func (p *printer) block(n *html.Node, level int) {
	switch n.Type {
	case html.ElementNode:
		p.element(n, level)
	case html.CommentNode:
		p.line(level, p.comment(n))
	case html.TextNode:
		p.inlineRun([]*html.Node{n}, level)
	}
}

// children lays out the children of n, grouping consecutive inline nodes
// into runs that share lines.
func (p *printer) children(n *html.Node, level int) {
	var run []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			continue
		}
		if p.isBlock(c) {
			p.inlineRun(run, level)
			run = run[:0]
			p.block(c, level)
			continue
		}
		run = append(run, c)
	}
	p.inlineRun(run, level)
}

func (p *printer) inlineRun(run []*html.Node, level int) {
	if len(run) == 0 || blankRun(run) {
		return
	}
	p.startLine(level)
	p.runStart = true
	for _, n := range run {
		p.inline(n, level)
	}
	p.space = false
}

func blankRun(run []*html.Node) bool {
	for _, n := range run {
		if n.Type != html.TextNode || strings.Trim(n.Data, " \t\r\n\f") != "" {
			return false
		}
	}
	return true
}

func (p *printer) isBlock(n *html.Node) bool {
	switch n.Type {
	case html.ElementNode:
		if p.opts.Tags.IsBlock(n.Data) || blockEmpty[n.Data] {
			return true
		}
		return p.containsBlock(n)
	case html.CommentNode:
		return !inlineNeighbour(n.PrevSibling, true, p) && !inlineNeighbour(n.NextSibling, false, p)
	}
	return false
}

func inlineNeighbour(n *html.Node, backwards bool, p *printer) bool {
	for n != nil {
		switch {
		case n.Type == html.TextNode && strings.Trim(n.Data, " \t\r\n\f") == "":
		case n.Type == html.CommentNode:
		default:
			return n.Type == html.TextNode || n.Type == html.ElementNode && !p.isBlock(n)
		}
		if backwards {
			n = n.PrevSibling
		} else {
			n = n.NextSibling
		}
	}
	return false
}

func (p *printer) containsBlock(n *html.Node) bool {
	if p.opts.Tags.IsPre(n.Data) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if p.opts.Tags.IsBlock(c.Data) || blockEmpty[c.Data] || p.containsBlock(c) {
			return true
		}
	}
	return false
}

func (p *printer) element(n *html.Node, level int) {
	p.startLine(level)
	p.emit(p.startTag(n, level))
	if p.isVoid(n) {
		p.vspace()
		return
	}

	switch {
	case isRawText(n.Data):
		p.emit(p.rawText(n))
		p.emit(p.endTag(n))
	case p.opts.Tags.IsPre(n.Data):
		p.emit(p.preformatted(n))
		p.emit(p.endTag(n))
	case blankElement(n):
		p.closeBlock(n, level, false)
	case p.opts.Indent == IndentYes || p.hasBlockChild(n):
		p.children(n, level+1)
		p.closeBlock(n, level, true)
	default:
		p.runStart = true
		p.space = false
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.inline(c, level+1)
		}
		p.closeBlock(n, level, false)
	}
	p.vspace()
}

func (p *printer) closeBlock(n *html.Node, level int, ownLine bool) {
	if p.hideEndTag(n) {
		p.space = false
		return
	}
	if ownLine {
		p.startLine(level)
	}
	p.space = false
	p.emit(p.endTag(n))
}

func (p *printer) vspace() {
	if p.opts.VerticalSpace {
		p.blank = true
	}
}

func (p *printer) hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode && p.isBlock(c) {
			return true
		}
	}
	return false
}

func blankElement(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode || strings.Trim(c.Data, " \t\r\n\f") != "" {
			return false
		}
	}
	return true
}

func (p *printer) inline(n *html.Node, level int) {
	switch n.Type {
	case html.TextNode:
		p.text(n.Data, level)
	case html.CommentNode:
		p.word(p.comment(n), level)
	case html.ElementNode:
		if n.Data == "br" {
			if p.opts.BreakBeforeBR && !p.runStart {
				p.startLine(level)
			}
			p.space = false
			p.emit(p.startTag(n, level))
			p.startLine(level)
			p.runStart = true
			return
		}
		p.word(p.startTag(n, level), level)
		if p.isVoid(n) {
			return
		}
		switch {
		case isRawText(n.Data):
			p.emit(p.rawText(n))
		case p.opts.Tags.IsPre(n.Data):
			p.emit(p.preformatted(n))
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				p.inline(c, level)
			}
		}
		if !p.hideEndTag(n) {
			p.emit(p.endTag(n))
		}
	}
}

func (p *printer) text(s string, level int) {
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && !isSpace(s[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			p.word(p.escapeText(s[start:i]), level)
			start = -1
		}
		if i < len(s) {
			p.space = true
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func (p *printer) name(n *html.Node) string {
	if p.opts.Mode == HTML && p.opts.UppercaseTags && n.Namespace == "" {
		return strings.ToUpper(n.Data)
	}
	return n.Data
}

func (p *printer) isVoid(n *html.Node) bool {
	if p.opts.Tags.IsEmpty(n.Data) {
		return true
	}
	return p.opts.Mode == XML && n.FirstChild == nil
}

func (p *printer) hideEndTag(n *html.Node) bool {
	if !p.opts.HideEndTags || p.opts.Mode != HTML || n.Namespace != "" {
		return false
	}
	switch n.Data {
	case "html", "head", "body":
		return false
	}
	parent := ""
	if n.Parent != nil {
		parent = n.Parent.Data
	}
	return internal.CanOmitEndTag(n.Data, followingName(n), parent)
}

// followingName names the next significant sibling of n for
// CanOmitEndTag: an element name, "#text", "#comment", or "" at the end.
func followingName(n *html.Node) string {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		switch {
		case s.Type == html.ElementNode:
			return s.Data
		case s.Type == html.CommentNode:
			return "#comment"
		case s.Type == html.TextNode && strings.Trim(s.Data, " \t\r\n\f") == "":
		default:
			return "#text"
		}
	}
	return ""
}

func (p *printer) startTag(n *html.Node, level int) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(p.name(n))

	attrs := n.Attr
	if p.opts.Mode == XHTML && n.Data == "html" && n.Namespace == "" {
		if _, ok := internal.GetAttr(n, "xmlns"); !ok {
			attrs = append([]html.Attribute{{Key: "xmlns", Val: xhtmlNamespace}}, attrs...)
		}
	}
	if p.opts.SortAttributes {
		attrs = append([]html.Attribute(nil), attrs...)
		sort.SliceStable(attrs, func(i, j int) bool { return attrName(attrs[i]) < attrName(attrs[j]) })
	}
	for i, a := range attrs {
		if p.opts.IndentAttributes && i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(" ", level*p.unit+p.opts.IndentSpaces))
		} else {
			sb.WriteByte(' ')
		}
		p.writeAttr(&sb, a)
	}

	if p.isVoid(n) && p.opts.Mode != HTML {
		sb.WriteString(" />")
	} else {
		sb.WriteByte('>')
	}
	return sb.String()
}

func attrName(a html.Attribute) string {
	if a.Namespace != "" {
		return a.Namespace + ":" + a.Key
	}
	return a.Key
}

func (p *printer) writeAttr(sb *strings.Builder, a html.Attribute) {
	key := attrName(a)
	if p.opts.Mode == HTML && p.opts.UppercaseAttrs && a.Namespace == "" {
		key = strings.ToUpper(key)
	}
	sb.WriteString(key)
	if internal.IsBooleanAttribute(a.Key) && (a.Val == "" || strings.EqualFold(a.Val, a.Key)) {
		if p.opts.Mode == HTML {
			return
		}
		sb.WriteString(`="`)
		sb.WriteString(a.Key)
		sb.WriteByte('"')
		return
	}
	sb.WriteString(`="`)
	sb.WriteString(p.escapeAttr(a.Val))
	sb.WriteByte('"')
}

func (p *printer) endTag(n *html.Node) string {
	// nothing ends plaintext in HTML
	if p.isVoid(n) || p.opts.Mode == HTML && n.Data == "plaintext" && n.Namespace == "" {
		return ""
	}
	return "</" + p.name(n) + ">"
}

func (p *printer) comment(n *html.Node) string {
	return "<!--" + n.Data + "-->"
}

func isRawText(name string) bool {
	return name == "script" || name == "style"
}

func (p *printer) rawText(n *html.Node) string {
	content := internal.GetTextContent(n)
	if p.opts.Mode == HTML || !strings.ContainsAny(content, "<&") {
		return content
	}
	if p.opts.EscapeCDATA {
		return p.escapeText(content)
	}
	if strings.Contains(content, "<![CDATA[") {
		return content
	}
	body := strings.Trim(content, "\r\n")
	if n.Data == "style" {
		return "/*<![CDATA[*/\n" + body + "\n/*]]>*/"
	}
	return "//<![CDATA[\n" + body + "\n//]]>"
}

// preformatted renders the content of pre-like elements verbatim.
func (p *printer) preformatted(n *html.Node) string {
	var sb strings.Builder
	// The parser drops one leading newline, so write one back when the
	// content starts with a newline of its own.
	if c := n.FirstChild; c != nil && c.Type == html.TextNode && strings.HasPrefix(c.Data, "\n") {
		switch n.Data {
		case "pre", "textarea", "listing":
			sb.WriteByte('\n')
		}
	}
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(p.escapeText(p.expandTabs(c.Data)))
			case html.CommentNode:
				sb.WriteString(p.comment(c))
			case html.ElementNode:
				sb.WriteString(p.startTag(c, 0))
				if !p.isVoid(c) {
					walk(c)
					sb.WriteString(p.endTag(c))
				}
			}
		}
	}
	walk(n)
	return sb.String()
}

func (p *printer) expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			pad := p.opts.TabSize - col%p.opts.TabSize
			sb.WriteString(strings.Repeat(" ", pad))
			col += pad
		case '\n':
			sb.WriteRune(r)
			col = 0
		default:
			sb.WriteRune(r)
			col++
		}
	}
	return sb.String()
}

func (p *printer) escapeText(s string) string {
	return p.escape(s, false)
}

func (p *printer) escapeAttr(s string) string {
	return p.escape(s, true)
}

func (p *printer) escape(s string, attr bool) string {
	if !strings.ContainsAny(s, "&<>\"'\u00a0") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 16)
	for _, r := range s {
		switch r {
		case '&':
			if p.opts.QuoteAmpersand || attr {
				sb.WriteString("&amp;")
			} else {
				sb.WriteByte('&')
			}
		case '<':
			sb.WriteString("&lt;")
		case '>':
			if attr {
				sb.WriteByte('>')
			} else {
				sb.WriteString("&gt;")
			}
		case '"':
			switch {
			case attr:
				sb.WriteString("&quot;")
			case p.opts.QuoteMarks:
				sb.WriteString(p.entity("quot", '"'))
			default:
				sb.WriteByte('"')
			}
		case '\'':
			if p.opts.QuoteMarks && !attr {
				sb.WriteString("&#39;")
			} else {
				sb.WriteByte('\'')
			}
		case '\u00a0':
			if p.opts.QuoteNbsp {
				sb.WriteString(p.entity("nbsp", r))
			} else {
				sb.WriteRune(r)
			}
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// entity returns the named entity, or the numeric one when named
// entities are disabled or not defined in XML.
func (p *printer) entity(name string, r rune) string {
	if p.opts.NumericEntities || p.opts.Mode == XML && name != "quot" {
		return "&#" + strconv.Itoa(int(r)) + ";"
	}
	return "&" + name + ";"
}
