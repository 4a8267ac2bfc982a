package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cybergodev/tidy/internal"
	"github.com/cybergodev/tidy/internal/diag"
	"golang.org/x/net/html"
)

// Elements allowed before <body> without implying it.
var headContent = map[string]bool{
	"html": true, "head": true, "title": true, "meta": true, "link": true,
	"style": true, "script": true, "base": true, "noscript": true, "template": true,
	"body": true, "frameset": true,
}

// Elements whose content the tokenizer reads as text.
var textContainers = map[string]bool{
	"title": true, "script": true, "style": true, "textarea": true,
	"xmp": true, "iframe": true, "noembed": true, "noframes": true, "plaintext": true,
}

type linter struct {
	tags  *internal.TagTable
	diags []diag.Diagnostic

	line, col int
	stack     []string
	foreign   int

	significant bool
	sawHTML     bool
	sawBody     bool
	impliedBody bool
}

// lint scans the raw markup for the problems tidy reports, before the
// tree builder silently repairs them. It also reports whether the input
// was a fragment without <html> or <body> tags.
func lint(text string, tags *internal.TagTable) ([]diag.Diagnostic, bool) {
	l := &linter{tags: tags, line: 1, col: 1}
	l.checkUTF8(text)

	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		line, col := l.line, l.col
		raw := z.Raw()

		switch tt {
		case html.DoctypeToken:
			l.significant = true
		case html.StartTagToken, html.SelfClosingTagToken:
			l.firstContent()
			name, hasAttr := z.TagName()
			var attrs map[string]bool
			if hasAttr {
				attrs = make(map[string]bool)
				for {
					key, _, more := z.TagAttr()
					attrs[string(key)] = true
					if !more {
						break
					}
				}
			}
			l.startTag(string(name), attrs, tt == html.SelfClosingTagToken, line, col)
		case html.EndTagToken:
			l.firstContent()
			name, _ := z.TagName()
			l.endTag(string(name), line, col)
		case html.TextToken:
			if strings.Trim(string(raw), " \t\r\n\f") == "" {
				break
			}
			l.firstContent()
			if !l.sawBody && !l.impliedBody && !l.inTextContainer() {
				l.impliedBody = true
				l.add(line, col, diag.Warning, diag.CodeInsertingTag, "inserting implicit <body>")
			}
		}
		l.advance(raw)
	}

	for i := len(l.stack) - 1; i >= 0; i-- {
		if l.needsEndTag(l.stack[i]) {
			l.add(l.line, l.col, diag.Warning, diag.CodeMissingEndTag, fmt.Sprintf("missing </%s>", l.stack[i]))
		}
	}
	return l.diags, !l.sawHTML && !l.sawBody
}

func (l *linter) add(line, col int, sev diag.Severity, code, msg string) {
	l.diags = append(l.diags, diag.Diagnostic{Line: line, Column: col, Severity: sev, Code: code, Message: msg})
}

func (l *linter) firstContent() {
	if l.significant {
		return
	}
	l.significant = true
	l.diags = append([]diag.Diagnostic{{
		Line: 1, Column: 1, Severity: diag.Warning,
		Code: diag.CodeMissingDoctype, Message: "missing <!DOCTYPE> declaration",
	}}, l.diags...)
}

func (l *linter) startTag(name string, attrs map[string]bool, selfClosing bool, line, col int) {
	switch name {
	case "html":
		l.sawHTML = true
	case "body":
		l.sawBody = true
	case "svg", "math":
		if !selfClosing {
			l.foreign++
		}
	}

	if l.foreign == 0 && !l.tags.Known(name) && !strings.Contains(name, "-") {
		l.add(line, col, diag.Error, diag.CodeUnknownElement, fmt.Sprintf("<%s> is not recognized!", name))
	}
	if !l.sawBody && !l.impliedBody && !headContent[name] && l.foreign == 0 {
		l.impliedBody = true
		l.add(line, col, diag.Warning, diag.CodeInsertingTag, "inserting implicit <body>")
	}
	if name == "img" && !attrs["alt"] {
		l.add(line, col, diag.Warning, diag.CodeMissingAttribute, `<img> lacks "alt" attribute`)
	}

	if l.tags.IsEmpty(name) || selfClosing && (l.foreign > 0 || name == "svg" || name == "math") {
		return
	}
	l.stack = append(l.stack, name)
}

func (l *linter) endTag(name string, line, col int) {
	for i := len(l.stack) - 1; i >= 0; i-- {
		if l.stack[i] != name {
			continue
		}
		for j := len(l.stack) - 1; j > i; j-- {
			if l.needsEndTag(l.stack[j]) {
				l.add(line, col, diag.Warning, diag.CodeMissingEndTag, fmt.Sprintf("missing </%s> before </%s>", l.stack[j], name))
			}
		}
		l.stack = l.stack[:i]
		if (name == "svg" || name == "math") && l.foreign > 0 {
			l.foreign--
		}
		return
	}
	switch name {
	case "html", "head", "body", "br", "p":
		// the tree builder turns these into elements or accepts them
		return
	}
	l.add(line, col, diag.Warning, diag.CodeDiscardingUnexpected, fmt.Sprintf("discarding unexpected </%s>", name))
}

func (l *linter) needsEndTag(name string) bool {
	if l.foreign > 0 || internal.HasOptionalEndTag(name) || l.tags.IsEmpty(name) {
		return false
	}
	return l.tags.Known(name) || strings.Contains(name, "-")
}

func (l *linter) inTextContainer() bool {
	return len(l.stack) > 0 && textContainers[l.stack[len(l.stack)-1]]
}

func (l *linter) advance(raw []byte) {
	for _, b := range raw {
		switch {
		case b == '\n':
			l.line++
			l.col = 1
		case b&0xC0 != 0x80:
			l.col++
		}
	}
}

func (l *linter) checkUTF8(text string) {
	if utf8.ValidString(text) {
		return
	}
	line, col := 1, 1
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			l.add(line, col, diag.Warning, diag.CodeInvalidUTF8, "replacing invalid UTF-8 bytes")
			return
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i += size
	}
}
