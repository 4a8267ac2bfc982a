package engine

import (
	"fmt"
	"strings"

	"github.com/cybergodev/tidy/internal"
	"github.com/cybergodev/tidy/internal/config"
	"github.com/cybergodev/tidy/internal/diag"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var bareReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'",
	"“", `"`, "”", `"`, "„", `"`,
	"–", "-", "—", "-",
	"\u00a0", " ",
)

// cleaner repairs a parsed tree in place.
type cleaner struct {
	cfg   *config.Config
	diags []diag.Diagnostic
}

func (c *cleaner) warn(code, format string, args ...any) {
	c.diags = append(c.diags, diag.Diagnostic{
		Severity: diag.Warning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *cleaner) run(root *html.Node) {
	c.dropComments(root)
	c.coerceObsolete(root)
	if c.cfg.Bool(config.DropEmptyParas) || c.cfg.Bool(config.DropEmptyElements) {
		c.dropEmpty(root)
	}
	body := internal.FindElementByTag(root, "body")
	if body != nil && c.cfg.Bool(config.EncloseText) {
		c.encloseText(body)
	}
	c.fixAttributes(root)
	if c.cfg.Bool(config.Bare) {
		c.bare(root)
	}

	// pure XML output carries no HTML head furniture
	if c.cfg.Bool(config.OutputXML) && !c.cfg.Bool(config.OutputXHTML) {
		return
	}
	head := internal.FindElementByTag(root, "head")
	if head == nil {
		return
	}
	c.ensureTitle(head)
	if c.cfg.Bool(config.TidyMark) {
		c.generator(head)
	}
	if c.cfg.Bool(config.AddMetaCharset) {
		c.metaCharset(head)
	}
}

// dropComments removes processing instructions, which the parser keeps as
// comments starting with '?', and all comments under hide-comments.
func (c *cleaner) dropComments(root *html.Node) {
	hide := c.cfg.Bool(config.HideComments)
	internal.WalkNodes(root, func(n *html.Node) bool {
		if n.Type == html.CommentNode && (hide || strings.HasPrefix(n.Data, "?")) {
			internal.RemoveNode(n)
			return false
		}
		return true
	})
}

func (c *cleaner) dropEmpty(n *html.Node) {
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		c.dropEmpty(child)
		child = next
	}
	if n.Type != html.ElementNode || !internal.IsBlank(n) {
		return
	}
	if _, ok := internal.GetAttr(n, "id"); ok {
		return
	}
	if _, ok := internal.GetAttr(n, "name"); ok {
		return
	}
	switch {
	case n.Data == "p" && c.cfg.Bool(config.DropEmptyParas):
	case internal.IsDroppableWhenEmpty(n.Data) && c.cfg.Bool(config.DropEmptyElements):
	default:
		return
	}
	c.warn(diag.CodeTrimEmptyElement, "trimming empty <%s>", n.Data)
	internal.RemoveNode(n)
}

// Obsolete preformatted elements. <xmp> and <plaintext> hold raw text
// that cannot be written back unchanged, so all three become <pre>.
var obsoletePre = map[string]bool{"xmp": true, "listing": true, "plaintext": true}

func (c *cleaner) coerceObsolete(root *html.Node) {
	internal.WalkNodes(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Namespace == "" && obsoletePre[n.Data] {
			c.warn(diag.CodeObsoleteElement, "replacing obsolete element <%s> with <pre>", n.Data)
			n.Data, n.DataAtom = "pre", atom.Pre
		}
		return true
	})
}

// encloseText wraps text sitting directly in body in paragraphs.
func (c *cleaner) encloseText(body *html.Node) {
	for child := body.FirstChild; child != nil; {
		next := child.NextSibling
		if child.Type == html.TextNode && strings.TrimSpace(child.Data) != "" {
			p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
			body.InsertBefore(p, child)
			body.RemoveChild(child)
			p.AppendChild(child)
			c.warn(diag.CodeInsertingTag, "inserting implicit <p>")
		}
		child = next
	}
}

func (c *cleaner) fixAttributes(root *html.Node) {
	alt := c.cfg.Str(config.AltText)
	fixURI := c.cfg.Bool(config.FixURI)
	internal.WalkNodes(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if n.Data == "img" && alt != "" {
			if _, ok := internal.GetAttr(n, "alt"); !ok {
				internal.SetAttr(n, "alt", alt)
			}
		}
		if !fixURI {
			return true
		}
		for i, a := range n.Attr {
			if a.Namespace != "" || !internal.IsURIAttribute(a.Key) {
				continue
			}
			if escaped, changed := escapeURI(a.Val); changed {
				n.Attr[i].Val = escaped
				c.warn(diag.CodeInvalidURI, "<%s> escaping malformed URI reference", n.Data)
			}
		}
		return true
	})
}

// escapeURI percent-encodes bytes that may not appear in a URI. Existing
// escapes are left alone.
func escapeURI(s string) (string, bool) {
	var sb strings.Builder
	changed := false
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b <= ' ' || b >= 0x7f || b == '"' || b == '<' || b == '>' || b == '\\' || b == '^' || b == '`' || b == '{' || b == '|' || b == '}' {
			if !changed {
				sb.WriteString(s[:i])
				changed = true
			}
			fmt.Fprintf(&sb, "%%%02X", b)
			continue
		}
		if changed {
			sb.WriteByte(b)
		}
	}
	if !changed {
		return s, false
	}
	return sb.String(), true
}

func (c *cleaner) bare(root *html.Node) {
	internal.WalkNodes(root, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			n.Data = bareReplacer.Replace(n.Data)
		}
		return true
	})
}

func (c *cleaner) ensureTitle(head *html.Node) {
	for child := head.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "title" {
			return
		}
	}
	head.AppendChild(&html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title})
	c.warn(diag.CodeMissingTitle, "inserting missing 'title' element")
}

// generator refreshes a generator meta written by an earlier run, or
// inserts one at the start of head.
func (c *cleaner) generator(head *html.Node) {
	for child := head.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "meta" {
			continue
		}
		name, _ := internal.GetAttr(child, "name")
		content, _ := internal.GetAttr(child, "content")
		if strings.EqualFold(name, "generator") && strings.HasPrefix(content, "HTML Tidy") {
			internal.SetAttr(child, "content", Generator)
			return
		}
	}
	meta := &html.Node{Type: html.ElementNode, Data: "meta", DataAtom: atom.Meta, Attr: []html.Attribute{
		{Key: "name", Val: "generator"},
		{Key: "content", Val: Generator},
	}}
	head.InsertBefore(meta, head.FirstChild)
}

// metaCharset makes the head declare the output encoding. Raw output has
// no label and gets no declaration.
func (c *cleaner) metaCharset(head *html.Node) {
	label := internal.CharsetLabel(c.cfg.Str(config.OutputEncoding))
	if label == "" {
		return
	}
	for child := head.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "meta" {
			continue
		}
		if _, ok := internal.GetAttr(child, "charset"); ok {
			internal.SetAttr(child, "charset", label)
			return
		}
		if equiv, _ := internal.GetAttr(child, "http-equiv"); strings.EqualFold(equiv, "content-type") {
			internal.SetAttr(child, "content", "text/html; charset="+label)
			return
		}
	}
	meta := &html.Node{Type: html.ElementNode, Data: "meta", DataAtom: atom.Meta, Attr: []html.Attribute{
		{Key: "charset", Val: label},
	}}
	head.InsertBefore(meta, head.FirstChild)
}
