package internal

import (
	"strings"

	"golang.org/x/net/html"
)

// WalkNodes visits node and its descendants in document order. Returning
// false from fn skips the node's children.
func WalkNodes(node *html.Node, fn func(*html.Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for child := node.FirstChild; child != nil; {
		// fn may detach child, so remember the sibling first
		next := child.NextSibling
		WalkNodes(child, fn)
		child = next
	}
}

func FindElementByTag(doc *html.Node, tagName string) *html.Node {
	var result *html.Node
	WalkNodes(doc, func(n *html.Node) bool {
		if result != nil {
			return false
		}
		if n.Type == html.ElementNode && n.Data == tagName {
			result = n
			return false
		}
		return true
	})
	return result
}

func FindElementsByTag(doc *html.Node, tagName string) []*html.Node {
	var nodes []*html.Node
	WalkNodes(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tagName {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}

// GetTextContent returns the concatenated text below node.
func GetTextContent(node *html.Node) string {
	var sb strings.Builder
	WalkNodes(node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		return true
	})
	return sb.String()
}

// IsBlank reports whether n has no element children and no
// non-whitespace text.
func IsBlank(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			return false
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return false
			}
		}
	}
	return true
}

func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func RemoveNode(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// MaxDepth returns the depth of the deepest node below n, stopping early
// once limit is exceeded.
func MaxDepth(n *html.Node, limit int) int {
	deepest := 0
	var walk func(*html.Node, int)
	walk = func(node *html.Node, depth int) {
		if depth > deepest {
			deepest = depth
		}
		if deepest > limit {
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth+1)
		}
	}
	walk(n, 0)
	return deepest
}
