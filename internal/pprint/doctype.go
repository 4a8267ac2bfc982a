package pprint

import (
	"strings"

	"golang.org/x/net/html"
)

const html5Doctype = "<!DOCTYPE html>"

var legacyDoctypes = map[string][2]string{
	"strict": {
		`<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd">`,
		`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">`,
	},
	"transitional": {
		`<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01 Transitional//EN" "http://www.w3.org/TR/html4/loose.dtd">`,
		`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">`,
	},
}

func init() {
	legacyDoctypes["loose"] = legacyDoctypes["transitional"]
}

// doctype returns the declaration to emit for the doctype option, given
// the declaration found in the input, if any.
func doctype(opts Options, original *html.Node) string {
	switch opts.Doctype {
	case "omit":
		return ""
	case "html5":
		return html5Doctype
	case "strict", "transitional", "loose":
		pair := legacyDoctypes[opts.Doctype]
		if opts.Mode == HTML {
			return pair[0]
		}
		return pair[1]
	}

	// auto
	if original != nil {
		if s := renderDoctype(original); s != "" {
			return s
		}
	}
	if opts.Mode == XML {
		return ""
	}
	return html5Doctype
}

// renderDoctype writes a legacy declaration back out. The plain HTML5
// form yields the canonical spelling.
func renderDoctype(n *html.Node) string {
	var public, system string
	for _, a := range n.Attr {
		switch a.Key {
		case "public":
			public = a.Val
		case "system":
			system = a.Val
		}
	}
	if public == "" && system == "" {
		if strings.EqualFold(n.Data, "html") {
			return html5Doctype
		}
		return "<!DOCTYPE " + n.Data + ">"
	}
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE ")
	sb.WriteString(n.Data)
	if public != "" {
		sb.WriteString(` PUBLIC "`)
		sb.WriteString(public)
		sb.WriteByte('"')
		if system != "" {
			sb.WriteString(` "`)
			sb.WriteString(system)
			sb.WriteByte('"')
		}
	} else {
		sb.WriteString(` SYSTEM "`)
		sb.WriteString(system)
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	return sb.String()
}
