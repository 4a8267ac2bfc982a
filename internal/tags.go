package internal

// Content models used by the serializer and the lint pass.
type Model int

const (
	ModelBlock Model = iota
	ModelInline
	ModelEmpty
	ModelPre
)

var knownElements = map[string]Model{
	"a": ModelInline, "abbr": ModelInline, "acronym": ModelInline, "address": ModelBlock,
	"applet": ModelInline, "area": ModelEmpty, "article": ModelBlock, "aside": ModelBlock,
	"audio": ModelInline, "b": ModelInline, "base": ModelEmpty, "basefont": ModelEmpty,
	"bdi": ModelInline, "bdo": ModelInline, "big": ModelInline, "blink": ModelInline,
	"blockquote": ModelBlock, "body": ModelBlock, "br": ModelEmpty, "button": ModelInline,
	"canvas": ModelInline, "caption": ModelBlock, "center": ModelBlock, "cite": ModelInline,
	"code": ModelInline, "col": ModelEmpty, "colgroup": ModelBlock, "data": ModelInline,
	"datalist": ModelInline, "dd": ModelBlock, "del": ModelInline, "details": ModelBlock,
	"dfn": ModelInline, "dialog": ModelBlock, "dir": ModelBlock, "div": ModelBlock,
	"dl": ModelBlock, "dt": ModelBlock, "em": ModelInline, "embed": ModelEmpty,
	"fieldset": ModelBlock, "figcaption": ModelBlock, "figure": ModelBlock, "font": ModelInline,
	"footer": ModelBlock, "form": ModelBlock, "frame": ModelEmpty, "frameset": ModelBlock,
	"h1": ModelBlock, "h2": ModelBlock, "h3": ModelBlock, "h4": ModelBlock,
	"h5": ModelBlock, "h6": ModelBlock, "head": ModelBlock, "header": ModelBlock,
	"hgroup": ModelBlock, "hr": ModelEmpty, "html": ModelBlock, "i": ModelInline,
	"iframe": ModelInline, "img": ModelEmpty, "input": ModelEmpty, "ins": ModelInline,
	"kbd": ModelInline, "keygen": ModelEmpty, "label": ModelInline, "legend": ModelBlock,
	"li": ModelBlock, "link": ModelEmpty, "listing": ModelPre, "main": ModelBlock,
	"map": ModelInline, "mark": ModelInline, "marquee": ModelInline, "math": ModelInline,
	"menu": ModelBlock, "meta": ModelEmpty, "meter": ModelInline, "nav": ModelBlock,
	"nobr": ModelInline, "noembed": ModelBlock, "noframes": ModelBlock, "noscript": ModelBlock,
	"object": ModelInline, "ol": ModelBlock, "optgroup": ModelBlock, "option": ModelBlock,
	"output": ModelInline, "p": ModelBlock, "param": ModelEmpty, "picture": ModelInline,
	"plaintext": ModelPre, "pre": ModelPre, "progress": ModelInline, "q": ModelInline,
	"rb": ModelInline, "rp": ModelInline, "rt": ModelInline, "rtc": ModelInline,
	"ruby": ModelInline, "s": ModelInline, "samp": ModelInline, "script": ModelPre,
	"search": ModelBlock, "section": ModelBlock, "select": ModelInline, "slot": ModelInline,
	"small": ModelInline, "source": ModelEmpty, "span": ModelInline, "strike": ModelInline,
	"strong": ModelInline, "style": ModelPre, "sub": ModelInline, "summary": ModelBlock,
	"sup": ModelInline, "svg": ModelInline, "table": ModelBlock, "tbody": ModelBlock,
	"td": ModelBlock, "template": ModelBlock, "textarea": ModelPre, "tfoot": ModelBlock,
	"th": ModelBlock, "thead": ModelBlock, "time": ModelInline, "title": ModelBlock,
	"tr": ModelBlock, "track": ModelEmpty, "tt": ModelInline, "u": ModelInline,
	"ul": ModelBlock, "var": ModelInline, "video": ModelInline, "wbr": ModelEmpty,
	"xmp": ModelPre,
}

// Elements whose end tag may be left out in HTML.
var optionalEndTags = map[string]bool{
	"html": true, "head": true, "body": true, "p": true, "li": true,
	"dt": true, "dd": true, "option": true, "optgroup": true, "tr": true,
	"td": true, "th": true, "thead": true, "tbody": true, "tfoot": true,
	"colgroup": true, "caption": true, "rt": true, "rp": true, "rb": true, "rtc": true,
}

// Elements whose start closes an open paragraph.
var closesParagraph = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"details": true, "dialog": true, "div": true, "dl": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hgroup": true, "hr": true, "main": true, "menu": true,
	"nav": true, "ol": true, "p": true, "pre": true, "search": true,
	"section": true, "table": true, "ul": true,
}

// Parents whose end tag leaves a paragraph inside them open.
var keepsParagraphOpen = map[string]bool{
	"a": true, "audio": true, "del": true, "ins": true, "map": true,
	"noscript": true, "video": true,
}

// Elements dropped by drop-empty-elements when they have no content.
var droppableEmpty = map[string]bool{
	"b": true, "big": true, "em": true, "font": true, "i": true, "s": true,
	"small": true, "span": true, "strike": true, "strong": true, "sub": true,
	"sup": true, "tt": true, "u": true, "abbr": true, "acronym": true,
	"cite": true, "code": true, "dfn": true, "kbd": true, "q": true,
	"samp": true, "var": true,
}

var booleanAttributes = map[string]bool{
	"allowfullscreen": true, "async": true, "autofocus": true, "autoplay": true,
	"checked": true, "compact": true, "controls": true, "declare": true,
	"default": true, "defer": true, "disabled": true, "formnovalidate": true,
	"hidden": true, "inert": true, "ismap": true, "itemscope": true,
	"loop": true, "multiple": true, "muted": true, "nohref": true,
	"noresize": true, "noshade": true, "novalidate": true, "nowrap": true,
	"open": true, "playsinline": true, "readonly": true, "required": true,
	"reversed": true, "selected": true,
}

var uriAttributes = map[string]bool{
	"href": true, "src": true, "cite": true, "action": true,
	"data": true, "formaction": true, "poster": true, "background": true,
	"longdesc": true, "usemap": true, "profile": true, "codebase": true,
}

// TagTable answers content-model questions, taking custom elements
// declared with the new-*-tags options into account.
type TagTable struct {
	custom map[string]Model
}

// NewTagTable returns a table extended with the given custom elements.
func NewTagTable(block, inline, empty, pre []string) *TagTable {
	t := &TagTable{custom: make(map[string]Model)}
	for _, group := range []struct {
		names []string
		model Model
	}{{block, ModelBlock}, {inline, ModelInline}, {empty, ModelEmpty}, {pre, ModelPre}} {
		for _, name := range group.names {
			t.custom[name] = group.model
		}
	}
	return t
}

// Known reports whether name is an HTML element or a declared custom one.
func (t *TagTable) Known(name string) bool {
	if _, ok := knownElements[name]; ok {
		return true
	}
	if t != nil {
		_, ok := t.custom[name]
		return ok
	}
	return false
}

// Model returns the content model of name. Unknown elements are inline.
func (t *TagTable) Model(name string) Model {
	if t != nil {
		if m, ok := t.custom[name]; ok {
			return m
		}
	}
	if m, ok := knownElements[name]; ok {
		return m
	}
	return ModelInline
}

func (t *TagTable) IsBlock(name string) bool {
	m := t.Model(name)
	return m == ModelBlock || m == ModelPre && name != "textarea"
}

func (t *TagTable) IsEmpty(name string) bool { return t.Model(name) == ModelEmpty }

func (t *TagTable) IsPre(name string) bool { return t.Model(name) == ModelPre }

func HasOptionalEndTag(name string) bool { return optionalEndTags[name] }

// CanOmitEndTag reports whether the end tag of name can be left out
// without changing the parsed tree. next is the following sibling: an
// element name, "#text", "#comment", or "" when name is the last child of
// parent.
func CanOmitEndTag(name, next, parent string) bool {
	switch name {
	case "li", "tr":
		return next == name || next == ""
	case "td", "th":
		return next == "td" || next == "th" || next == ""
	case "dt":
		return next == "dt" || next == "dd"
	case "dd":
		return next == "dd" || next == "dt" || next == ""
	case "p":
		if next == "" {
			return !keepsParagraphOpen[parent]
		}
		return closesParagraph[next]
	case "rt", "rp":
		return next == "rt" || next == "rp" || next == ""
	case "rb":
		return next == "rb" || next == "rt" || next == "rtc" || next == "rp" || next == ""
	case "rtc":
		return next == "rb" || next == "rtc" || next == "rp" || next == ""
	case "optgroup":
		return next == "optgroup" || next == "hr" || next == ""
	case "option":
		return next == "option" || next == "optgroup" || next == "hr" || next == ""
	case "thead":
		return next == "tbody" || next == "tfoot"
	case "tbody":
		return next == "tbody" || next == "tfoot" || next == ""
	case "tfoot":
		return next == ""
	case "html", "head", "body", "colgroup", "caption":
		return next != "#text" && next != "#comment"
	}
	return false
}

func IsDroppableWhenEmpty(name string) bool { return droppableEmpty[name] }

func IsBooleanAttribute(name string) bool { return booleanAttributes[name] }

func IsURIAttribute(name string) bool { return uriAttributes[name] }
