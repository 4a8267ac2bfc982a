package internal

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// charsets maps tidy encoding names to their IANA label and x/text
// encoding. A nil encoding means the bytes pass through unchanged.
var charsets = map[string]struct {
	label string
	enc   encoding.Encoding
}{
	"raw":      {"", nil},
	"ascii":    {"us-ascii", nil},
	"utf8":     {"utf-8", nil},
	"latin0":   {"iso-8859-15", charmap.ISO8859_15},
	"latin1":   {"iso-8859-1", charmap.ISO8859_1},
	"win1252":  {"windows-1252", charmap.Windows1252},
	"mac":      {"macintosh", charmap.Macintosh},
	"ibm858":   {"ibm00858", charmap.CodePage858},
	"utf16":    {"utf-16", unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)},
	"utf16le":  {"utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
	"utf16be":  {"utf-16be", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	"big5":     {"big5", traditionalchinese.Big5},
	"shiftjis": {"shift_jis", japanese.ShiftJIS},
	"euc-jp":   {"euc-jp", japanese.EUCJP},
	"gbk":      {"gbk", simplifiedchinese.GBK},
	"euc-kr":   {"euc-kr", korean.EUCKR},
}

// KnownCharset reports whether name is a supported tidy encoding name.
func KnownCharset(name string) bool {
	_, ok := charsets[name]
	return ok
}

// CharsetLabel returns the IANA label for a tidy encoding name, as used
// in XML declarations and <meta charset> elements.
func CharsetLabel(name string) string {
	return charsets[name].label
}

// DecodeToUTF8 converts data in the named encoding to UTF-8.
func DecodeToUTF8(data []byte, name string) ([]byte, error) {
	cs, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	if cs.enc == nil {
		return data, nil
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), cs.enc.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}

// EncodeFromUTF8 converts UTF-8 text to the named encoding. Characters
// the encoding cannot represent are written as numeric character
// references.
func EncodeFromUTF8(s string, name string) ([]byte, error) {
	cs, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	if name == "ascii" {
		return []byte(escapeNonASCII(s)), nil
	}
	if cs.enc == nil {
		return []byte(s), nil
	}
	var t transform.Transformer = encoding.HTMLEscapeUnsupported(cs.enc.NewEncoder())
	if strings.HasPrefix(name, "utf16") {
		t = cs.enc.NewEncoder()
	}
	out, _, err := transform.Bytes(t, []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return out, nil
}

func escapeNonASCII(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r < utf8.RuneSelf {
			sb.WriteByte(s[i])
		} else {
			sb.WriteString("&#")
			sb.WriteString(strconv.Itoa(int(r)))
			sb.WriteByte(';')
		}
		i += size
	}
	return sb.String()
}
