package internal

import (
	"bytes"
	"testing"
)

func TestKnownCharset(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"raw", "ascii", "utf8", "latin1", "win1252", "utf16le", "shiftjis"} {
		if !KnownCharset(name) {
			t.Errorf("KnownCharset(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"", "utf-8", "ebcdic"} {
		if KnownCharset(name) {
			t.Errorf("KnownCharset(%q) = true, want false", name)
		}
	}
}

func TestCharsetLabel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"utf8":     "utf-8",
		"latin1":   "iso-8859-1",
		"win1252":  "windows-1252",
		"shiftjis": "shift_jis",
		"raw":      "",
		"unknown":  "",
	}
	for name, want := range tests {
		if got := CharsetLabel(name); got != want {
			t.Errorf("CharsetLabel(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestDecodeToUTF8(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		charset  string
		expected string
	}{
		{"utf8 passthrough", []byte("caf\xc3\xa9"), "utf8", "café"},
		{"latin1", []byte("caf\xe9"), "latin1", "café"},
		{"win1252 quotes", []byte("\x93hi\x94"), "win1252", "“hi”"},
		{"utf16le", []byte{'h', 0, 'i', 0}, "utf16le", "hi"},
		{"utf16 with BOM", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "utf16", "hi"},
		{"raw bytes untouched", []byte("\xe9"), "raw", "\xe9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeToUTF8(tt.data, tt.charset)
			if err != nil {
				t.Fatalf("DecodeToUTF8() error = %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("DecodeToUTF8() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDecodeToUTF8Unknown(t *testing.T) {
	t.Parallel()

	if _, err := DecodeToUTF8([]byte("x"), "ebcdic"); err == nil {
		t.Error("DecodeToUTF8() should fail for an unsupported encoding")
	}
}

func TestEncodeFromUTF8(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		charset  string
		expected []byte
	}{
		{"utf8 passthrough", "café", "utf8", []byte("café")},
		{"latin1", "café", "latin1", []byte("caf\xe9")},
		{"latin1 unsupported rune", "a€", "latin1", []byte("a&#8364;")},
		{"ascii escapes", "café €", "ascii", []byte("caf&#233; &#8364;")},
		{"utf16le", "hi", "utf16le", []byte{'h', 0, 'i', 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeFromUTF8(tt.input, tt.charset)
			if err != nil {
				t.Fatalf("EncodeFromUTF8() error = %v", err)
			}
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("EncodeFromUTF8() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	const text = "<p>Grüße, 東京</p>"
	for _, charset := range []string{"utf8", "utf16", "utf16be", "utf16le"} {
		encoded, err := EncodeFromUTF8(text, charset)
		if err != nil {
			t.Fatalf("%s: EncodeFromUTF8() error = %v", charset, err)
		}
		decoded, err := DecodeToUTF8(encoded, charset)
		if err != nil {
			t.Fatalf("%s: DecodeToUTF8() error = %v", charset, err)
		}
		if string(decoded) != text {
			t.Errorf("%s: round trip = %q, want %q", charset, decoded, text)
		}
	}
}
