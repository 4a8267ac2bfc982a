package engine

import (
	"testing"

	"github.com/cybergodev/tidy/internal"
	"github.com/cybergodev/tidy/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTags() *internal.TagTable {
	return internal.NewTagTable(nil, nil, nil, nil)
}

func codes(ds []diag.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}
	return out
}

func TestLint_Positions(t *testing.T) {
	ds, fragment := lint("<title>Foo</title><p>Foo!", defaultTags())

	require.Len(t, ds, 2)
	assert.Equal(t, diag.Diagnostic{
		Line: 1, Column: 1, Severity: diag.Warning,
		Code: diag.CodeMissingDoctype, Message: "missing <!DOCTYPE> declaration",
	}, ds[0])
	assert.Equal(t, diag.Diagnostic{
		Line: 1, Column: 19, Severity: diag.Warning,
		Code: diag.CodeInsertingTag, Message: "inserting implicit <body>",
	}, ds[1])
	assert.True(t, fragment)
}

func TestLint_LineTracking(t *testing.T) {
	ds, _ := lint("<!DOCTYPE html>\n<body>\n  <blink2>x</blink2>", defaultTags())

	require.Len(t, ds, 1)
	assert.Equal(t, 3, ds[0].Line)
	assert.Equal(t, 3, ds[0].Column)
	assert.Equal(t, diag.Error, ds[0].Severity)
	assert.Equal(t, "<blink2> is not recognized!", ds[0].Message)
}

func TestLint_UnknownElement(t *testing.T) {
	ds, _ := lint("<!DOCTYPE html><blink2>x</blink2>", defaultTags())
	assert.Equal(t, []string{diag.CodeUnknownElement, diag.CodeInsertingTag}, codes(ds))

	custom := internal.NewTagTable(nil, []string{"blink2"}, nil, nil)
	ds, _ = lint("<!DOCTYPE html><blink2>x</blink2>", custom)
	assert.Equal(t, []string{diag.CodeInsertingTag}, codes(ds), "declared tags are known")
}

func TestLint_CustomAndForeignElements(t *testing.T) {
	ds, _ := lint("<!DOCTYPE html><body><my-widget>x</my-widget></body>", defaultTags())
	assert.Empty(t, ds)

	ds, _ = lint(`<!DOCTYPE html><body><svg><circle r="1"/><foo></foo></svg><p>x</p></body>`, defaultTags())
	assert.Empty(t, ds)
}

func TestLint_ImageWithoutAlt(t *testing.T) {
	ds, _ := lint(`<!DOCTYPE html><body><img src="a.png"><img src="b.png" alt=""></body>`, defaultTags())

	require.Len(t, ds, 1)
	assert.Equal(t, diag.CodeMissingAttribute, ds[0].Code)
	assert.Equal(t, `<img> lacks "alt" attribute`, ds[0].Message)
	assert.Equal(t, 22, ds[0].Column)
}

func TestLint_EndTags(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"unexpected end tag", "<!DOCTYPE html><body><div>x</div></span></body>", []string{"discarding unexpected </span>"}},
		{"tolerated end tag", "<!DOCTYPE html><body>x</p></br></body>", nil},
		{"closed by ancestor", "<!DOCTYPE html><body><div><b>x</div></body>", []string{"missing </b> before </div>"}},
		{"open at end", "<!DOCTYPE html><body><div>x", []string{"missing </div>"}},
		{"optional end tags", "<!DOCTYPE html><body><ul><li>a<li>b</ul><p>c", nil},
		{"void elements", "<!DOCTYPE html><body><br><hr><input></body>", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, _ := lint(tt.src, defaultTags())
			var msgs []string
			for _, d := range ds {
				msgs = append(msgs, d.Message)
			}
			assert.Equal(t, tt.want, msgs)
		})
	}
}

func TestLint_Fragment(t *testing.T) {
	_, fragment := lint("<p>x</p>", defaultTags())
	assert.True(t, fragment)

	_, fragment = lint("<html><p>x</p></html>", defaultTags())
	assert.False(t, fragment)

	_, fragment = lint("<body><p>x</p></body>", defaultTags())
	assert.False(t, fragment)
}

func TestLint_TextImpliesBody(t *testing.T) {
	ds, _ := lint("<!DOCTYPE html>\n  hello", defaultTags())
	require.Len(t, ds, 1)
	assert.Equal(t, diag.CodeInsertingTag, ds[0].Code)
	assert.Equal(t, 1, ds[0].Line)
	assert.Equal(t, 16, ds[0].Column, "the text token starts right after the doctype")
}

func TestLint_InvalidUTF8(t *testing.T) {
	ds, _ := lint("<!DOCTYPE html><body>a\xffb</body>", defaultTags())
	require.NotEmpty(t, ds)
	assert.Equal(t, diag.CodeInvalidUTF8, ds[0].Code)
	assert.Equal(t, 23, ds[0].Column)
}

func TestLint_Empty(t *testing.T) {
	ds, fragment := lint("", defaultTags())
	assert.Empty(t, ds)
	assert.True(t, fragment)
}
