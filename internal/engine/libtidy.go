//go:build libtidy && cgo

package engine

/*
#cgo pkg-config: tidy
#include <stdlib.h>
#include <tidy.h>
#include <tidybuffio.h>
*/
import "C"

import (
	"math"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/cybergodev/tidy/internal/config"
	"github.com/cybergodev/tidy/internal/diag"
)

// LibtidyBackend is the name of the backend that links the C library.
const LibtidyBackend = "libtidy"

type libtidyBackend struct{}

func (libtidyBackend) Name() string { return LibtidyBackend }

func (libtidyBackend) NewDoc(Limits) (Doc, error) {
	d := &libtidyDoc{tdoc: C.tidyCreate()}
	C.tidyBufInit(&d.errbuf)
	if rc := C.tidySetErrorBuffer(d.tdoc, &d.errbuf); rc != 0 {
		d.Release()
		return nil, diag.Parsef(diag.ErrParse, nil, "cannot attach error buffer (rc=%d)", int(rc))
	}
	return d, nil
}

func init() {
	Register(libtidyBackend{})
}

// libtidyDoc wraps a TidyDoc. It is not safe for concurrent use.
type libtidyDoc struct {
	tdoc     C.TidyDoc
	errbuf   C.TidyBuffer
	parsed   bool
	released bool
}

// lookup resolves name through the option table first, so this backend
// accepts exactly the options the native one does, then finds the
// library's own option under the canonical name.
func (d *libtidyDoc) lookup(name string) (C.TidyOption, string, error) {
	known, ok := config.Lookup(name)
	if !ok {
		return nil, "", diag.Configf(name, diag.ErrUnknownOption, "unknown tidy option '%s'", name)
	}
	cname := C.CString(known.Name)
	defer C.free(unsafe.Pointer(cname))
	opt := C.tidyGetOptionByName(d.tdoc, cname)
	if opt == nil {
		return nil, "", diag.Configf(name, diag.ErrUnknownOption, "tidy option '%s' is not supported by %s", known.Name, LibtidyBackend)
	}
	return opt, known.Name, nil
}

func (d *libtidyDoc) SetOption(name string, value any) error {
	if d.released {
		return released()
	}
	opt, name, err := d.lookup(name)
	if err != nil {
		return err
	}

	var text string
	switch C.tidyOptGetType(opt) {
	case C.TidyString:
		s, ok := value.(string)
		if !ok {
			return diag.Configf(name, diag.ErrInvalidValue, "option '%s' expects a string, got %T", name, value)
		}
		text = s
	case C.TidyInteger:
		s, ok := optionText(value, false)
		if !ok {
			return diag.Configf(name, diag.ErrInvalidValue, "option '%s' expects an integer, got %T", name, value)
		}
		text = s
	case C.TidyBoolean:
		s, ok := optionText(value, true)
		if !ok {
			return diag.Configf(name, diag.ErrInvalidValue, "option '%s' expects a boolean, got %T", name, value)
		}
		text = s
	}
	return d.parseValue(name, text)
}

func (d *libtidyDoc) SetOptionValue(name, text string) error {
	if d.released {
		return released()
	}
	_, name, err := d.lookup(name)
	if err != nil {
		return err
	}
	return d.parseValue(name, text)
}

func (d *libtidyDoc) parseValue(name, text string) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	cval := C.CString(text)
	defer C.free(unsafe.Pointer(cval))
	if C.tidyOptParseValue(d.tdoc, cname, cval) == C.no {
		return diag.Configf(name, diag.ErrInvalidValue, "invalid value %q for option '%s'", text, name)
	}
	return nil
}

// optionText renders a Go value the way tidy's config parser reads it.
// Strings pass through and are checked by the parser.
func optionText(v any, boolean bool) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		if x {
			return "yes", true
		}
		return "no", true
	}
	rv := reflect.ValueOf(v)
	var n int64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return "", false
		}
		n = int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return "", false
		}
		n = int64(f)
	default:
		return "", false
	}
	if boolean {
		if n != 0 {
			return "yes", true
		}
		return "no", true
	}
	return strconv.FormatInt(n, 10), true
}

func (d *libtidyDoc) ParseString(document string) error {
	if d.released {
		return released()
	}
	cdoc := C.CString(document)
	defer C.free(unsafe.Pointer(cdoc))
	if rc := C.tidyParseString(d.tdoc, cdoc); rc < 0 {
		return diag.Parsef(diag.ErrParse, d.Diagnostics(), "%s", d.Report())
	}
	d.parsed = true
	return nil
}

func (d *libtidyDoc) ParseBytes(data []byte) error {
	return d.ParseString(string(data))
}

func (d *libtidyDoc) CleanAndRepair() error {
	if d.released {
		return released()
	}
	if !d.parsed {
		return diag.Parsef(diag.ErrParse, nil, "no document has been parsed")
	}
	if rc := C.tidyCleanAndRepair(d.tdoc); rc < 0 {
		return diag.Parsef(diag.ErrParse, d.Diagnostics(), "%s", d.Report())
	}
	return nil
}

func (d *libtidyDoc) Save() (string, error) {
	if d.released {
		return "", released()
	}
	if !d.parsed {
		return "", diag.Parsef(diag.ErrParse, nil, "no document has been parsed")
	}
	var out C.TidyBuffer
	C.tidyBufInit(&out)
	defer C.tidyBufFree(&out)

	rc := C.tidySaveBuffer(d.tdoc, &out)
	forced := C.tidyOptGetBool(d.tdoc, C.TidyForceOutput) == C.yes
	if rc < 0 || C.tidyErrorCount(d.tdoc) > 0 && !forced {
		return "", diag.Parsef(diag.ErrParse, d.Diagnostics(), "%s", d.Report())
	}
	if out.bp == nil {
		return "", nil
	}
	return C.GoStringN((*C.char)(unsafe.Pointer(out.bp)), C.int(out.size)), nil
}

func (d *libtidyDoc) Diagnostics() []diag.Diagnostic {
	return parseReport(d.Report())
}

func (d *libtidyDoc) Report() string {
	if d.released || d.errbuf.bp == nil {
		return ""
	}
	return C.GoStringN((*C.char)(unsafe.Pointer(d.errbuf.bp)), C.int(d.errbuf.size))
}

func (d *libtidyDoc) Release() {
	if d.released {
		return
	}
	d.released = true
	C.tidyBufFree(&d.errbuf)
	C.tidyRelease(d.tdoc)
}
