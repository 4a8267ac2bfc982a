//go:build cgo

package main

// #include "tidy_export.h"
import "C"
import "unsafe"

//export tidy_parse_string
func tidy_parse_string(document *C.char, optionsJSON *C.char) C.TidyResult {
	var opts string
	if optionsJSON != nil {
		opts = C.GoString(optionsJSON)
	}
	out, msg, kind := parseString(C.GoString(document), opts)
	if kind != kindOK {
		return C.TidyResult{error: C.CString(msg), kind: C.int(kind)}
	}
	return C.TidyResult{
		data: C.CString(out),
		len:  C.int(len(out)),
	}
}

//export tidy_result_free
func tidy_result_free(result C.TidyResult) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
}
