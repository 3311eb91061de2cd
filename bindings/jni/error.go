package main

/*
#include <stdlib.h>
#include <string.h>

// Error codes (must match errorCode in state.go)
typedef enum {
    FFI_OK = 0,
    FFI_ERR_INVALID_ARGUMENT = 2,
    FFI_ERR_OVERFLOW = 10,
    FFI_ERR_UNKNOWN = 99
} ffi_error_code;

typedef struct {
    ffi_error_code code;
    char* message;
    char* op;
} ffi_error;

static inline void set_error(ffi_error* err, ffi_error_code code, const char* message, const char* op) {
    if (err == NULL) return;
    err->code = code;
    err->message = message ? strdup(message) : NULL;
    err->op = op ? strdup(op) : NULL;
}

static inline void clear_error(ffi_error* err) {
    if (err == NULL) return;
    err->code = FFI_OK;
    err->message = NULL;
    err->op = NULL;
}
*/
import "C"

import "unsafe"

// setError populates an ffi_error from a Go error and returns its code.
func setError(err error, cErr *C.ffi_error) C.ffi_error_code {
	if err == nil {
		C.clear_error(cErr)
		return C.FFI_OK
	}

	code := C.ffi_error_code(codeFor(err))

	cMsg := C.CString(err.Error())
	defer C.free(unsafe.Pointer(cMsg))

	var cOp *C.char
	if op := errorOp(err); op != "" {
		cOp = C.CString(op)
		defer C.free(unsafe.Pointer(cOp))
	}

	C.set_error(cErr, code, cMsg, cOp)
	return code
}

func setInvalidArgument(cErr *C.ffi_error, msg string) C.ffi_error_code {
	cMsg := C.CString(msg)
	defer C.free(unsafe.Pointer(cMsg))

	C.set_error(cErr, C.FFI_ERR_INVALID_ARGUMENT, cMsg, nil)
	return C.FFI_ERR_INVALID_ARGUMENT
}
