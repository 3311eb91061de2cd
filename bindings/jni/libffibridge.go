package main

/*
#include <stdlib.h>
#include <stdint.h>
#include <stdbool.h>
#include <string.h>

// Subset of the JNI ABI (jni.h) needed by this library. Only the leading
// entries of the function table are declared; the library never allocates
// one, so the prefix is layout-compatible with the JVM's.
typedef int32_t jint;
typedef void* jobject;
typedef jobject jclass;

struct JNINativeInterface_;
typedef const struct JNINativeInterface_* JNIEnv;

struct JNINativeInterface_ {
    void* reserved0;
    void* reserved1;
    void* reserved2;
    void* reserved3;
    jint (*GetVersion)(JNIEnv* env);
    void* DefineClass;
    jclass (*FindClass)(JNIEnv* env, const char* name);
    void* FromReflectedMethod;
    void* FromReflectedField;
    void* ToReflectedMethod;
    void* GetSuperclass;
    void* IsAssignableFrom;
    void* ToReflectedField;
    void* Throw;
    jint (*ThrowNew)(JNIEnv* env, jclass clazz, const char* msg);
};

// Raise a Java exception of the given class. Returns non-zero when there is
// no usable environment or the class cannot be found.
static inline int ffi_throw_new(JNIEnv* env, const char* class_name, const char* msg) {
    if (env == NULL || *env == NULL) return -1;
    jclass clazz = (*env)->FindClass(env, class_name);
    if (clazz == NULL) return -1;
    return (int)(*env)->ThrowNew(env, clazz, msg);
}

// Error codes (must match error.go)
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

static inline void clear_error(ffi_error* err) {
    if (err == NULL) return;
    err->code = FFI_OK;
    err->message = NULL;
    err->op = NULL;
}
*/
import "C"

import "unsafe"

const arithmeticException = "java/lang/ArithmeticException"

// ==========================================================================
// JNI entry points
// ==========================================================================

//export Java_dev_tinyrange_ffibridge_NativeBridge_increment
func Java_dev_tinyrange_ffibridge_NativeBridge_increment(env *C.JNIEnv, clazz C.jclass, arg1 C.jint) C.jint {
	return jniIncrement(env, arg1)
}

// Java_JavaClass_rust_1implementation binds the original JavaClass demo host,
// which declares native int rust_implementation(int).
//
//export Java_JavaClass_rust_1implementation
func Java_JavaClass_rust_1implementation(env *C.JNIEnv, clazz C.jclass, arg1 C.jint) C.jint {
	return jniIncrement(env, arg1)
}

// jniIncrement runs the entry point on the calling JVM thread. Under the
// fault policy an overflow raises ArithmeticException; the returned 0 is
// ignored by the JVM while the exception is pending.
func jniIncrement(env *C.JNIEnv, arg C.jint) C.jint {
	result, err := increment(int32(arg))
	if err != nil {
		throwNew(env, arithmeticException, err.Error())
		return 0
	}
	return C.jint(result)
}

func throwNew(env *C.JNIEnv, className, msg string) {
	cClass := C.CString(className)
	defer C.free(unsafe.Pointer(cClass))
	cMsg := C.CString(msg)
	defer C.free(unsafe.Pointer(cMsg))

	if C.ffi_throw_new(env, cClass, cMsg) != 0 {
		entryPoint().Logger().Warn("could not raise java exception", "class", className, "error", msg)
	}
}

// ==========================================================================
// C entry points
// ==========================================================================

//export ffibridge_increment
func ffibridge_increment(x C.int32_t) C.int32_t {
	result, _ := increment(int32(x))
	return C.int32_t(result)
}

//export ffibridge_increment_checked
func ffibridge_increment_checked(x C.int32_t, out *C.int32_t, cErr *C.ffi_error) C.ffi_error_code {
	if out == nil {
		return setInvalidArgument(cErr, "out is NULL")
	}

	result, err := increment(int32(x))
	if err != nil {
		return setError(err, cErr)
	}

	*out = C.int32_t(result)
	C.clear_error(cErr)
	return C.FFI_OK
}

//export ffibridge_overflow_policy
func ffibridge_overflow_policy() C.int {
	return C.int(entryPoint().Policy())
}

//export ffibridge_api_version
func ffibridge_api_version() *C.char {
	return C.CString(apiVersion().String)
}

//export ffibridge_api_version_compatible
func ffibridge_api_version_compatible(major, minor C.int) C.bool {
	return C.bool(apiCompatible(int(major), int(minor)))
}

//export ffibridge_free_string
func ffibridge_free_string(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

//export ffibridge_error_free
func ffibridge_error_free(err *C.ffi_error) {
	if err == nil {
		return
	}
	if err.message != nil {
		C.free(unsafe.Pointer(err.message))
		err.message = nil
	}
	if err.op != nil {
		C.free(unsafe.Pointer(err.op))
		err.op = nil
	}
	err.code = C.FFI_OK
}
