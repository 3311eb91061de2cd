// Package jnimangle derives the C symbol names a JVM looks up when it links a
// native method.
package jnimangle

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

const prefix = "Java_"

// ShortName returns the symbol for a non-overloaded native method, e.g.
// ShortName("dev.tinyrange.ffibridge.NativeBridge", "increment") is
// "Java_dev_tinyrange_ffibridge_NativeBridge_increment". The class may use
// either '.' or '/' as the package separator.
func ShortName(class, method string) string {
	var b strings.Builder
	b.WriteString(prefix)
	writeMangled(&b, strings.ReplaceAll(class, ".", "/"))
	b.WriteByte('_')
	writeMangled(&b, method)
	return b.String()
}

// LongName returns the symbol for an overloaded native method. sig is the
// method descriptor, e.g. "(I)I"; only the argument part is mangled.
func LongName(class, method, sig string) (string, error) {
	args, err := argumentDescriptor(sig)
	if err != nil {
		return "", err
	}
	return ShortName(class, method) + "__" + mangle(args), nil
}

func argumentDescriptor(sig string) (string, error) {
	if !strings.HasPrefix(sig, "(") {
		return "", fmt.Errorf("invalid method descriptor %q", sig)
	}
	end := strings.IndexByte(sig, ')')
	if end < 0 {
		return "", fmt.Errorf("invalid method descriptor %q", sig)
	}
	return sig[1:end], nil
}

func mangle(s string) string {
	var b strings.Builder
	writeMangled(&b, s)
	return b.String()
}

func writeMangled(b *strings.Builder, s string) {
	for _, r := range s {
		switch {
		case r == '/':
			b.WriteByte('_')
		case r == '_':
			b.WriteString("_1")
		case r == ';':
			b.WriteString("_2")
		case r == '[':
			b.WriteString("_3")
		case isASCIIAlnum(r):
			b.WriteRune(r)
		default:
			// Characters outside the BMP are written as their surrogate pair.
			for _, u := range utf16.Encode([]rune{r}) {
				fmt.Fprintf(b, "_0%04x", u)
			}
		}
	}
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
