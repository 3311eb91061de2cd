package jnimangle

import "testing"

func TestShortName(t *testing.T) {
	tests := []struct {
		class, method string
		want          string
	}{
		{"dev.tinyrange.ffibridge.NativeBridge", "increment", "Java_dev_tinyrange_ffibridge_NativeBridge_increment"},
		{"dev/tinyrange/ffibridge/NativeBridge", "increment", "Java_dev_tinyrange_ffibridge_NativeBridge_increment"},
		{"JavaClass", "rust_implementation", "Java_JavaClass_rust_1implementation"},
		{"org.fedejinich.GoJNI", "foo", "Java_org_fedejinich_GoJNI_foo"},
		{"p.Café", "run", "Java_p_Caf_000e9_run"},
		{"p.A$B", "m", "Java_p_A_00024B_m"},
	}

	for _, tt := range tests {
		if got := ShortName(tt.class, tt.method); got != tt.want {
			t.Errorf("ShortName(%q, %q) = %q, want %q", tt.class, tt.method, got, tt.want)
		}
	}
}

func TestShortNameSupplementary(t *testing.T) {
	// U+1F600 encodes as the surrogate pair D83D DE00.
	got := ShortName("p.C", "m\U0001F600")
	want := "Java_p_C_m_0d83d_0de00"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLongName(t *testing.T) {
	tests := []struct {
		class, method, sig string
		want               string
	}{
		{"JavaClass", "rust_implementation", "(I)I", "Java_JavaClass_rust_1implementation__I"},
		{"a.B", "f", "(Ljava/lang/String;[I)V", "Java_a_B_f__Ljava_lang_String_2_3I"},
		{"a.B", "g", "()V", "Java_a_B_g__"},
	}

	for _, tt := range tests {
		got, err := LongName(tt.class, tt.method, tt.sig)
		if err != nil {
			t.Fatalf("LongName(%q, %q, %q) error = %v", tt.class, tt.method, tt.sig, err)
		}
		if got != tt.want {
			t.Errorf("LongName(%q, %q, %q) = %q, want %q", tt.class, tt.method, tt.sig, got, tt.want)
		}
	}
}

func TestLongNameInvalidDescriptor(t *testing.T) {
	for _, sig := range []string{"", "I)I", "(II"} {
		if _, err := LongName("a.B", "f", sig); err == nil {
			t.Errorf("LongName with descriptor %q: expected error", sig)
		}
	}
}
