package transform

import (
	"bytes"
	"testing"
)

func TestCapitalise(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"empty", []byte{}, []byte{}},
		{"lower", []byte("hello"), []byte("HELLO")},
		{"mixed", []byte("Hello, World 42!\n"), []byte("HELLO, WORLD 42!\n")},
		{"already upper", []byte("ABC"), []byte("ABC")},
		{"binary", []byte{0x00, 0xff, 'z', 0x80}, []byte{0x00, 0xff, 'Z', 0x80}},
		{"utf8 untouched", []byte("straße"), []byte("STRAßE")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]byte(nil), tt.in...)
			got := Capitalise(in)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Capitalise(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if len(got) != len(tt.in) {
				t.Errorf("Length changed from %d to %d", len(tt.in), len(got))
			}
		})
	}
}

func TestCapitaliseInPlace(t *testing.T) {
	buf := []byte("abc")
	Capitalise(buf[:2])
	if string(buf) != "ABc" {
		t.Errorf("Expected only the passed slice to change, got %q", buf)
	}
}
