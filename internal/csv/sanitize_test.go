package csv

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "plain ASCII",
			input:    []byte("a,b\n"),
			expected: "a,b\n",
		},
		{
			name:     "BOM stripped",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, "a,b"...),
			expected: "a,b",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM kept then sanitized",
			input:    []byte{0xEF, 0xBB, 'a'},
			expected: "??a",
		},
		{
			name:     "multibyte kept",
			input:    []byte("Zoë,Montréal"),
			expected: "Zoë,Montréal",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he?lo",
		},
		{
			name:     "truncated sequence at end",
			input:    []byte{'a', 0xC3},
			expected: "a?",
		},
		{
			name:     "empty",
			input:    nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(Sanitize(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitize_SplitMultibyte(t *testing.T) {
	input := "Zoë,Montréal,日本"
	r := Sanitize(iotest.OneByteReader(bytes.NewReader([]byte(input))))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != input {
		t.Errorf("got %q, want %q", got, input)
	}
}
