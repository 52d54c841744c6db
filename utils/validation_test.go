package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"0799123456", true},
		{"0799 123 456", true},
		{"(079) 912-3456", true},
		{"079912345678901", true},
		{"123456789", false},        // too short
		{"07991234ab", false},       // letters
		{"+93799123456", false},     // plus prefix is not digits
		{"", false},
		{"0799123456789012", false}, // too long
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidatePhone(tt.phone), "phone %q", tt.phone)
	}
}
