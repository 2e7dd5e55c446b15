package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ops@example.com", "o***@example.com"},
		{"a@example.com", "a***@example.com"},
		{"not-an-email", "***"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskEmail(tt.in), tt.in)
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "***", MaskSecret(""))
	assert.Equal(t, "***", MaskSecret("abcd"))
	assert.Equal(t, "5d41***", MaskSecret("5d41402abc4b2a76b9719d911017c592"))
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "...", TruncateForLog("payload", 0))
	assert.Equal(t, "payload", TruncateForLog("payload", 7))
	assert.Equal(t, "pay...", TruncateForLog("payload", 3))
}
