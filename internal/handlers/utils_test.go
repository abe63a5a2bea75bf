// internal/handlers/utils_test.go
package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTokenFromCookie(t *testing.T) {
	assert.Equal(t, "abc123", extractTokenFromCookie("auth_token=abc123"))
	assert.Equal(t, "abc123", extractTokenFromCookie("theme=dark; auth_token=abc123; lang=en"))
	assert.Equal(t, "", extractTokenFromCookie("theme=dark"))
	assert.Equal(t, "", extractTokenFromCookie(""))
}
