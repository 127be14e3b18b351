package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	html := string(RenderMarkdown("**bold** advice"))
	assert.Contains(t, html, "<strong>bold</strong>")
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	html := string(RenderMarkdown(`hello <script>alert("x")</script> world`))
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "hello")
}

func TestRandStringLengthAndCharset(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		s := RandStringBytesMaskImpr(8)
		assert.Len(t, s, 8)
		for _, r := range s {
			assert.True(t, strings.ContainsRune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", r))
		}
		seen[s] = true
	}
	// Collisions over 50 draws from 62^8 would indicate a broken generator
	assert.Greater(t, len(seen), 45)
}

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong horse", hash))
}
