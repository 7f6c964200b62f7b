package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown("**Graph** [sample](https://example.com/data.xlsx)"))
	assert.Contains(t, out, "<strong>Graph</strong>")
	assert.Contains(t, out, `href="https://example.com/data.xlsx"`)
	assert.Contains(t, out, `target="_blank"`)
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("hello <script>alert(1)</script>"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hello")
}
