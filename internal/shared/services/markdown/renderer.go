// Package markdown renders operator-supplied Markdown into sanitized HTML
// fragments for the gateway-facing pages.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type Renderer interface {
	// ToHTMLSanitized converts Markdown and strips anything outside the UGC policy.
	ToHTMLSanitized(markdown string) (string, error)
	// Document wraps a sanitized fragment in a minimal html/body document.
	Document(markdown string) (string, error)
}

type renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)
	return &renderer{md: md, policy: bluemonday.UGCPolicy()}
}

func (r *renderer) ToHTMLSanitized(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String())), nil
}

func (r *renderer) Document(markdown string) (string, error) {
	fragment, err := r.ToHTMLSanitized(markdown)
	if err != nil {
		return "", err
	}
	return "<html><body>" + fragment + "</body></html>", nil
}
