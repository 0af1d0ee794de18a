package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Markdown renders bookmark descriptions and clipping files to HTML
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a renderer with GitHub flavored markdown, front
// matter and syntax highlighted code blocks. Raw HTML in the source is
// not passed through.
func NewMarkdown() *Markdown {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, task lists, autolinks
			meta.Meta,     // front matter
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &Markdown{md: md}
}

// Render converts markdown to HTML
func (m *Markdown) Render(src string) (string, error) {
	out, _, err := m.convert([]byte(src))
	return out, err
}

// convert renders src and returns its front matter alongside the HTML
func (m *Markdown) convert(src []byte) (string, map[string]interface{}, error) {
	var buf bytes.Buffer
	ctx := parser.NewContext()

	if err := m.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return "", nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	metaData, err := meta.TryGet(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("invalid front matter: %w", err)
	}
	if metaData == nil {
		metaData = make(map[string]interface{})
	}
	return buf.String(), metaData, nil
}
