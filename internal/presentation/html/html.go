// Package html converts the Markdown projection to standalone HTML pages.
package html

import (
	"bytes"
	"fmt"
	stdhtml "html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	goldmark.WithRendererOptions(gmhtml.WithXHTML()),
)

// Fragment renders markdown to an HTML fragment. Raw HTML in the source is escaped.
func Fragment(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

const page = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body{font-family:system-ui,sans-serif;max-width:46rem;margin:2rem auto;padding:0 1rem;line-height:1.5;color:#1f2937}
table{border-collapse:collapse}td,th{border:1px solid #d1d5db;padding:.25rem .5rem}
blockquote{border-left:4px solid #0d9488;margin:0;padding:.25rem 1rem;background:#f0fdfa}
code{background:#f3f4f6;padding:0 .25rem;border-radius:3px}
</style>
</head>
<body>
%s</body>
</html>
`

// Document renders markdown into a complete HTML page.
func Document(title, markdown string) (string, error) {
	body, err := Fragment(markdown)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(page, stdhtml.EscapeString(title), body), nil
}
