package render

import (
	"fmt"
	"io"

	"github.com/aretw0/blox/pkg/domain"
)

// Width returns the preview width in pixels for a viewport.
func Width(v domain.Viewport) int {
	if v == domain.ViewportMobile {
		return 370
	}
	return 600
}

const pageHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body style="margin:0;padding:0">
`

const pageTail = `
</body>
</html>
`

// WritePage writes a complete static HTML document, ready to send.
func (r *Renderer) WritePage(w io.Writer, doc domain.Document, v domain.Viewport) error {
	body := r.HTML(doc, ModeStatic)
	_, err := fmt.Fprintf(w, `%s<div style="margin:0 auto;max-width:%dpx">%s</div>%s`, pageHead, Width(v), body, pageTail)
	return err
}
