package blocks

import (
	"fmt"
	"strings"

	"github.com/aretw0/blox/pkg/domain"
)

func fragmentCSS(ts *TextStyle, color, family string) css {
	var c css
	if ts != nil {
		c.add("text-align", ts.TextAlign)
		color = or(ts.Color, color)
		family = or(ts.FontFamily, family)
	}
	c.add("color", color)
	c.add("font-family", family)
	return c
}

func renderContentBlock(_ domain.BlockID, data domain.BlockData) (string, error) {
	s, err := DecodeStyle(data)
	if err != nil {
		return "", err
	}
	var p ContentBlockProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}

	var box css
	box.add("background-color", or(s.BackgroundColor, "#ffffff"))
	box.add("padding", or(paddingCSS(s.Padding), "24px"))

	var b strings.Builder
	fmt.Fprintf(&b, `<div%s>`, box.attr())

	if p.Image != nil && p.Image.Props.URL != "" {
		alt := or(p.Image.Props.Alt, p.Heading)
		fmt.Fprintf(&b, `<img src="%s" alt="%s" style="display:block;max-width:100%%;height:auto;margin:0 0 16px 0;border:none"/>`,
			esc(p.Image.Props.URL), esc(alt))
	}
	if p.Heading != "" {
		c := fragmentCSS(p.HeadingStyle, "#333333", "Arial, sans-serif")
		c.add("font-size", "24px")
		c.add("margin", "0 0 12px 0")
		fmt.Fprintf(&b, `<h2%s>%s</h2>`, c.attr(), esc(p.Heading))
	}
	if p.Paragraph != "" {
		c := fragmentCSS(p.ParagraphStyle, "#666666", "Arial, sans-serif")
		c.add("font-size", "16px")
		c.add("line-height", "1.5")
		c.add("margin", "0 0 16px 0")
		fmt.Fprintf(&b, `<p%s>%s</p>`, c.attr(), esc(p.Paragraph))
	}
	if p.Button != nil && p.Button.Text != "" {
		var c css
		c.add("display", "inline-block")
		c.add("padding", "12px 24px")
		c.add("background-color", or(p.Button.BackgroundColor, "#007bff"))
		c.add("color", or(p.Button.TextColor, "#ffffff"))
		c.add("text-decoration", "none")
		c.add("border-radius", "4px")
		fmt.Fprintf(&b, `<a href="%s"%s target="_blank">%s</a>`, esc(or(p.Button.Href, "#")), c.attr(), esc(p.Button.Text))
	}

	b.WriteString(`</div>`)
	return b.String(), nil
}

func renderTextEditor(_ domain.BlockID, data domain.BlockData) (string, error) {
	s, err := DecodeStyle(data)
	if err != nil {
		return "", err
	}
	var p TextEditorProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}

	c := boxCSS(s)
	if p.TextStyle != nil {
		c.add("color", p.TextStyle.Color)
		c.add("font-family", p.TextStyle.FontFamily)
	}
	return fmt.Sprintf(`<div%s>%s</div>`, c.attr(), Sanitize(p.Content)), nil
}
