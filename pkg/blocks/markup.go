package blocks

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy   = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyles(
		"color", "background-color",
		"font-family", "font-size", "font-weight", "font-style",
		"text-align", "text-decoration", "line-height",
		"padding", "margin",
	).Globally()
	p.AllowAttrs("target").OnElements("a")
	return p
}

// Sanitize strips markup that is unsafe to embed in an email body.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// Markdown converts GitHub flavoured markdown to sanitized HTML.
func Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return Sanitize(buf.String()), nil
}

// css accumulates inline declarations, skipping empty values.
type css []string

func (c *css) add(prop, value string) {
	if value != "" {
		*c = append(*c, prop+":"+value)
	}
}

func (c css) String() string { return strings.Join(c, ";") }

func (c css) attr() string {
	if len(c) == 0 {
		return ""
	}
	return ` style="` + html.EscapeString(c.String()) + `"`
}

func px(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func pxIf(v float64) string {
	if v == 0 {
		return ""
	}
	return px(v)
}

func paddingCSS(p *Padding) string {
	if p == nil {
		return ""
	}
	return strings.Join([]string{px(p.Top), px(p.Right), px(p.Bottom), px(p.Left)}, " ")
}

func esc(s string) string { return html.EscapeString(s) }

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// boxCSS applies the style keys shared by every block wrapper.
func boxCSS(s Style) css {
	var c css
	c.add("background-color", s.BackgroundColor)
	c.add("color", s.Color)
	c.add("font-family", FontStack(s.FontFamily))
	c.add("font-size", pxIf(s.FontSize))
	c.add("font-weight", s.FontWeight)
	c.add("text-align", s.TextAlign)
	c.add("padding", paddingCSS(s.Padding))
	return c
}

// editable frames static markup for the editor. Containers also get an
// insertion affordance after every slot marker, leaves get the tune menu.
func editable(blockType string, static registry.RenderFunc, tune bool) registry.RenderFunc {
	return func(id domain.BlockID, data domain.BlockData) (string, error) {
		inner, err := static(id, data)
		if err != nil {
			return "", err
		}
		for site := 0; strings.Contains(inner, registry.SlotMarker(site)); site++ {
			marker := registry.SlotMarker(site)
			inner = strings.Replace(inner, marker, marker+addBlock(id, site), 1)
		}

		var b strings.Builder
		fmt.Fprintf(&b, `<div class="blox-block" data-block-id="%s" data-block-type="%s" tabindex="0">`, esc(string(id)), esc(blockType))
		b.WriteString(inner)
		if tune {
			b.WriteString(tuneMenu(id))
		}
		b.WriteString(`</div>`)
		return b.String(), nil
	}
}

func tuneMenu(id domain.BlockID) string {
	return fmt.Sprintf(`<div class="blox-tune-menu" data-block-id="%s">`+
		`<button type="button" data-action="move" data-direction="up">&uarr;</button>`+
		`<button type="button" data-action="move" data-direction="down">&darr;</button>`+
		`<button type="button" data-action="delete">&times;</button>`+
		`</div>`, esc(string(id)))
}

func addBlock(parent domain.BlockID, site int) string {
	return fmt.Sprintf(`<div class="blox-add-block" data-parent-id="%s" data-site="%d"></div>`, esc(string(parent)), site)
}
