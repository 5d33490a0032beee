package blocks

import (
	"fmt"
	"strings"

	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
)

func renderLayout(_ domain.BlockID, data domain.BlockData) (string, error) {
	var p LayoutProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}

	var outer css
	outer.add("background-color", or(p.BackdropColor, "#F5F5F5"))
	outer.add("color", or(p.TextColor, "#262626"))
	outer.add("font-family", FontStack(or(p.FontFamily, "MODERN_SANS")))
	outer.add("font-size", "16px")
	outer.add("font-weight", "400")
	outer.add("letter-spacing", "0.15008px")
	outer.add("line-height", "1.5")
	outer.add("margin", "0")
	outer.add("padding", "32px 0")
	outer.add("min-height", "100%")
	outer.add("width", "100%")

	var canvas css
	canvas.add("margin", "0 auto")
	canvas.add("max-width", "600px")
	canvas.add("background-color", or(p.CanvasColor, "#FFFFFF"))
	canvas.add("border-radius", pxIf(p.BorderRadius))
	if p.BorderColor != "" {
		canvas.add("border", "1px solid "+p.BorderColor)
	}

	return fmt.Sprintf(`<div%s><table align="center" width="100%%"%s role="presentation" cellspacing="0" cellpadding="0" border="0"><tbody><tr style="width:100%%"><td>%s</td></tr></tbody></table></div>`,
		outer.attr(), canvas.attr(), registry.SlotMarker(0)), nil
}

func renderContainer(_ domain.BlockID, data domain.BlockData) (string, error) {
	s, err := DecodeStyle(data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<div%s>%s</div>`, boxCSS(s).attr(), registry.SlotMarker(0)), nil
}

// visibleColumns is how many columns a ColumnsContainer shows.
func visibleColumns(p ColumnsProps) int {
	n := p.ColumnsCount
	if n == 0 {
		n = len(p.Columns)
	}
	if n > len(p.Columns) {
		n = len(p.Columns)
	}
	return n
}

func renderColumns(_ domain.BlockID, data domain.BlockData) (string, error) {
	s, err := DecodeStyle(data)
	if err != nil {
		return "", err
	}
	var p ColumnsProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}

	n := visibleColumns(p)
	var b strings.Builder
	fmt.Fprintf(&b, `<div%s>`, boxCSS(s).attr())
	b.WriteString(`<table align="center" width="100%" cellpadding="0" border="0" style="table-layout:fixed;border-collapse:collapse"><tbody style="width:100%"><tr style="width:100%">`)
	for i := 0; i < n; i++ {
		var td css
		td.add("box-sizing", "content-box")
		td.add("vertical-align", or(p.ContentAlignment, "middle"))
		if p.ColumnsGap > 0 {
			half := px(p.ColumnsGap / 2)
			if i > 0 {
				td.add("padding-left", half)
			}
			if i < n-1 {
				td.add("padding-right", half)
			}
		}
		fmt.Fprintf(&b, `<td%s>%s</td>`, td.attr(), registry.SlotMarker(i))
	}
	b.WriteString(`</tr></tbody></table></div>`)
	return b.String(), nil
}
