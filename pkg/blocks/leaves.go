package blocks

import (
	"fmt"
	"strings"

	"github.com/aretw0/blox/pkg/domain"
)

// PlaceholderImage stands in for an image without a url in the editor.
const PlaceholderImage = "https://placehold.co/600x200?text=Image"

func renderImage(_ domain.BlockID, data domain.BlockData) (string, error) {
	s, err := DecodeStyle(data)
	if err != nil {
		return "", err
	}
	var p ImageProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}

	var img css
	img.add("width", pxIf(p.Width))
	img.add("height", pxIf(p.Height))
	img.add("outline", "none")
	img.add("border", "none")
	img.add("text-decoration", "none")
	img.add("vertical-align", or(p.ContentAlignment, "middle"))
	img.add("display", "inline-block")
	img.add("max-width", "100%")

	tag := fmt.Sprintf(`<img alt="%s" src="%s"%s/>`, esc(p.Alt), esc(p.URL), img.attr())
	if p.LinkHref != "" {
		tag = fmt.Sprintf(`<a href="%s" style="text-decoration:none" target="_blank">%s</a>`, esc(p.LinkHref), tag)
	}
	return fmt.Sprintf(`<div%s>%s</div>`, boxCSS(s).attr(), tag), nil
}

// editableImage shows a placeholder instead of a broken image.
func editableImage(id domain.BlockID, data domain.BlockData) (string, error) {
	var p ImageProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}
	if p.URL != "" {
		return renderImage(id, data)
	}
	patched := data.Clone()
	if patched.Props == nil {
		patched.Props = map[string]any{}
	}
	patched.Props["url"] = PlaceholderImage
	return renderImage(id, patched)
}

func renderText(_ domain.BlockID, data domain.BlockData) (string, error) {
	s, err := DecodeStyle(data)
	if err != nil {
		return "", err
	}
	var p TextProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}

	body := esc(p.Text)
	if p.Markdown {
		if body, err = Markdown(p.Text); err != nil {
			return "", err
		}
	} else {
		body = strings.ReplaceAll(body, "\n", "<br/>")
	}
	return fmt.Sprintf(`<div%s>%s</div>`, boxCSS(s).attr(), body), nil
}

var headingSizes = map[string]string{"h1": "32px", "h2": "24px", "h3": "20px"}

func renderHeading(_ domain.BlockID, data domain.BlockData) (string, error) {
	s, err := DecodeStyle(data)
	if err != nil {
		return "", err
	}
	var p HeadingProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}

	level := or(p.Level, "h2")
	c := boxCSS(s)
	c.add("font-weight", or(s.FontWeight, "bold"))
	c.add("margin", "0")
	if s.FontSize == 0 {
		c.add("font-size", headingSizes[level])
	}
	return fmt.Sprintf(`<%s%s>%s</%s>`, level, c.attr(), esc(p.Text), level), nil
}

var buttonPadding = map[string]string{
	"x-small": "4px 8px",
	"small":   "8px 12px",
	"medium":  "12px 20px",
	"large":   "16px 32px",
}

var buttonRadius = map[string]string{
	"rectangle": "",
	"rounded":   "4px",
	"pill":      "64px",
}

func renderButton(_ domain.BlockID, data domain.BlockData) (string, error) {
	s, err := DecodeStyle(data)
	if err != nil {
		return "", err
	}
	var p ButtonProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}

	var wrap css
	wrap.add("background-color", s.BackgroundColor)
	wrap.add("text-align", s.TextAlign)
	wrap.add("padding", paddingCSS(s.Padding))

	var a css
	a.add("color", or(p.ButtonTextColor, "#FFFFFF"))
	a.add("font-size", or(pxIf(s.FontSize), "16px"))
	a.add("font-family", FontStack(s.FontFamily))
	a.add("font-weight", or(s.FontWeight, "bold"))
	a.add("background-color", or(p.ButtonBackgroundColor, "#999999"))
	a.add("border-radius", buttonRadius[or(p.ButtonStyle, "rounded")])
	if p.FullWidth {
		a.add("display", "block")
	} else {
		a.add("display", "inline-block")
	}
	a.add("padding", buttonPadding[or(p.Size, "medium")])
	a.add("text-decoration", "none")

	return fmt.Sprintf(`<div%s><a href="%s"%s target="_blank">%s</a></div>`,
		wrap.attr(), esc(p.URL), a.attr(), esc(p.Text)), nil
}

func renderHTML(_ domain.BlockID, data domain.BlockData) (string, error) {
	s, err := DecodeStyle(data)
	if err != nil {
		return "", err
	}
	var p HTMLProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}
	return fmt.Sprintf(`<div%s>%s</div>`, boxCSS(s).attr(), Sanitize(p.Contents)), nil
}

var avatarRadius = map[string]string{"circle": "100%", "rounded": "8px", "square": ""}

func renderAvatar(_ domain.BlockID, data domain.BlockData) (string, error) {
	s, err := DecodeStyle(data)
	if err != nil {
		return "", err
	}
	var p AvatarProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}

	size := p.Size
	if size == 0 {
		size = 64
	}
	var img css
	img.add("outline", "none")
	img.add("border", "none")
	img.add("text-decoration", "none")
	img.add("object-fit", "cover")
	img.add("height", px(size))
	img.add("width", px(size))
	img.add("max-width", "100%")
	img.add("display", "inline-block")
	img.add("vertical-align", "middle")
	img.add("text-align", "center")
	img.add("border-radius", avatarRadius[or(p.Shape, "square")])

	return fmt.Sprintf(`<div%s><img alt="%s" src="%s" height="%g" width="%g"%s/></div>`,
		boxCSS(s).attr(), esc(p.Alt), esc(p.ImageURL), size, size, img.attr()), nil
}

func renderDivider(_ domain.BlockID, data domain.BlockData) (string, error) {
	s, err := DecodeStyle(data)
	if err != nil {
		return "", err
	}
	var p DividerProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}

	h := p.LineHeight
	if h == 0 {
		h = 1
	}
	var hr css
	hr.add("width", "100%")
	hr.add("border", "none")
	hr.add("border-top", fmt.Sprintf("%s solid %s", px(h), or(p.LineColor, "#333333")))
	hr.add("margin", "0")
	return fmt.Sprintf(`<div%s><hr%s/></div>`, boxCSS(s).attr(), hr.attr()), nil
}

func renderSpacer(_ domain.BlockID, data domain.BlockData) (string, error) {
	var p SpacerProps
	if err := DecodeProps(data, &p); err != nil {
		return "", err
	}
	h := p.Height
	if h == 0 {
		h = 16
	}
	return fmt.Sprintf(`<div style="height:%s"></div>`, px(h)), nil
}
