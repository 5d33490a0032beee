package export

import (
	"github.com/aretw0/blox/pkg/blocks"
	"github.com/aretw0/blox/pkg/domain"
)

// DefaultTransforms returns the transforms for the built-in leaf types.
// Layout types and purely decorative blocks have none.
func DefaultTransforms() map[string]Transform {
	return map[string]Transform{
		domain.TypeContentBlock:    contentBlock,
		domain.TypeTextEditorBlock: textEditor,
		domain.TypeText:            text,
		domain.TypeHeading:         heading,
		domain.TypeImage:           image,
		domain.TypeButton:          button,
	}
}

func contentBlock(b domain.Block) (Item, error) {
	var p blocks.ContentBlockProps
	if err := blocks.DecodeProps(b.Data, &p); err != nil {
		return Item{}, err
	}

	var href string
	if p.Button != nil {
		href = p.Button.Href
	}

	var item Item
	if p.Heading != "" {
		item.Singlelines = append(item.Singlelines, Singleline{Content: p.Heading, Href: href})
	}
	if p.Paragraph != "" {
		item.Multilines = append(item.Multilines, Multiline{Content: p.Paragraph})
	}
	if p.Image != nil && p.Image.Props.URL != "" {
		alt := p.Image.Props.Alt
		if alt == "" {
			alt = p.Heading
		}
		item.Images = append(item.Images, Image{Content: p.Image.Props.URL, Alt: alt, Href: href})
	}
	return item, nil
}

func textEditor(b domain.Block) (Item, error) {
	var p blocks.TextEditorProps
	if err := blocks.DecodeProps(b.Data, &p); err != nil {
		return Item{}, err
	}
	return multiline(p.Content), nil
}

func text(b domain.Block) (Item, error) {
	var p blocks.TextProps
	if err := blocks.DecodeProps(b.Data, &p); err != nil {
		return Item{}, err
	}
	return multiline(p.Text), nil
}

func heading(b domain.Block) (Item, error) {
	var p blocks.HeadingProps
	if err := blocks.DecodeProps(b.Data, &p); err != nil {
		return Item{}, err
	}
	if p.Text == "" {
		return Item{}, nil
	}
	return Item{Singlelines: []Singleline{{Content: p.Text}}}, nil
}

func image(b domain.Block) (Item, error) {
	var p blocks.ImageProps
	if err := blocks.DecodeProps(b.Data, &p); err != nil {
		return Item{}, err
	}
	if p.URL == "" {
		return Item{}, nil
	}
	return Item{Images: []Image{{Content: p.URL, Alt: p.Alt, Href: p.LinkHref}}}, nil
}

func button(b domain.Block) (Item, error) {
	var p blocks.ButtonProps
	if err := blocks.DecodeProps(b.Data, &p); err != nil {
		return Item{}, err
	}
	if p.Text == "" {
		return Item{}, nil
	}
	return Item{Singlelines: []Singleline{{Content: p.Text, Href: p.URL}}}, nil
}

func multiline(content string) Item {
	if content == "" {
		return Item{}
	}
	return Item{Multilines: []Multiline{{Content: content}}}
}
