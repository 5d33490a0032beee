package blocks

import (
	"fmt"

	"github.com/aretw0/blox/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Padding is the four-sided spacing shared by most styles, in pixels.
type Padding struct {
	Top    float64 `mapstructure:"top"`
	Bottom float64 `mapstructure:"bottom"`
	Left   float64 `mapstructure:"left"`
	Right  float64 `mapstructure:"right"`
}

// Style is the union of style keys understood by the built-in renderers.
// Each type reads the subset its schema allows.
type Style struct {
	BackgroundColor string   `mapstructure:"backgroundColor"`
	BorderColor     string   `mapstructure:"borderColor"`
	BorderRadius    float64  `mapstructure:"borderRadius"`
	Color           string   `mapstructure:"color"`
	FontFamily      string   `mapstructure:"fontFamily"`
	FontSize        float64  `mapstructure:"fontSize"`
	FontWeight      string   `mapstructure:"fontWeight"`
	TextAlign       string   `mapstructure:"textAlign"`
	Padding         *Padding `mapstructure:"padding"`
}

// TextStyle styles a text fragment inside a composite block.
type TextStyle struct {
	TextAlign  string `mapstructure:"textAlign"`
	FontFamily string `mapstructure:"fontFamily"`
	Color      string `mapstructure:"color"`
}

type LayoutProps struct {
	BackdropColor string   `mapstructure:"backdropColor"`
	BorderColor   string   `mapstructure:"borderColor"`
	BorderRadius  float64  `mapstructure:"borderRadius"`
	CanvasColor   string   `mapstructure:"canvasColor"`
	TextColor     string   `mapstructure:"textColor"`
	FontFamily    string   `mapstructure:"fontFamily"`
	ChildrenIDs   []string `mapstructure:"childrenIds"`
}

type Column struct {
	ChildrenIDs []string `mapstructure:"childrenIds"`
}

type ColumnsProps struct {
	ColumnsCount     int      `mapstructure:"columnsCount"`
	ColumnsGap       float64  `mapstructure:"columnsGap"`
	ContentAlignment string   `mapstructure:"contentAlignment"`
	Columns          []Column `mapstructure:"columns"`
}

type ImageProps struct {
	URL              string  `mapstructure:"url"`
	Alt              string  `mapstructure:"alt"`
	LinkHref         string  `mapstructure:"linkHref"`
	Width            float64 `mapstructure:"width"`
	Height           float64 `mapstructure:"height"`
	ContentAlignment string  `mapstructure:"contentAlignment"`
}

type TextProps struct {
	Text     string `mapstructure:"text"`
	Markdown bool   `mapstructure:"markdown"`
}

type HeadingProps struct {
	Text  string `mapstructure:"text"`
	Level string `mapstructure:"level"`
}

type ButtonProps struct {
	Text                  string `mapstructure:"text"`
	URL                   string `mapstructure:"url"`
	FullWidth             bool   `mapstructure:"fullWidth"`
	Size                  string `mapstructure:"size"`
	ButtonStyle           string `mapstructure:"buttonStyle"`
	ButtonTextColor       string `mapstructure:"buttonTextColor"`
	ButtonBackgroundColor string `mapstructure:"buttonBackgroundColor"`
}

type HTMLProps struct {
	Contents string `mapstructure:"contents"`
}

type AvatarProps struct {
	ImageURL string  `mapstructure:"imageUrl"`
	Alt      string  `mapstructure:"alt"`
	Size     float64 `mapstructure:"size"`
	Shape    string  `mapstructure:"shape"`
}

type DividerProps struct {
	LineColor  string  `mapstructure:"lineColor"`
	LineHeight float64 `mapstructure:"lineHeight"`
}

type SpacerProps struct {
	Height float64 `mapstructure:"height"`
}

// ContentImage is the nested image of a ContentBlock. It mirrors an Image
// block payload.
type ContentImage struct {
	Props ImageProps `mapstructure:"props"`
}

// ContentButton is the call to action of a ContentBlock.
type ContentButton struct {
	Text            string `mapstructure:"text"`
	Href            string `mapstructure:"href"`
	BackgroundColor string `mapstructure:"backgroundColor"`
	TextColor       string `mapstructure:"textColor"`
}

type ContentBlockProps struct {
	Image          *ContentImage  `mapstructure:"image"`
	Heading        string         `mapstructure:"heading"`
	HeadingStyle   *TextStyle     `mapstructure:"headingStyle"`
	Paragraph      string         `mapstructure:"paragraph"`
	ParagraphStyle *TextStyle     `mapstructure:"paragraphStyle"`
	Button         *ContentButton `mapstructure:"button"`
}

type TextEditorProps struct {
	Content   string     `mapstructure:"content"`
	TextStyle *TextStyle `mapstructure:"textStyle"`
}

// DecodeProps decodes the props half of a payload into out.
func DecodeProps(data domain.BlockData, out any) error {
	return decode(data.Props, out)
}

// DecodeStyle decodes the style half of a payload.
func DecodeStyle(data domain.BlockData) (Style, error) {
	var s Style
	err := decode(data.Style, &s)
	return s, err
}

func decode(in map[string]any, out any) error {
	if in == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
