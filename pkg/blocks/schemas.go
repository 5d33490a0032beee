package blocks

import "github.com/aretw0/blox/pkg/schema"

// FontFamilies is the closed set of layout font stacks.
var FontFamilies = []string{
	"MODERN_SANS",
	"BOOK_SANS",
	"ORGANIC_SANS",
	"GEOMETRIC_SANS",
	"HEAVY_SANS",
	"ROUNDED_SANS",
	"MODERN_SERIF",
	"BOOK_SERIF",
	"MONOSPACE",
}

var fontStacks = map[string]string{
	"MODERN_SANS":    `"Helvetica Neue", "Arial Nova", "Nimbus Sans", Arial, sans-serif`,
	"BOOK_SANS":      `Optima, Candara, "Noto Sans", source-sans-pro, sans-serif`,
	"ORGANIC_SANS":   `Seravek, "Gill Sans Nova", Ubuntu, Calibri, "DejaVu Sans", source-sans-pro, sans-serif`,
	"GEOMETRIC_SANS": `Avenir, "Avenir Next LT Pro", Montserrat, Corbel, "URW Gothic", source-sans-pro, sans-serif`,
	"HEAVY_SANS":     `Bahnschrift, "DIN Alternate", "Franklin Gothic Medium", "Nimbus Sans Narrow", sans-serif-condensed, sans-serif`,
	"ROUNDED_SANS":   `ui-rounded, "Hiragino Maru Gothic ProN", Quicksand, Comfortaa, Manjari, "Arial Rounded MT Bold", Calibri, source-sans-pro, sans-serif`,
	"MODERN_SERIF":   `Charter, "Bitstream Charter", "Sitka Text", Cambria, serif`,
	"BOOK_SERIF":     `"Iowan Old Style", "Palatino Linotype", "URW Palladio L", P052, serif`,
	"MONOSPACE":      `"Nimbus Mono PS", "Courier New", "Cutive Mono", monospace`,
}

// FontStack returns the CSS font-family for a layout font name.
// Free-form names pass through.
func FontStack(name string) string {
	if stack, ok := fontStacks[name]; ok {
		return stack
	}
	return name
}

var (
	colorType = schema.Pattern("color", `^#[0-9a-fA-F]{6}$`)
	alignType = schema.Enum("left", "center", "right", "justify")
	vAlign    = schema.Enum("top", "middle", "bottom")

	paddingType = schema.Object(schema.Schema{
		"top":    schema.Min(0),
		"bottom": schema.Min(0),
		"left":   schema.Min(0),
		"right":  schema.Min(0),
	})

	childrenType = schema.Slice(schema.String())
)

func opt(t schema.Type) schema.Type { return schema.Optional(t) }

// blockStyle is the style accepted by containers and media blocks.
func blockStyle() schema.Type {
	return opt(schema.Object(schema.Schema{
		"backgroundColor": opt(colorType),
		"padding":         opt(paddingType),
		"textAlign":       opt(alignType),
	}))
}

// textStyle is the style accepted by leaves that carry text.
func textStyle() schema.Type {
	return opt(schema.Object(schema.Schema{
		"backgroundColor": opt(colorType),
		"color":           opt(colorType),
		"fontFamily":      opt(schema.String()),
		"fontSize":        opt(schema.Range(0, 128)),
		"fontWeight":      opt(schema.Enum("bold", "normal")),
		"textAlign":       opt(alignType),
		"padding":         opt(paddingType),
	}))
}

func fragmentStyle() schema.Type {
	return opt(schema.Object(schema.Schema{
		"textAlign":  opt(alignType),
		"fontFamily": opt(schema.String()),
		"color":      opt(colorType),
	}))
}

func props(fields schema.Schema) schema.Type {
	return opt(schema.Object(fields))
}

var (
	layoutSchema = schema.Schema{
		"style": blockStyle(),
		"props": props(schema.Schema{
			"backdropColor": opt(colorType),
			"borderColor":   opt(colorType),
			"borderRadius":  opt(schema.Range(0, 48)),
			"canvasColor":   opt(colorType),
			"textColor":     opt(colorType),
			"fontFamily":    opt(schema.Enum(FontFamilies...)),
			"childrenIds":   opt(childrenType),
		}),
	}

	containerSchema = schema.Schema{
		"style": blockStyle(),
		"props": props(schema.Schema{
			"childrenIds": opt(childrenType),
		}),
	}

	columnsSchema = schema.Schema{
		"style": blockStyle(),
		"props": props(schema.Schema{
			"columnsCount":     opt(schema.Range(2, 3)),
			"columnsGap":       opt(schema.Min(0)),
			"contentAlignment": opt(vAlign),
			"columns": opt(schema.Slice(schema.Object(schema.Schema{
				"childrenIds": childrenType,
			}))),
		}),
	}

	imagePropsSchema = schema.Schema{
		"url":              opt(schema.String()),
		"alt":              opt(schema.String()),
		"linkHref":         opt(schema.String()),
		"width":            opt(schema.Min(0)),
		"height":           opt(schema.Min(0)),
		"contentAlignment": opt(vAlign),
	}

	imageSchema = schema.Schema{
		"style": blockStyle(),
		"props": props(imagePropsSchema),
	}

	contentBlockSchema = schema.Schema{
		"style": opt(schema.Object(schema.Schema{
			"backgroundColor": opt(colorType),
			"padding":         opt(paddingType),
		})),
		"props": props(schema.Schema{
			"image": opt(schema.Object(schema.Schema{
				"props": props(imagePropsSchema),
			})),
			"heading":        opt(schema.String()),
			"headingStyle":   fragmentStyle(),
			"paragraph":      opt(schema.String()),
			"paragraphStyle": fragmentStyle(),
			"button": opt(schema.Object(schema.Schema{
				"text":            opt(schema.String()),
				"href":            opt(schema.String()),
				"backgroundColor": opt(colorType),
				"textColor":       opt(colorType),
			})),
		}),
	}

	textEditorSchema = schema.Schema{
		"style": blockStyle(),
		"props": schema.Object(schema.Schema{
			"content": schema.String(),
			"textStyle": opt(schema.Object(schema.Schema{
				"fontFamily": opt(schema.String()),
				"color":      opt(colorType),
			})),
		}),
	}

	textSchema = schema.Schema{
		"style": textStyle(),
		"props": props(schema.Schema{
			"text":     opt(schema.String()),
			"markdown": opt(schema.Bool()),
		}),
	}

	headingSchema = schema.Schema{
		"style": textStyle(),
		"props": props(schema.Schema{
			"text":  opt(schema.String()),
			"level": opt(schema.Enum("h1", "h2", "h3")),
		}),
	}

	buttonSchema = schema.Schema{
		"style": textStyle(),
		"props": props(schema.Schema{
			"text":                  opt(schema.String()),
			"url":                   opt(schema.String()),
			"fullWidth":             opt(schema.Bool()),
			"size":                  opt(schema.Enum("x-small", "small", "medium", "large")),
			"buttonStyle":           opt(schema.Enum("rectangle", "rounded", "pill")),
			"buttonTextColor":       opt(colorType),
			"buttonBackgroundColor": opt(colorType),
		}),
	}

	htmlSchema = schema.Schema{
		"style": textStyle(),
		"props": props(schema.Schema{
			"contents": opt(schema.String()),
		}),
	}

	avatarSchema = schema.Schema{
		"style": blockStyle(),
		"props": props(schema.Schema{
			"imageUrl": opt(schema.String()),
			"alt":      opt(schema.String()),
			"size":     opt(schema.Range(1, 512)),
			"shape":    opt(schema.Enum("circle", "square", "rounded")),
		}),
	}

	dividerSchema = schema.Schema{
		"style": blockStyle(),
		"props": props(schema.Schema{
			"lineColor":  opt(colorType),
			"lineHeight": opt(schema.Range(1, 24)),
		}),
	}

	spacerSchema = schema.Schema{
		"style": blockStyle(),
		"props": props(schema.Schema{
			"height": opt(schema.Min(0)),
		}),
	}
)
