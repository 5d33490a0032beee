// Package blocks defines the closed set of block types the builder ships with.
package blocks

import (
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/registry"
	"github.com/aretw0/blox/pkg/schema"
)

func pad(v, h float64) map[string]any {
	return map[string]any{"top": v, "bottom": v, "left": h, "right": h}
}

// Definitions returns a fresh definition for every built-in type.
func Definitions() []registry.Definition {
	return []registry.Definition{
		{
			Type:      domain.TypeEmailLayout,
			Schema:    layoutSchema,
			Static:    renderLayout,
			Editable:  editable(domain.TypeEmailLayout, renderLayout, false),
			Container: true,
			Children:  registry.Children,
			Defaults: func() domain.BlockData {
				return domain.BlockData{Props: map[string]any{
					"backdropColor": "#F5F5F5",
					"canvasColor":   "#FFFFFF",
					"textColor":     "#262626",
					"fontFamily":    "MODERN_SANS",
					"childrenIds":   []any{},
				}}
			},
		},
		{
			Type:      domain.TypeContainer,
			Schema:    containerSchema,
			Static:    renderContainer,
			Editable:  editable(domain.TypeContainer, renderContainer, true),
			Container: true,
			Children:  registry.Children,
			Defaults: func() domain.BlockData {
				return domain.BlockData{
					Style: map[string]any{"padding": pad(16, 24)},
					Props: map[string]any{"childrenIds": []any{}},
				}
			},
		},
		{
			Type:      domain.TypeColumnsContainer,
			Schema:    columnsSchema,
			Static:    renderColumns,
			Editable:  editable(domain.TypeColumnsContainer, renderColumns, true),
			Container: true,
			Children:  registry.ColumnChildren{},
			Defaults: func() domain.BlockData {
				return domain.BlockData{
					Style: map[string]any{"padding": pad(16, 24)},
					Props: map[string]any{
						"columnsCount": 3.0,
						"columnsGap":   16.0,
						"columns": []any{
							map[string]any{"childrenIds": []any{}},
							map[string]any{"childrenIds": []any{}},
							map[string]any{"childrenIds": []any{}},
						},
					},
				}
			},
		},
		leaf(domain.TypeContentBlock, contentBlockSchema, renderContentBlock, nil, func() domain.BlockData {
			return domain.BlockData{Props: map[string]any{
				"heading":   "Heading",
				"paragraph": "Paragraph",
			}}
		}),
		leaf(domain.TypeTextEditorBlock, textEditorSchema, renderTextEditor, nil, func() domain.BlockData {
			return domain.BlockData{
				Style: map[string]any{"padding": pad(16, 24)},
				Props: map[string]any{"content": "<p>Start typing here</p>"},
			}
		}),
		leaf(domain.TypeImage, imageSchema, renderImage, editableImage, func() domain.BlockData {
			return domain.BlockData{
				Style: map[string]any{"padding": pad(16, 24)},
				Props: map[string]any{
					"url":              "https://assets.usewaypoint.com/sample-image.jpg",
					"alt":              "Sample product",
					"contentAlignment": "middle",
				},
			}
		}),
		leaf(domain.TypeText, textSchema, renderText, nil, func() domain.BlockData {
			return domain.BlockData{
				Style: map[string]any{"padding": pad(16, 24), "fontWeight": "normal"},
				Props: map[string]any{"text": "My new text block"},
			}
		}),
		leaf(domain.TypeHeading, headingSchema, renderHeading, nil, func() domain.BlockData {
			return domain.BlockData{
				Style: map[string]any{"padding": pad(16, 24)},
				Props: map[string]any{"text": "Hello friend", "level": "h2"},
			}
		}),
		leaf(domain.TypeButton, buttonSchema, renderButton, nil, func() domain.BlockData {
			return domain.BlockData{
				Style: map[string]any{"padding": pad(16, 24)},
				Props: map[string]any{"text": "Button", "url": "https://www.usewaypoint.com"},
			}
		}),
		leaf(domain.TypeHTML, htmlSchema, renderHTML, nil, func() domain.BlockData {
			return domain.BlockData{
				Style: map[string]any{"padding": pad(16, 24), "fontSize": 16.0, "textAlign": "left"},
				Props: map[string]any{"contents": "<strong>Hello world</strong>"},
			}
		}),
		leaf(domain.TypeAvatar, avatarSchema, renderAvatar, nil, func() domain.BlockData {
			return domain.BlockData{
				Style: map[string]any{"padding": pad(16, 24), "textAlign": "center"},
				Props: map[string]any{"imageUrl": "https://ui-avatars.com/api/?size=128", "shape": "circle", "size": 64.0},
			}
		}),
		leaf(domain.TypeDivider, dividerSchema, renderDivider, nil, func() domain.BlockData {
			return domain.BlockData{
				Style: map[string]any{"padding": pad(16, 0)},
				Props: map[string]any{"lineColor": "#CCCCCC"},
			}
		}),
		leaf(domain.TypeSpacer, spacerSchema, renderSpacer, nil, func() domain.BlockData {
			return domain.BlockData{Props: map[string]any{"height": 16.0}}
		}),
	}
}

func leaf(t string, s schema.Schema, static, edit registry.RenderFunc, defaults func() domain.BlockData) registry.Definition {
	if edit == nil {
		edit = static
	}
	return registry.Definition{
		Type:     t,
		Schema:   s,
		Static:   static,
		Editable: editable(t, edit, true),
		Defaults: defaults,
	}
}

// Register adds every built-in type to reg.
func Register(reg *registry.Registry) error {
	for _, def := range Definitions() {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in types.
func NewRegistry() *registry.Registry {
	reg := registry.NewRegistry()
	reg.MustRegister(Definitions()...)
	return reg
}
