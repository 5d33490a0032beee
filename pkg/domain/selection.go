package domain

import "fmt"

// View is the active editor surface.
type View string

const (
	ViewEditor  View = "editor"
	ViewPreview View = "preview"
	ViewHTML    View = "html"
	ViewJSON    View = "json"
	ViewExport  View = "export"
)

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewEditor, ViewPreview, ViewHTML, ViewJSON, ViewExport:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
}

// Viewport is the preview width class.
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportMobile  Viewport = "mobile"
)

// ParseViewport validates a viewport name.
func ParseViewport(s string) (Viewport, error) {
	switch v := Viewport(s); v {
	case ViewportDesktop, ViewportMobile:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidViewport, s)
}

// Direction is the way a block moves among its siblings.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection validates a move direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionUp, DirectionDown:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Selection is the editor state beside the document.
type Selection struct {
	// BlockID is empty when nothing is selected.
	BlockID  BlockID  `json:"selectedBlockId,omitempty"`
	View     View     `json:"view"`
	Viewport Viewport `json:"viewport"`
}
