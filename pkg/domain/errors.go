package domain

import "errors"

// ErrTypeNotFound is returned when a block type has no registry entry.
var ErrTypeNotFound = errors.New("block type not registered")

// ErrBlockNotFound is returned when a block id is not in the document.
var ErrBlockNotFound = errors.New("block not found")

// ErrMissingRoot is returned when a document has no root entry.
var ErrMissingRoot = errors.New("document has no root block")

// ErrInvalidRoot is returned when the root entry is not a layout block.
var ErrInvalidRoot = errors.New("root block must be an " + TypeEmailLayout)

// ErrRootProtected is returned when an operation would remove or reparent the root.
var ErrRootProtected = errors.New("root block cannot be removed")

// ErrNotContainer is returned when children are addressed on a leaf block.
var ErrNotContainer = errors.New("block is not a container")

// ErrSiteOutOfRange is returned when a child site index does not exist.
var ErrSiteOutOfRange = errors.New("child site out of range")

var (
	ErrInvalidView      = errors.New("invalid view")
	ErrInvalidViewport  = errors.New("invalid viewport")
	ErrInvalidDirection = errors.New("invalid direction")
)
