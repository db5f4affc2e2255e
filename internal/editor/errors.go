package editor

import "errors"

var (
	// ErrReadOnly is returned by mutating actions on a read-only editor
	ErrReadOnly = errors.New("editor is read-only")

	// ErrInvalidColor is returned when a recolor value is not a hex color
	ErrInvalidColor = errors.New("invalid color")

	// ErrBlankText is returned when a node label would be empty
	ErrBlankText = errors.New("text must not be blank")

	// ErrSelection is returned when an action needs a different selection size
	ErrSelection = errors.New("action not valid for current selection")

	// ErrClosed is returned by actions on a closed editor
	ErrClosed = errors.New("editor is closed")
)
