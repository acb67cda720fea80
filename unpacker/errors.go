package unpacker

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFrame1 = errors.New("movie file does not have a frame1")
	ErrMissingKeymap = errors.New("cannot resolve methods: keymap was not found")
	ErrMissingSuper  = errors.New("cannot resolve order: construct_super was not found")
)

// KeymapIndexError is returned when a character method pushes an index
// outside of the keymap.
type KeymapIndexError struct {
	Index  uint8
	Method uint32
}

func (e *KeymapIndexError) Error() string {
	return fmt.Sprintf("index error in keymap: %d (method %d)", e.Index, e.Method)
}

// NameDecodeError is returned when a resolved binary name is not valid UTF-8.
type NameDecodeError struct {
	Name []byte
}

func (e *NameDecodeError) Error() string {
	return fmt.Sprintf("utf8 error: invalid binary name %q", e.Name)
}

// MissingBinaryError names the first entry of the order that has no binary.
type MissingBinaryError struct {
	Name string
}

func (e *MissingBinaryError) Error() string {
	return fmt.Sprintf("unable to find binary with name: %s", e.Name)
}
