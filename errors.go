package colormanage

import "errors"

// Texture upload errors.
var (
	// ErrTextureSource is returned when a buffer's pixels cannot be
	// uploaded in the requested form.
	ErrTextureSource = errors.New("colormanage: unsupported texture source")

	// ErrTextureRegion is returned when the requested region does not fit
	// inside the buffer or the destination.
	ErrTextureRegion = errors.New("colormanage: texture region out of bounds")
)
