// Package imbuf provides the image buffer the color management core works
// on: byte and/or float pixel storage with declared color spaces, an alpha
// mode, a pending dirty rectangle and an opaque slot for attached caches.
package imbuf

import (
	"errors"
	"fmt"
	"image"
	"sync"
)

// Errors returned by buffer constructors.
var (
	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("imbuf: invalid dimensions")

	// ErrInvalidChannels is returned for channel counts other than 1, 3 or 4.
	ErrInvalidChannels = errors.New("imbuf: invalid channel count")

	// ErrDataTooSmall is returned when supplied pixel data is shorter than
	// the dimensions require.
	ErrDataTooSmall = errors.New("imbuf: data too small")
)

// AlphaMode describes how the alpha channel relates to color channels.
type AlphaMode uint8

const (
	// AlphaStraight means color is not multiplied by alpha.
	AlphaStraight AlphaMode = iota

	// AlphaPremul means color is already multiplied by alpha.
	AlphaPremul

	// AlphaChannelPacked means alpha holds unrelated data.
	AlphaChannelPacked

	// AlphaIgnore means alpha is present but should be treated as opaque.
	AlphaIgnore
)

// String returns the alpha mode name.
func (m AlphaMode) String() string {
	switch m {
	case AlphaStraight:
		return "straight"
	case AlphaPremul:
		return "premul"
	case AlphaChannelPacked:
		return "channel_packed"
	case AlphaIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("AlphaMode(%d)", m)
	}
}

// Flags are user flags other subsystems set on a buffer.
type Flags uint32

const (
	// DisplayBufferInvalid marks every cached display buffer stale.
	DisplayBufferInvalid Flags = 1 << iota

	// ByteInvalid marks the byte pixels stale relative to the float pixels.
	ByteInvalid
)

// Buffer is an image with optional byte and float pixel storage.
//
// Bytes holds straight-alpha pixels with Channels components each. Floats
// holds associated-alpha pixels with Channels components each. Either may
// be nil.
type Buffer struct {
	Width  int
	Height int

	// Channels is 1, 3 or 4. The constructors reject other counts, and
	// the color management core ignores buffers built by hand with any
	// other count.
	Channels int

	Bytes  []byte
	Floats []float32

	// ByteSpace is the color space of Bytes. Empty means the default byte
	// role.
	ByteSpace string

	// FloatSpace is the color space of Floats. Empty means scene linear.
	FloatSpace string

	Alpha  AlphaMode
	Dither float32

	// Data marks non-color content such as normals or masks.
	Data bool

	// mu guards the fields below, which the core reads and resets while
	// other goroutines keep editing the buffer.
	mu sync.Mutex

	// invalid accumulates regions changed since the last display buffer
	// refresh. The zero rectangle means nothing is pending.
	invalid   image.Rectangle
	userFlags Flags
	slot      any
}

func validate(width, height, channels int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	switch channels {
	case 1, 3, 4:
		return nil
	}
	return fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
}

// NewByte allocates a buffer with zeroed byte pixels.
func NewByte(width, height, channels int) (*Buffer, error) {
	if err := validate(width, height, channels); err != nil {
		return nil, err
	}
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Bytes:    make([]byte, width*height*channels),
	}, nil
}

// NewFloat allocates a buffer with zeroed float pixels.
func NewFloat(width, height, channels int) (*Buffer, error) {
	if err := validate(width, height, channels); err != nil {
		return nil, err
	}
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Floats:   make([]float32, width*height*channels),
	}, nil
}

// FromBytes wraps existing byte pixels without copying.
func FromBytes(width, height, channels int, data []byte) (*Buffer, error) {
	if err := validate(width, height, channels); err != nil {
		return nil, err
	}
	if need := width * height * channels; len(data) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrDataTooSmall, len(data), need)
	}
	return &Buffer{Width: width, Height: height, Channels: channels, Bytes: data}, nil
}

// FromFloats wraps existing float pixels without copying.
func FromFloats(width, height, channels int, data []float32) (*Buffer, error) {
	if err := validate(width, height, channels); err != nil {
		return nil, err
	}
	if need := width * height * channels; len(data) < need {
		return nil, fmt.Errorf("%w: have %d floats, need %d", ErrDataTooSmall, len(data), need)
	}
	return &Buffer{Width: width, Height: height, Channels: channels, Floats: data}, nil
}

// Bounds returns the buffer rectangle.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Pixels returns the pixel count.
func (b *Buffer) Pixels() int {
	return b.Width * b.Height
}

// AlphaAffectsRGB reports whether color transforms must take alpha into
// account. Only channel-packed alpha is independent of color.
func (b *Buffer) AlphaAffectsRGB() bool {
	return b.Alpha != AlphaChannelPacked
}

// UserFlags returns the user flags of b.
func (b *Buffer) UserFlags() Flags {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.userFlags
}

// SetUserFlags sets f on b.
func (b *Buffer) SetUserFlags(f Flags) {
	b.mu.Lock()
	b.userFlags |= f
	b.mu.Unlock()
}

// ClearUserFlags clears f on b.
func (b *Buffer) ClearUserFlags(f Flags) {
	b.mu.Lock()
	b.userFlags &^= f
	b.mu.Unlock()
}

// MarkDisplayInvalid flags every cached display buffer of b as stale.
func (b *Buffer) MarkDisplayInvalid() {
	b.SetUserFlags(DisplayBufferInvalid)
}

// DisplayInvalid reports whether DisplayBufferInvalid is set.
func (b *Buffer) DisplayInvalid() bool {
	return b.UserFlags()&DisplayBufferInvalid != 0
}

// TakeDisplayInvalid clears DisplayBufferInvalid and reports whether it
// was set.
func (b *Buffer) TakeDisplayInvalid() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.userFlags&DisplayBufferInvalid != 0
	b.userFlags &^= DisplayBufferInvalid
	return set
}

// InvalidRect returns the pending dirty rectangle.
func (b *Buffer) InvalidRect() image.Rectangle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.invalid
}

// AddInvalidRect grows the pending dirty rectangle by r.
func (b *Buffer) AddInvalidRect(r image.Rectangle) {
	if r.Empty() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.invalid.Empty() {
		b.invalid = r
		return
	}
	b.invalid = b.invalid.Union(r)
}

// TakeInvalidRect returns the pending dirty rectangle and resets it.
func (b *Buffer) TakeInvalidRect() image.Rectangle {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.invalid
	b.invalid = image.Rectangle{}
	return r
}

// CacheSlot returns the value attached with SetCacheSlot.
func (b *Buffer) CacheSlot() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slot
}

// SetCacheSlot attaches v to the buffer, replacing any previous value.
func (b *Buffer) SetCacheSlot(v any) {
	b.mu.Lock()
	b.slot = v
	b.mu.Unlock()
}

// TakeCacheSlot detaches and returns the attached value.
func (b *Buffer) TakeCacheSlot() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := b.slot
	b.slot = nil
	return v
}
