package imbuf

import (
	"image"

	"github.com/disintegration/imaging"
)

// FromImage copies img into a 4-channel straight-alpha byte buffer.
// The byte color space is left empty for the caller to declare.
func FromImage(img image.Image) *Buffer {
	nrgba := imaging.Clone(img)
	return &Buffer{
		Width:    nrgba.Rect.Dx(),
		Height:   nrgba.Rect.Dy(),
		Channels: 4,
		Bytes:    nrgba.Pix,
	}
}

// ToNRGBA returns a copy of the 4-channel pixels p as an image.
func ToNRGBA(width, height int, p []byte) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, p[:width*height*4])
	return img
}
