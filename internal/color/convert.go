// Package color holds the per-pixel conversions shared by the display
// pipeline: byte/float quantization, alpha association, dithering and the
// sRGB transfer functions.
//
// Byte pixels are always straight (unassociated) alpha. Float pixels are
// associated unless a caller states otherwise.
package color

import "math"

const byteScale = 1.0 / 255.0

// SRGBToLinear converts an sRGB component to linear (EOTF - Electro-Optical Transfer Function).
// Formula: if s <= 0.04045: s/12.92; else: pow((s+0.055)/1.055, 2.4)
func SRGBToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64((s+0.055)/1.055), 2.4))
}

// LinearToSRGB converts a linear component to sRGB (OETF - Opto-Electronic Transfer Function).
// Formula: if l <= 0.0031308: l*12.92; else: 1.055*pow(l, 1/2.4)-0.055
func LinearToSRGB(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*float32(math.Pow(float64(l), 1.0/2.4)) - 0.055
}

// LinearToSRGBV3 encodes the first three components of p in place.
func LinearToSRGBV3(p []float32) {
	p[0] = LinearToSRGB(p[0])
	p[1] = LinearToSRGB(p[1])
	p[2] = LinearToSRGB(p[2])
}

// SRGBToLinearV3 decodes the first three components of p in place.
func SRGBToLinearV3(p []float32) {
	p[0] = SRGBToLinear(p[0])
	p[1] = SRGBToLinear(p[1])
	p[2] = SRGBToLinear(p[2])
}

// U8ToF32 maps a byte component [0,255] to float32 [0,1].
func U8ToF32(v uint8) float32 {
	return float32(v) * byteScale
}

// F32ToU8 clamps a float32 to [0,1] and converts it to uint8 with rounding.
func F32ToU8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v > 1-0.5/255 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}

// PremulToStraight writes the unassociated form of the RGBA pixel src to dst.
// Fully transparent and fully opaque pixels are copied unchanged.
func PremulToStraight(dst, src []float32) {
	a := src[3]
	if a == 0 || a == 1 {
		copy(dst[:4], src[:4])
		return
	}
	inv := 1 / a
	dst[0] = src[0] * inv
	dst[1] = src[1] * inv
	dst[2] = src[2] * inv
	dst[3] = a
}

// StraightToPremul associates alpha of the RGBA pixel p in place.
func StraightToPremul(p []float32) {
	a := p[3]
	p[0] *= a
	p[1] *= a
	p[2] *= a
}

// PremultiplyRect associates alpha for every pixel of a 4-channel buffer.
// Buffers with fewer channels carry no alpha and are left unchanged.
func PremultiplyRect(buf []float32, channels, pixels int) {
	if channels != 4 {
		return
	}
	for i := range pixels {
		StraightToPremul(buf[i*4 : i*4+4])
	}
}

// FloatFromByte converts pixels bytes to floats keeping the channel layout.
// No transfer function is applied.
func FloatFromByte(dst []float32, src []byte, channels, pixels int) {
	n := channels * pixels
	for i := range n {
		dst[i] = U8ToF32(src[i])
	}
}

// ByteFromByte copies a byte buffer into a 4-channel display buffer.
// Three-channel sources get an opaque alpha.
func ByteFromByte(dst, src []byte, srcChannels, pixels int) {
	if srcChannels == 4 {
		copy(dst[:4*pixels], src[:4*pixels])
		return
	}
	for i := range pixels {
		s := src[i*srcChannels:]
		d := dst[i*4 : i*4+4]
		switch srcChannels {
		case 1:
			d[0], d[1], d[2] = s[0], s[0], s[0]
		default:
			d[0], d[1], d[2] = s[0], s[1], s[2]
		}
		d[3] = 255
	}
}
