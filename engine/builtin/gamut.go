package builtin

import (
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/colormanage/internal/color"
)

// gamut converts linear RGB in a set of primaries to and from D65 XYZ.
type gamut struct {
	name    string
	toXYZ   f32.Mat3
	fromXYZ f32.Mat3

	// srgb routes conversions through go-colorful instead of the matrices.
	srgb bool
}

func (g *gamut) encodeXYZ(p *[3]float32) {
	if g.srgb {
		x, y, z := colorful.LinearRgbToXyz(float64(p[0]), float64(p[1]), float64(p[2]))
		p[0], p[1], p[2] = float32(x), float32(y), float32(z)
		return
	}
	color.MulMat3(&g.toXYZ, p[:])
}

func (g *gamut) decodeXYZ(p *[3]float32) {
	if g.srgb {
		r, gr, b := colorful.XyzToLinearRgb(float64(p[0]), float64(p[1]), float64(p[2]))
		p[0], p[1], p[2] = float32(r), float32(gr), float32(b)
		return
	}
	color.MulMat3(&g.fromXYZ, p[:])
}

func newMatrixGamut(name string, toXYZ f32.Mat3) *gamut {
	inv, ok := color.InvertMat3(toXYZ)
	if !ok {
		panic("builtin: singular primaries matrix for " + name)
	}
	return &gamut{name: name, toXYZ: toXYZ, fromXYZ: inv}
}

// Linear RGB to D65 XYZ matrices, row major.
var (
	srgbToXYZ = f32.Mat3{
		0.4123908, 0.35758433, 0.1804808,
		0.212639, 0.71516865, 0.07219232,
		0.019330818, 0.11919478, 0.95053214,
	}
	displayP3ToXYZ = f32.Mat3{
		0.48657095, 0.2656677, 0.19821729,
		0.22897457, 0.69173855, 0.07928691,
		0, 0.04511338, 1.0439444,
	}
	adobeRGBToXYZ = f32.Mat3{
		0.5767309, 0.185554, 0.1881852,
		0.2973769, 0.6273491, 0.0752741,
		0.0270343, 0.0706872, 0.9911085,
	}
	rec2020ToXYZ = f32.Mat3{
		0.6369580, 0.1446169, 0.1688810,
		0.2627002, 0.6779981, 0.0593017,
		0, 0.0280727, 1.0609851,
	}
)

var gamuts = map[string]*gamut{
	"srgb": func() *gamut {
		g := newMatrixGamut("srgb", srgbToXYZ)
		g.srgb = true
		return g
	}(),
	"p3":      newMatrixGamut("p3", displayP3ToXYZ),
	"adobe":   newMatrixGamut("adobe", adobeRGBToXYZ),
	"rec2020": newMatrixGamut("rec2020", rec2020ToXYZ),
	"xyz":     newMatrixGamut("xyz", color.Identity3),
}
