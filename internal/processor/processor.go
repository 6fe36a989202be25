// Package processor wraps compiled transforms and optional curve mappings
// into the per-pixel and per-buffer operations the color management core
// runs.
package processor

import (
	"fmt"
	"math"

	"github.com/gogpu/colormanage/curve"
	"github.com/gogpu/colormanage/engine"
	"github.com/gogpu/colormanage/internal/catalog"
	"github.com/gogpu/colormanage/internal/color"
)

// minGamma is the smallest gamma used to derive the display exponent.
const minGamma = 1.1920929e-07

// Display selects a display transform chain.
type Display struct {
	View    string
	Display string
	Look    string

	Exposure float32
	Gamma    float32

	// Curve is applied before the transform when non-nil. The processor
	// works on a private copy.
	Curve *curve.Mapping
}

// Processor applies an optional curve mapping followed by an optional
// transform. A Processor with neither is a valid no-op.
//
// A Processor may be shared by concurrent goroutines once created.
// Release must be called exactly once by the owner.
type Processor struct {
	tr           engine.Transform
	curve        *curve.Mapping
	isDataResult bool
}

// Scale returns the scene-linear multiplier for an exposure in stops.
func Scale(exposure float32) float32 {
	if exposure == 0 {
		return 1
	}
	return float32(math.Pow(2, float64(exposure)))
}

// Exponent returns the display exponent for a gamma setting.
func Exponent(gamma float32) float32 {
	if gamma == 1 {
		return 1
	}
	return 1 / max(minGamma, gamma)
}

// NewDisplay returns a processor converting scene-linear pixels for d.
// A transform the engine refuses to build is logged by the catalog and
// left out; the curve still applies.
func NewDisplay(cat *catalog.Catalog, d Display) *Processor {
	look := ""
	if cat.UseLook(d.Look, d.View) {
		look = d.Look
	}
	p := &Processor{
		tr: cat.DisplayTransform(engine.DisplayRequest{
			Source:   cat.Role(engine.RoleSceneLinear),
			View:     d.View,
			Display:  d.Display,
			Look:     look,
			Scale:    Scale(d.Exposure),
			Exponent: Exponent(d.Gamma),
		}),
	}
	if cs := cat.DisplayColorSpace(d.View, d.Display); cs != nil {
		p.isDataResult = cs.IsData
	}
	if d.Curve != nil {
		p.curve = d.Curve.Copy()
	}
	return p
}

// NewColorSpace returns a processor converting from one color space to
// another.
func NewColorSpace(cat *catalog.Catalog, from, to string) *Processor {
	return &Processor{
		tr:           cat.SpaceTransform(from, to),
		isDataResult: cat.IsDataName(to),
	}
}

// IsDataResult reports whether the output space holds non-color data.
func (p *Processor) IsDataResult() bool { return p.isDataResult }

// HasTransform reports whether a transform was built.
func (p *Processor) HasTransform() bool { return p.tr != nil }

// Apply processes a packed buffer of width*height pixels.
func (p *Processor) Apply(buf []float32, width, height, channels int, predivide bool) {
	if p.curve != nil {
		n := width * height
		for i := range n {
			p.curve.ApplyPixel(buf[i*channels:], channels)
		}
	}
	if p.tr != nil && channels >= 3 {
		img := engine.PackedImage{Data: buf, Width: width, Height: height, Channels: channels}
		if predivide {
			p.tr.ApplyPredivide(img)
		} else {
			p.tr.Apply(img)
		}
	}
}

// ApplyV4 processes one RGBA pixel, leaving alpha untouched.
func (p *Processor) ApplyV4(px []float32) {
	if p.curve != nil {
		p.curve.EvaluatePremulRGB(px, px)
	}
	if p.tr != nil {
		p.tr.ApplyRGBA(px)
	}
}

// ApplyV4Predivide processes one associated-alpha RGBA pixel.
func (p *Processor) ApplyV4Predivide(px []float32) {
	if p.curve != nil {
		p.curve.EvaluatePremulRGB(px, px)
	}
	if p.tr != nil {
		p.tr.ApplyRGBAPredivide(px)
	}
}

// ApplyV3 processes one RGB pixel.
func (p *Processor) ApplyV3(px []float32) {
	if p.curve != nil {
		p.curve.EvaluatePremulRGB(px, px)
	}
	if p.tr != nil {
		p.tr.ApplyRGB(px)
	}
}

// ApplyPixel processes one pixel of 1, 3 or 4 channels. Four channel
// pixels are treated as associated alpha. Single channel pixels only go
// through the curve.
func (p *Processor) ApplyPixel(px []float32, channels int) {
	switch channels {
	case 4:
		p.ApplyV4Predivide(px)
	case 3:
		p.ApplyV3(px)
	case 1:
		if p.curve != nil {
			p.curve.ApplyPixel(px, 1)
		}
	}
}

// ApplyByte processes a packed 8-bit RGBA buffer in place.
// Only 4 channel buffers are supported.
func (p *Processor) ApplyByte(buf []byte, width, height, channels int) {
	if channels != 4 {
		panic(fmt.Sprintf("processor: ApplyByte needs 4 channels, got %d", channels))
	}
	var f [4]float32
	for i := range width * height {
		px := buf[i*4 : i*4+4]
		for c := range f {
			f[c] = color.U8ToF32(px[c])
		}
		p.ApplyV4(f[:])
		for c := range f {
			px[c] = color.F32ToU8(f[c])
		}
	}
}

// Release frees the transform and the private curve copy.
func (p *Processor) Release() {
	if p.tr != nil {
		p.tr.Release()
		p.tr = nil
	}
	p.curve = nil
}
