package colormanage

import "github.com/gogpu/colormanage/internal/processor"

// Processor applies a display or color space conversion to pixels.
//
// A Processor is safe for concurrent use. Release must be called once the
// processor is no longer needed.
type Processor struct {
	p *processor.Processor
}

// DisplayProcessor returns a processor rendering scene-linear pixels with
// the given settings. Nil view settings mean the display defaults.
func (m *Manager) DisplayProcessor(view *ViewSettings, display DisplaySettings) *Processor {
	return &Processor{p: m.newDisplayProcessor(view, display)}
}

// ColorSpaceProcessor returns a processor converting between two named
// color spaces.
func (m *Manager) ColorSpaceProcessor(from, to string) *Processor {
	return &Processor{p: processor.NewColorSpace(m.session().cat, from, to)}
}

func (m *Manager) newDisplayProcessor(view *ViewSettings, display DisplaySettings) *processor.Processor {
	cat := m.session().cat
	if view == nil {
		view = defaultViewSettings(cat, display)
	}
	return processor.NewDisplay(cat, processorParams(view, display))
}

// IsDataResult reports whether the output holds non-color data.
func (p *Processor) IsDataResult() bool { return p.p.IsDataResult() }

// Apply processes a packed float buffer of width*height pixels.
func (p *Processor) Apply(buf []float32, width, height, channels int, predivide bool) {
	p.p.Apply(buf, width, height, channels, predivide)
}

// ApplyByte processes a packed 4-channel byte buffer.
func (p *Processor) ApplyByte(buf []byte, width, height, channels int) {
	p.p.ApplyByte(buf, width, height, channels)
}

// ApplyV3 processes one RGB pixel.
func (p *Processor) ApplyV3(px []float32) { p.p.ApplyV3(px) }

// ApplyV4 processes one RGBA pixel, leaving alpha untouched.
func (p *Processor) ApplyV4(px []float32) { p.p.ApplyV4(px) }

// ApplyV4Predivide processes one associated-alpha RGBA pixel.
func (p *Processor) ApplyV4Predivide(px []float32) { p.p.ApplyV4Predivide(px) }

// ApplyPixel processes one pixel of 1, 3 or 4 channels.
func (p *Processor) ApplyPixel(px []float32, channels int) { p.p.ApplyPixel(px, channels) }

// Release frees the processor.
func (p *Processor) Release() { p.p.Release() }
