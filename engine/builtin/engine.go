// Package builtin is a self-contained transform engine and config format.
//
// Color spaces are defined by primaries and a per-channel transfer curve.
// Every conversion goes through linear D65 XYZ. Views map to display color
// spaces; looks are contrast and saturation grades evaluated in a process
// space. The engine covers what a working display pipeline needs without an
// external color management library.
package builtin

import (
	"fmt"
	"math"

	"github.com/gogpu/colormanage/engine"
)

// Engine compiles transforms for a Config.
type Engine struct {
	cfg *Config
}

var _ engine.Engine = (*Engine)(nil)

// New returns an engine for cfg. cfg must come from ParseConfig,
// LoadConfig, Default or Fallback.
func New(cfg *Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the config the engine compiles against.
func (e *Engine) Config() *Config { return e.cfg }

// CreateSpaceTransform implements engine.Engine.
func (e *Engine) CreateSpaceTransform(from, to string) (engine.Transform, error) {
	src := e.cfg.space(from)
	if src == nil {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownColorSpace, from)
	}
	dst := e.cfg.space(to)
	if dst == nil {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownColorSpace, to)
	}
	return newPipeline(convertOps(src, dst)), nil
}

// CreateDisplayTransform implements engine.Engine.
func (e *Engine) CreateDisplayTransform(req engine.DisplayRequest) (engine.Transform, error) {
	src := e.cfg.space(req.Source)
	if src == nil {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownColorSpace, req.Source)
	}
	if _, ok := e.cfg.displays[req.Display]; !ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownDisplay, req.Display)
	}
	dstName := e.cfg.DisplayColorSpace(req.Display, req.View)
	if dstName == "" {
		return nil, fmt.Errorf("%w: %q on display %q", engine.ErrUnknownView, req.View, req.Display)
	}
	dst := e.cfg.space(dstName)

	var look *Look
	if req.Look != "" {
		l, ok := e.cfg.looks[req.Look]
		if !ok {
			return nil, fmt.Errorf("%w: %q", engine.ErrUnknownLook, req.Look)
		}
		look = l
	}

	var ops []op
	if !src.Data {
		ref := e.cfg.reference()
		if ref == nil {
			ref = &ColorSpace{Name: "reference", gamut: src.gamut, transfer: transfers["linear"]}
		}
		ops = append(ops, convertOps(src, ref)...)

		if req.Scale != 1 {
			s := req.Scale
			ops = append(ops, func(p *[3]float32) {
				p[0] *= s
				p[1] *= s
				p[2] *= s
			})
		}

		if look != nil {
			ops = append(ops, e.lookOps(look, ref)...)
		}

		ops = append(ops, convertOps(ref, dst)...)
	}

	if req.Exponent != 1 {
		x := float64(req.Exponent)
		ops = append(ops, func(p *[3]float32) {
			for i := range p {
				if p[i] > 0 {
					p[i] = float32(math.Pow(float64(p[i]), x))
				}
			}
		})
	}
	return newPipeline(ops), nil
}

// convertOps returns the operations mapping src values to dst values.
// Data spaces on either side make the conversion an identity.
func convertOps(src, dst *ColorSpace) []op {
	if src.Data || dst.Data {
		return nil
	}
	if src.gamut == dst.gamut && src.transfer == dst.transfer {
		return nil
	}

	var ops []op
	if src.transfer.decode != nil {
		ops = append(ops, src.transfer.decodeRGB)
	}
	if src.gamut != dst.gamut {
		from, to := src.gamut, dst.gamut
		ops = append(ops, func(p *[3]float32) {
			from.encodeXYZ(p)
			to.decodeXYZ(p)
		})
	}
	if dst.transfer.encode != nil {
		ops = append(ops, dst.transfer.encodeRGB)
	}
	return ops
}

// lookOps grades reference values in the look's process space.
func (e *Engine) lookOps(l *Look, ref *ColorSpace) []op {
	space := ref
	if l.ProcessSpace != "" {
		space = e.cfg.space(l.ProcessSpace)
	}

	contrast := l.Contrast
	if contrast == 0 {
		contrast = 1
	}
	saturation := l.Saturation
	if saturation == 0 {
		saturation = 1
	}
	if contrast == 1 && saturation == 1 {
		return nil
	}

	pivot := float32(logMidGray)
	if space.transfer.encode != nil {
		pivot = space.transfer.encode(pivot)
	}
	luma := e.cfg.LumaCoefficients()

	grade := func(p *[3]float32) {
		if contrast != 1 {
			for i := range p {
				p[i] = pivot + (p[i]-pivot)*contrast
			}
		}
		if saturation != 1 {
			y := luma[0]*p[0] + luma[1]*p[1] + luma[2]*p[2]
			for i := range p {
				p[i] = y + (p[i]-y)*saturation
			}
		}
	}

	ops := convertOps(ref, space)
	ops = append(ops, grade)
	return append(ops, convertOps(space, ref)...)
}
