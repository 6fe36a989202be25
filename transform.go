package colormanage

import (
	"log/slog"
	"slices"

	"github.com/gogpu/colormanage/engine"
	"github.com/gogpu/colormanage/imbuf"
	"github.com/gogpu/colormanage/internal/catalog"
	"github.com/gogpu/colormanage/internal/color"
	"github.com/gogpu/colormanage/internal/parallel"
	"github.com/gogpu/colormanage/internal/processor"
)

// rowRange is one slice of rows handed to a worker.
type rowRange struct {
	start, count int
}

// eachRows runs fn over contiguous row ranges on the worker pool.
func (m *Manager) eachRows(rows int, fn func(start, count int)) {
	parallel.ProcessRows(m.pool, rows,
		func(start, count int) rowRange { return rowRange{start, count} },
		func(r rowRange) { fn(r.start, r.count) })
}

// Transform converts a packed float buffer between two color spaces in
// place. An empty source or identical spaces leave buf unchanged.
func (m *Manager) Transform(buf []float32, width, height, channels int, from, to string, predivide bool) {
	m.transform(buf, width, height, channels, from, to, predivide, false)
}

// TransformThreaded is Transform split by rows across the worker pool.
func (m *Manager) TransformThreaded(buf []float32, width, height, channels int, from, to string, predivide bool) {
	m.transform(buf, width, height, channels, from, to, predivide, true)
}

func (m *Manager) transform(buf []float32, width, height, channels int, from, to string, predivide, threaded bool) {
	if from == "" || from == to {
		return
	}
	p := processor.NewColorSpace(m.session().cat, from, to)
	defer p.Release()

	if !threaded {
		p.Apply(buf, width, height, channels, predivide)
		return
	}
	m.eachRows(height, func(start, count int) {
		p.Apply(buf[start*width*channels:(start+count)*width*channels], width, count, channels, predivide)
	})
}

// TransformByte converts a packed 4-channel byte buffer between two color
// spaces in place.
func (m *Manager) TransformByte(buf []byte, width, height, channels int, from, to string) {
	m.transformByte(buf, width, height, channels, from, to, false)
}

// TransformByteThreaded is TransformByte split by rows across the worker
// pool.
func (m *Manager) TransformByteThreaded(buf []byte, width, height, channels int, from, to string) {
	m.transformByte(buf, width, height, channels, from, to, true)
}

func (m *Manager) transformByte(buf []byte, width, height, channels int, from, to string, threaded bool) {
	if from == "" || from == to {
		return
	}
	p := processor.NewColorSpace(m.session().cat, from, to)
	defer p.Release()

	if !threaded {
		p.ApplyByte(buf, width, height, channels)
		return
	}
	m.eachRows(height, func(start, count int) {
		p.ApplyByte(buf[start*width*channels:(start+count)*width*channels], width, count, channels)
	})
}

// TransformFromByte converts straight-alpha bytes in from into associated
// alpha floats in to. Identical spaces only convert the representation.
func (m *Manager) TransformFromByte(dst []float32, src []byte, width, height, channels int, from, to string) {
	m.transformFromByte(dst, src, width, height, channels, from, to, false)
}

// TransformFromByteThreaded is TransformFromByte split by rows across the
// worker pool.
func (m *Manager) TransformFromByteThreaded(dst []float32, src []byte, width, height, channels int, from, to string) {
	m.transformFromByte(dst, src, width, height, channels, from, to, true)
}

func (m *Manager) transformFromByte(dst []float32, src []byte, width, height, channels int, from, to string, threaded bool) {
	if from == "" {
		return
	}
	if from == to {
		n := width * height
		color.FloatFromByte(dst, src, channels, n)
		color.PremultiplyRect(dst, channels, n)
		return
	}

	p := processor.NewColorSpace(m.session().cat, from, to)
	defer p.Release()

	rows := func(start, count int) {
		lo, hi := start*width*channels, (start+count)*width*channels
		out := dst[lo:hi]
		color.FloatFromByte(out, src[lo:hi], channels, width*count)
		p.Apply(out, width, count, channels, false)
		color.PremultiplyRect(out, channels, width*count)
	}
	if !threaded {
		rows(0, height)
		return
	}
	m.eachRows(height, rows)
}

// TransformV4 converts one RGBA pixel between two color spaces.
func (m *Manager) TransformV4(px []float32, from, to string) {
	if from == "" || from == to {
		return
	}
	p := processor.NewColorSpace(m.session().cat, from, to)
	defer p.Release()
	p.ApplyV4(px)
}

// colorSpace resolves name, logging unknown names.
func colorSpace(cat *catalog.Catalog, name string) *catalog.ColorSpace {
	cs := cat.ColorSpaceNamed(name)
	if cs == nil && name != "" {
		Logger().Debug("colormanage: unknown color space", slog.String("colorspace", name))
	}
	return cs
}

// ColorSpaceToSceneLinearV3 converts one RGB pixel from the named space to
// scene-linear.
func (m *Manager) ColorSpaceToSceneLinearV3(px []float32, space string) {
	cat := m.session().cat
	if tr := cat.ToSceneLinear(colorSpace(cat, space)); tr != nil {
		tr.ApplyRGB(px)
	}
}

// ColorSpaceToSceneLinearV4 converts one RGBA pixel from the named space to
// scene-linear. With predivide the pixel is treated as associated alpha.
func (m *Manager) ColorSpaceToSceneLinearV4(px []float32, predivide bool, space string) {
	cat := m.session().cat
	tr := cat.ToSceneLinear(colorSpace(cat, space))
	switch {
	case tr == nil:
	case predivide:
		tr.ApplyRGBAPredivide(px)
	default:
		tr.ApplyRGBA(px)
	}
}

// ColorSpaceToSceneLinear converts a packed float buffer from the named
// space to scene-linear in place.
func (m *Manager) ColorSpaceToSceneLinear(buf []float32, width, height, channels int, space string, predivide bool) {
	cat := m.session().cat
	tr := cat.ToSceneLinear(colorSpace(cat, space))
	if tr == nil || channels < 3 {
		return
	}
	img := engine.PackedImage{Data: buf, Width: width, Height: height, Channels: channels}
	if predivide {
		tr.ApplyPredivide(img)
	} else {
		tr.Apply(img)
	}
}

// SceneLinearToColorSpaceV3 converts one scene-linear RGB pixel into the
// named space.
func (m *Manager) SceneLinearToColorSpaceV3(px []float32, space string) {
	cat := m.session().cat
	if tr := cat.FromSceneLinear(colorSpace(cat, space)); tr != nil {
		tr.ApplyRGB(px)
	}
}

// SceneLinearToColorPickingV3 writes in converted to the color picking role
// into out. Without a picking transform out is a copy of in.
func (m *Manager) SceneLinearToColorPickingV3(out, in []float32) {
	copy(out[:3], in[:3])
	if tr := m.session().cat.SceneLinearToColorPicking(); tr != nil {
		tr.ApplyRGB(out)
	}
}

// ColorPickingToSceneLinearV3 is the inverse of SceneLinearToColorPickingV3.
func (m *Manager) ColorPickingToSceneLinearV3(out, in []float32) {
	copy(out[:3], in[:3])
	if tr := m.session().cat.ColorPickingToSceneLinear(); tr != nil {
		tr.ApplyRGB(out)
	}
}

// SceneLinearToSRGBV3 writes in converted to sRGB through XYZ into out.
func (m *Manager) SceneLinearToSRGBV3(out, in []float32) {
	cat := m.session().cat
	toXYZ, toSRGB := cat.RGBToXYZ(), cat.XYZToLinearSRGB()
	copy(out[:3], in[:3])
	color.MulMat3(&toXYZ, out)
	color.MulMat3(&toSRGB, out)
	color.LinearToSRGBV3(out)
}

// SRGBToSceneLinearV3 is the inverse of SceneLinearToSRGBV3.
func (m *Manager) SRGBToSceneLinearV3(out, in []float32) {
	cat := m.session().cat
	toXYZ, toRGB := cat.LinearSRGBToXYZ(), cat.XYZToRGB()
	copy(out[:3], in[:3])
	color.SRGBToLinearV3(out)
	color.MulMat3(&toXYZ, out)
	color.MulMat3(&toRGB, out)
}

// SceneLinearToDisplayV3 converts one scene-linear RGB pixel into the
// color space of the display's default view.
func (m *Manager) SceneLinearToDisplayV3(px []float32, display string) {
	cat := m.session().cat
	if tr := cat.SceneLinearToDisplay(cat.DisplayNamed(display)); tr != nil {
		tr.ApplyRGB(px)
	}
}

// DisplayToSceneLinearV3 is the inverse of SceneLinearToDisplayV3.
func (m *Manager) DisplayToSceneLinearV3(px []float32, display string) {
	cat := m.session().cat
	if tr := cat.DisplayToSceneLinear(cat.DisplayNamed(display)); tr != nil {
		tr.ApplyRGB(px)
	}
}

// PixelToDisplaySpaceV3 writes the display rendering of a scene-linear RGB
// pixel into result.
func (m *Manager) PixelToDisplaySpaceV3(result, pixel []float32, view *ViewSettings, display DisplaySettings) {
	copy(result[:3], pixel[:3])
	p := m.newDisplayProcessor(view, display)
	defer p.Release()
	p.ApplyV3(result)
}

// PixelToDisplaySpaceV4 writes the display rendering of a scene-linear RGBA
// pixel into result.
func (m *Manager) PixelToDisplaySpaceV4(result, pixel []float32, view *ViewSettings, display DisplaySettings) {
	copy(result[:4], pixel[:4])
	p := m.newDisplayProcessor(view, display)
	defer p.Release()
	p.ApplyV4(result)
}

// BufferMakeDisplaySpace renders an associated-alpha float buffer into
// 4-channel display bytes. src is left unchanged.
func (m *Manager) BufferMakeDisplaySpace(src []float32, dst []byte, width, height, channels int, dither float32,
	view *ViewSettings, display DisplaySettings) {
	tmp := slices.Clone(src[:width*height*channels])

	p := m.newDisplayProcessor(view, display)
	defer p.Release()

	m.eachRows(height, func(start, count int) {
		p.Apply(tmp[start*width*channels:(start+count)*width*channels], width, count, channels, true)
	})
	color.ByteFromFloat(dst, tmp, channels, dither, true, width, height, width, width, 0, 0)
}

// DisplayBufferTransformApply renders a float buffer into 4-channel display
// bytes without dithering. linear is left unchanged.
func (m *Manager) DisplayBufferTransformApply(dst []byte, linear []float32, width, height, channels int,
	view *ViewSettings, display DisplaySettings, predivide bool) {
	tmp := slices.Clone(linear[:width*height*channels])

	p := m.newDisplayProcessor(view, display)
	defer p.Release()

	p.Apply(tmp, width, height, channels, predivide)
	color.ByteFromFloat(dst, tmp, channels, 0, false, width, height, width, width, 0, 0)
}

// MakeDisplaySpace converts the pixels of buf into display space in place,
// afterwards declaring the display color space on them. Cached display
// buffers of buf are marked stale.
func (m *Manager) MakeDisplaySpace(buf *imbuf.Buffer, view *ViewSettings, display DisplaySettings) {
	if buf.Bytes == nil && buf.Floats == nil {
		return
	}
	cat := m.session().cat
	if view == nil {
		view = defaultViewSettings(cat, display)
	}

	var dst []byte
	if buf.Bytes != nil {
		if buf.Channels == 4 {
			dst = buf.Bytes
		} else {
			dst = make([]byte, 4*buf.Pixels())
		}
	}
	m.processDisplayBuffer(cat, buf, dst, buf.Floats, view, display)

	if dst != nil && buf.Channels != 4 {
		ch := buf.Channels
		for i := range buf.Pixels() {
			copy(buf.Bytes[i*ch:i*ch+ch], dst[i*4:i*4+ch])
		}
	}

	space := cat.DisplayColorSpaceName(view.ViewTransform, display.DisplayDevice)
	if buf.Bytes != nil {
		buf.ByteSpace = space
	}
	if buf.Floats != nil {
		buf.FloatSpace = space
	}
	buf.MarkDisplayInvalid()
}

// MakeLinear converts the float pixels of buf from the named space to
// scene-linear and drops the byte pixels, which no longer match.
func (m *Manager) MakeLinear(buf *imbuf.Buffer, from string) {
	if buf.Floats == nil {
		return
	}
	buf.Bytes = nil
	m.TransformThreaded(buf.Floats, buf.Width, buf.Height, buf.Channels, from,
		m.session().cat.Role(engine.RoleSceneLinear), buf.AlphaAffectsRGB())
	buf.FloatSpace = ""
	buf.MarkDisplayInvalid()
}
