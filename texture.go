package colormanage

import (
	"fmt"

	"github.com/gogpu/colormanage/imbuf"
	"github.com/gogpu/colormanage/internal/color"
)

// checkRegion validates a w*h region at (x, y) of buf against a
// destination of n elements with the given components per pixel.
func checkRegion(buf *imbuf.Buffer, x, y, w, h, n, components int) error {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > buf.Width || y+h > buf.Height {
		return fmt.Errorf("%w: %dx%d at (%d,%d) in %dx%d", ErrTextureRegion, w, h, x, y, buf.Width, buf.Height)
	}
	if n < w*h*components {
		return fmt.Errorf("%w: destination holds %d values, need %d", ErrTextureRegion, n, w*h*components)
	}
	return nil
}

// ByteTextureSupported reports whether the byte pixels of buf can be
// uploaded directly by ImageToByteTexture.
func (m *Manager) ByteTextureSupported(buf *imbuf.Buffer) bool {
	if buf.Bytes == nil || buf.Floats != nil {
		return false
	}
	cat := m.session().cat
	cs := cat.ColorSpaceNamed(byteSpace(cat, buf))
	return cs != nil && (cs.IsData || cs.IsSRGB() || cs.IsSceneLinear())
}

// ImageToByteTexture copies a w*h region at (offX, offY) of buf into out
// as 4-channel bytes. With storePremultiplied color is multiplied by
// alpha unless the alpha is channel packed.
//
// Only byte buffers in sRGB, scene-linear or data spaces are accepted;
// others return ErrTextureSource.
func (m *Manager) ImageToByteTexture(out []byte, offX, offY, w, h int, buf *imbuf.Buffer, storePremultiplied bool) error {
	if !m.ByteTextureSupported(buf) {
		return fmt.Errorf("%w: byte upload of %q", ErrTextureSource, buf.ByteSpace)
	}
	if err := checkRegion(buf, offX, offY, w, h, len(out), 4); err != nil {
		return err
	}

	premul := buf.AlphaAffectsRGB() && storePremultiplied
	var px [4]byte
	for y := range h {
		for x := range w {
			bytePixel(px[:], buf, offX+x, offY+y)
			d := out[(y*w+x)*4 : (y*w+x)*4+4]
			if premul {
				a := uint32(px[3])
				d[0] = byte(uint32(px[0]) * a >> 8)
				d[1] = byte(uint32(px[1]) * a >> 8)
				d[2] = byte(uint32(px[2]) * a >> 8)
				d[3] = px[3]
				continue
			}
			copy(d, px[:])
		}
	}
	return nil
}

// ImageToFloatTexture copies a w*h region at (offX, offY) of buf into out
// as 4-channel scene-linear floats. With storePremultiplied the result has
// associated alpha, otherwise straight alpha.
func (m *Manager) ImageToFloatTexture(out []float32, offX, offY, w, h int, buf *imbuf.Buffer, storePremultiplied bool) error {
	if buf.Bytes == nil && buf.Floats == nil {
		return fmt.Errorf("%w: buffer has no pixels", ErrTextureSource)
	}
	if err := checkRegion(buf, offX, offY, w, h, len(out), 4); err != nil {
		return err
	}

	if buf.Floats != nil {
		floatTexture(out, offX, offY, w, h, buf, storePremultiplied)
		return nil
	}

	cat := m.session().cat
	tr := cat.ToSceneLinear(cat.ColorSpaceNamed(byteSpace(cat, buf)))
	premul := buf.AlphaAffectsRGB() && storePremultiplied

	var px [4]byte
	for y := range h {
		for x := range w {
			bytePixel(px[:], buf, offX+x, offY+y)
			d := out[(y*w+x)*4 : (y*w+x)*4+4]
			for c := range 4 {
				d[c] = color.U8ToF32(px[c])
			}
			if tr != nil {
				tr.ApplyRGB(d[:3])
			} else {
				color.SRGBToLinearV3(d[:3])
			}
			if premul {
				color.StraightToPremul(d)
			}
		}
	}
	return nil
}

func floatTexture(out []float32, offX, offY, w, h int, buf *imbuf.Buffer, storePremultiplied bool) {
	ch := buf.Channels
	unpremul := buf.AlphaAffectsRGB() && !storePremultiplied
	for y := range h {
		for x := range w {
			s := buf.Floats[((offY+y)*buf.Width+offX+x)*ch:]
			d := out[(y*w+x)*4 : (y*w+x)*4+4]
			switch ch {
			case 1:
				d[0], d[1], d[2], d[3] = s[0], s[0], s[0], s[0]
			case 3:
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 1
			default:
				if unpremul {
					color.PremulToStraight(d, s[:4])
				} else {
					copy(d, s[:4])
				}
			}
		}
	}
}

// bytePixel fetches the pixel at (x, y) of the byte pixels of buf as RGBA.
func bytePixel(dst []byte, buf *imbuf.Buffer, x, y int) {
	ch := buf.Channels
	s := buf.Bytes[(y*buf.Width+x)*ch:]
	switch ch {
	case 1:
		dst[0], dst[1], dst[2], dst[3] = s[0], s[0], s[0], 255
	case 3:
		dst[0], dst[1], dst[2], dst[3] = s[0], s[1], s[2], 255
	default:
		copy(dst, s[:4])
	}
}
