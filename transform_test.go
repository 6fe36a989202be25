package colormanage

import (
	"math"
	"slices"
	"testing"

	"github.com/gogpu/colormanage/imbuf"
	"github.com/gogpu/colormanage/internal/color"
)

const tolerance = 1e-3

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= tolerance
}

func nearV(t *testing.T, name string, got, want []float32) {
	t.Helper()
	for i := range want {
		if !near(got[i], want[i]) {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
	}
}

// =============================================================================
// Space conversions
// =============================================================================

func TestTransform_RoundTrip(t *testing.T) {
	m := newTestManager(t)

	var spaces []string
	for _, cs := range m.Catalog().InvertibleColorSpaces() {
		if !cs.IsData {
			spaces = append(spaces, cs.Name)
		}
	}
	if len(spaces) < 2 {
		t.Fatalf("only %d invertible color spaces", len(spaces))
	}

	want := []float32{0.40, 0.45, 0.50, 1, 0.30, 0.32, 0.35, 1}
	for _, a := range spaces {
		for _, b := range spaces {
			t.Run(a+"/"+b, func(t *testing.T) {
				buf := slices.Clone(want)
				m.Transform(buf, 2, 1, 4, a, b, false)
				m.Transform(buf, 2, 1, 4, b, a, false)
				nearV(t, "round trip", buf, want)
			})
		}
	}
}

func TestTransform_Noop(t *testing.T) {
	m := newTestManager(t)
	want := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}

	tests := []struct {
		name     string
		from, to string
	}{
		{"same space", "sRGB", "sRGB"},
		{"empty source", "", "sRGB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := slices.Clone(want)
			m.Transform(buf, 2, 1, 3, tt.from, tt.to, false)
			if !slices.Equal(buf, want) {
				t.Errorf("buffer changed: %v", buf)
			}

			b := []byte{1, 2, 3, 4, 5, 6, 7, 8}
			m.TransformByte(b, 2, 1, 4, tt.from, tt.to)
			if !slices.Equal(b, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
				t.Errorf("byte buffer changed: %v", b)
			}
		})
	}
}

func TestTransform_DataIsIdentity(t *testing.T) {
	m := newTestManager(t)
	want := []float32{0.1, 0.7, 0.3}
	buf := slices.Clone(want)

	m.Transform(buf, 1, 1, 3, "sRGB", "Non-Color", false)
	nearV(t, "to data", buf, want)
}

func TestTransformThreaded_MatchesSingle(t *testing.T) {
	m := newTestManager(t, WithWorkers(4))

	src := make([]float32, 37*23*4)
	for i := range src {
		src[i] = float32(i%101) / 101
	}
	single := slices.Clone(src)
	threaded := slices.Clone(src)

	m.Transform(single, 37, 23, 4, "Linear", "Adobe RGB", true)
	m.TransformThreaded(threaded, 37, 23, 4, "Linear", "Adobe RGB", true)
	if !slices.Equal(single, threaded) {
		t.Error("threaded float transform differs")
	}

	bsrc := make([]byte, 37*23*4)
	for i := range bsrc {
		bsrc[i] = byte(i * 3)
	}
	bSingle := slices.Clone(bsrc)
	bThreaded := slices.Clone(bsrc)
	m.TransformByte(bSingle, 37, 23, 4, "sRGB", "Display P3")
	m.TransformByteThreaded(bThreaded, 37, 23, 4, "sRGB", "Display P3")
	if !slices.Equal(bSingle, bThreaded) {
		t.Error("threaded byte transform differs")
	}
}

func TestTransformByte_NeedsFourChannels(t *testing.T) {
	m := newTestManager(t)
	defer func() {
		if recover() == nil {
			t.Error("TransformByte on 3 channels did not panic")
		}
	}()
	m.TransformByte(make([]byte, 6), 2, 1, 3, "sRGB", "Linear")
}

func TestTransformFromByte(t *testing.T) {
	m := newTestManager(t)
	src := []byte{255, 128, 0, 128}

	t.Run("same space premultiplies", func(t *testing.T) {
		dst := make([]float32, 4)
		m.TransformFromByte(dst, src, 1, 1, 4, "sRGB", "sRGB")
		a := color.U8ToF32(128)
		nearV(t, "dst", dst, []float32{a, color.U8ToF32(128) * a, 0, a})
	})

	t.Run("to linear", func(t *testing.T) {
		dst := make([]float32, 4)
		m.TransformFromByte(dst, src, 1, 1, 4, "sRGB", "Linear")
		a := color.U8ToF32(128)
		want := []float32{1 * a, color.SRGBToLinear(color.U8ToF32(128)) * a, 0, a}
		nearV(t, "dst", dst, want)
	})

	t.Run("empty source", func(t *testing.T) {
		dst := []float32{9, 9, 9, 9}
		m.TransformFromByte(dst, src, 1, 1, 4, "", "Linear")
		if !slices.Equal(dst, []float32{9, 9, 9, 9}) {
			t.Errorf("dst = %v, want untouched", dst)
		}
	})

	t.Run("threaded matches", func(t *testing.T) {
		big := make([]byte, 19*11*4)
		for i := range big {
			big[i] = byte(i * 5)
		}
		a := make([]float32, len(big))
		b := make([]float32, len(big))
		m.TransformFromByte(a, big, 19, 11, 4, "sRGB", "Linear")
		m.TransformFromByteThreaded(b, big, 19, 11, 4, "sRGB", "Linear")
		if !slices.Equal(a, b) {
			t.Error("threaded TransformFromByte differs")
		}
	})
}

func TestTransformV4(t *testing.T) {
	m := newTestManager(t)
	px := []float32{0.5, 0.5, 0.5, 0.25}
	m.TransformV4(px, "Linear", "sRGB")

	enc := color.LinearToSRGB(0.5)
	nearV(t, "px", px, []float32{enc, enc, enc, 0.25})
}

// =============================================================================
// Scene-linear helpers
// =============================================================================

func TestColorSpaceToSceneLinear(t *testing.T) {
	m := newTestManager(t)
	enc := color.LinearToSRGB(0.25)

	v3 := []float32{enc, enc, enc}
	m.ColorSpaceToSceneLinearV3(v3, "sRGB")
	nearV(t, "V3", v3, []float32{0.25, 0.25, 0.25})

	m.SceneLinearToColorSpaceV3(v3, "sRGB")
	nearV(t, "back", v3, []float32{enc, enc, enc})

	v4 := []float32{enc * 0.5, enc * 0.5, enc * 0.5, 0.5}
	m.ColorSpaceToSceneLinearV4(v4, true, "sRGB")
	nearV(t, "V4 predivide", v4, []float32{0.125, 0.125, 0.125, 0.5})

	buf := []float32{enc, enc, enc, enc, enc, enc}
	m.ColorSpaceToSceneLinear(buf, 2, 1, 3, "sRGB", false)
	nearV(t, "buffer", buf, []float32{0.25, 0.25, 0.25, 0.25, 0.25, 0.25})

	unknown := []float32{0.3, 0.3, 0.3}
	m.ColorSpaceToSceneLinearV3(unknown, "No Such Space")
	nearV(t, "unknown", unknown, []float32{0.3, 0.3, 0.3})
}

func TestSceneLinearToSRGB(t *testing.T) {
	m := newTestManager(t)
	in := []float32{0.5, 0.2, 0.05}
	out := make([]float32, 3)

	m.SceneLinearToSRGBV3(out, in)
	nearV(t, "encoded", out, []float32{color.LinearToSRGB(0.5), color.LinearToSRGB(0.2), color.LinearToSRGB(0.05)})

	back := make([]float32, 3)
	m.SRGBToSceneLinearV3(back, out)
	nearV(t, "decoded", back, in)
}

func TestColorPicking(t *testing.T) {
	m := newTestManager(t)
	in := []float32{0.5, 0.5, 0.5}
	out := make([]float32, 3)

	m.SceneLinearToColorPickingV3(out, in)
	enc := color.LinearToSRGB(0.5)
	nearV(t, "picking", out, []float32{enc, enc, enc})

	back := make([]float32, 3)
	m.ColorPickingToSceneLinearV3(back, out)
	nearV(t, "inverse", back, in)
}

func TestSceneLinearToDisplay(t *testing.T) {
	m := newTestManager(t)
	px := []float32{0.5, 0.5, 0.5}
	m.SceneLinearToDisplayV3(px, "sRGB")
	enc := color.LinearToSRGB(0.5)
	nearV(t, "display", px, []float32{enc, enc, enc})

	m.DisplayToSceneLinearV3(px, "sRGB")
	nearV(t, "linear", px, []float32{0.5, 0.5, 0.5})

	same := []float32{0.5, 0.5, 0.5}
	m.SceneLinearToDisplayV3(same, "No Such Display")
	nearV(t, "unknown display", same, []float32{0.5, 0.5, 0.5})
}

// =============================================================================
// Display space
// =============================================================================

func TestPixelToDisplaySpace(t *testing.T) {
	m := newTestManager(t)
	enc := color.LinearToSRGB(0.5)

	res := make([]float32, 3)
	m.PixelToDisplaySpaceV3(res, []float32{0.5, 0.5, 0.5}, nil, srgbDisplay)
	nearV(t, "V3", res, []float32{enc, enc, enc})

	bright := &ViewSettings{ViewTransform: "Standard", Look: "None", Exposure: 1, Gamma: 1}
	res4 := make([]float32, 4)
	m.PixelToDisplaySpaceV4(res4, []float32{0.25, 0.25, 0.25, 0.75}, bright, srgbDisplay)
	nearV(t, "V4 with exposure", res4, []float32{enc, enc, enc, 0.75})
}

func TestBufferMakeDisplaySpace(t *testing.T) {
	m := newTestManager(t)
	src := []float32{0.5, 0.5, 0.5, 1, 0, 0, 0, 0}
	orig := slices.Clone(src)
	dst := make([]byte, 8)

	m.BufferMakeDisplaySpace(src, dst, 2, 1, 4, 0, nil, srgbDisplay)

	if !slices.Equal(src, orig) {
		t.Error("source modified")
	}
	want := color.F32ToU8(color.LinearToSRGB(0.5))
	for c := range 3 {
		if d := int(dst[c]) - int(want); d < -1 || d > 1 {
			t.Errorf("dst[%d] = %d, want %d", c, dst[c], want)
		}
	}
	if dst[3] != 255 || dst[7] != 0 {
		t.Errorf("alpha = %d, %d; want 255, 0", dst[3], dst[7])
	}
}

func TestDisplayBufferTransformApply(t *testing.T) {
	m := newTestManager(t)
	linear := []float32{1, 0.5, 0}
	dst := make([]byte, 4)

	m.DisplayBufferTransformApply(dst, linear, 1, 1, 3, nil, srgbDisplay, false)
	if dst[0] != 255 || dst[2] != 0 || dst[3] != 255 {
		t.Errorf("dst = %v", dst)
	}
	if linear[1] != 0.5 {
		t.Error("source modified")
	}
}

func TestMakeDisplaySpace(t *testing.T) {
	m := newTestManager(t)

	t.Run("float", func(t *testing.T) {
		buf, _ := imbuf.NewFloat(2, 1, 4)
		copy(buf.Floats, []float32{0.5, 0.5, 0.5, 1, 0.5, 0.5, 0.5, 1})

		m.MakeDisplaySpace(buf, nil, srgbDisplay)

		enc := color.LinearToSRGB(0.5)
		nearV(t, "floats", buf.Floats, []float32{enc, enc, enc, 1, enc, enc, enc, 1})
		if buf.FloatSpace != "sRGB" {
			t.Errorf("FloatSpace = %q, want sRGB", buf.FloatSpace)
		}
		if !buf.DisplayInvalid() {
			t.Error("display buffers not invalidated")
		}
	})

	t.Run("byte already in display space", func(t *testing.T) {
		buf := newByteBuffer(t, 4, 4, 3, "sRGB")
		want := slices.Clone(buf.Bytes)

		m.MakeDisplaySpace(buf, nil, srgbDisplay)
		if !slices.Equal(buf.Bytes, want) {
			t.Error("noop display conversion changed the bytes")
		}
	})

	t.Run("byte with exposure", func(t *testing.T) {
		buf := newByteBuffer(t, 4, 4, 4, "sRGB")
		want := slices.Clone(buf.Bytes)

		m.MakeDisplaySpace(buf, &ViewSettings{ViewTransform: "Standard", Look: "None", Exposure: 1, Gamma: 1}, srgbDisplay)
		if slices.Equal(buf.Bytes, want) {
			t.Error("exposure had no effect")
		}
		for i := 3; i < len(buf.Bytes); i += 4 {
			if buf.Bytes[i] != 255 {
				t.Fatalf("alpha at %d = %d, want 255", i, buf.Bytes[i])
			}
		}
	})
}

func TestMakeLinear(t *testing.T) {
	m := newTestManager(t)
	buf, _ := imbuf.NewFloat(1, 1, 4)
	enc := color.LinearToSRGB(0.5)
	copy(buf.Floats, []float32{enc, enc, enc, 1})
	buf.Bytes = make([]byte, 4)
	buf.FloatSpace = "sRGB"

	m.MakeLinear(buf, "sRGB")

	nearV(t, "floats", buf.Floats, []float32{0.5, 0.5, 0.5, 1})
	if buf.Bytes != nil {
		t.Error("byte pixels kept")
	}
	if buf.FloatSpace != "" {
		t.Errorf("FloatSpace = %q, want scene linear", buf.FloatSpace)
	}
}

func BenchmarkTransformThreaded(b *testing.B) {
	m := New()
	defer m.Close()

	buf := make([]float32, 1024*1024*4)
	for i := range buf {
		buf[i] = float32(i%255) / 255
	}

	b.ResetTimer()
	for range b.N {
		m.TransformThreaded(buf, 1024, 1024, 4, "Linear", "sRGB", true)
		m.TransformThreaded(buf, 1024, 1024, 4, "sRGB", "Linear", true)
	}
}
