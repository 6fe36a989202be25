package builtin

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// transfer is an encoding curve applied per channel to linear values.
// Linear transfer has nil functions.
type transfer struct {
	name       string
	encode     func(v float32) float32
	decode     func(v float32) float32
	invertible bool
}

func (t *transfer) isLinear() bool { return t.encode == nil }

func (t *transfer) encodeRGB(p *[3]float32) {
	if t.encode == nil {
		return
	}
	p[0], p[1], p[2] = t.encode(p[0]), t.encode(p[1]), t.encode(p[2])
}

func (t *transfer) decodeRGB(p *[3]float32) {
	if t.decode == nil {
		return
	}
	p[0], p[1], p[2] = t.decode(p[0]), t.decode(p[1]), t.decode(p[2])
}

func srgbEncode(v float32) float32 {
	return float32(colorful.LinearRgb(float64(v), 0, 0).R)
}

func srgbDecode(v float32) float32 {
	r, _, _ := colorful.Color{R: float64(v)}.LinearRgb()
	return float32(r)
}

func gammaTransfer(name string, g float64) *transfer {
	return &transfer{
		name: name,
		encode: func(v float32) float32 {
			return signedPow(v, 1/g)
		},
		decode: func(v float32) float32 {
			return signedPow(v, g)
		},
		invertible: true,
	}
}

func signedPow(v float32, e float64) float32 {
	if v < 0 {
		return -float32(math.Pow(float64(-v), e))
	}
	return float32(math.Pow(float64(v), e))
}

// Log encoding covers logMinStops..logMinStops+logRangeStops around 0.18.
const (
	logMinStops   = -10.0
	logRangeStops = 16.5
	logMidGray    = 0.18
	logFloor      = 1e-10
)

func logEncode(v float32) float32 {
	x := math.Max(float64(v), logFloor)
	return float32((math.Log2(x/logMidGray) - logMinStops) / logRangeStops)
}

func logDecode(v float32) float32 {
	return float32(logMidGray * math.Exp2(float64(v)*logRangeStops+logMinStops))
}

// filmicEncode compresses scene values with x/(1+x) before sRGB encoding.
func filmicEncode(v float32) float32 {
	x := max(v, 0)
	return srgbEncode(x / (1 + x))
}

func filmicDecode(v float32) float32 {
	y := min(max(srgbDecode(v), 0), 0.9999)
	return y / (1 - y)
}

var transfers = map[string]*transfer{
	"linear":  {name: "linear", invertible: true},
	"srgb":    {name: "srgb", encode: srgbEncode, decode: srgbDecode, invertible: true},
	"gamma18": gammaTransfer("gamma18", 1.8),
	"gamma22": gammaTransfer("gamma22", 2.2),
	"gamma24": gammaTransfer("gamma24", 2.4),
	"log":     {name: "log", encode: logEncode, decode: logDecode, invertible: true},
	"filmic":  {name: "filmic", encode: filmicEncode, decode: filmicDecode, invertible: false},
}
