package color

import "golang.org/x/image/math/f32"

// MulMat3 multiplies the row-major matrix m with the first three components
// of p in place.
func MulMat3(m *f32.Mat3, p []float32) {
	r, g, b := p[0], p[1], p[2]
	p[0] = m[0]*r + m[1]*g + m[2]*b
	p[1] = m[3]*r + m[4]*g + m[5]*b
	p[2] = m[6]*r + m[7]*g + m[8]*b
}

// MulMat3Mat3 returns a*b.
func MulMat3Mat3(a, b f32.Mat3) f32.Mat3 {
	var out f32.Mat3
	for r := range 3 {
		for c := range 3 {
			out[r*3+c] = a[r*3]*b[c] + a[r*3+1]*b[3+c] + a[r*3+2]*b[6+c]
		}
	}
	return out
}

// InvertMat3 returns the inverse of m computed in float64.
// The second result is false when m is singular.
func InvertMat3(m f32.Mat3) (f32.Mat3, bool) {
	var a [9]float64
	for i, v := range m {
		a[i] = float64(v)
	}

	c00 := a[4]*a[8] - a[5]*a[7]
	c01 := a[5]*a[6] - a[3]*a[8]
	c02 := a[3]*a[7] - a[4]*a[6]

	det := a[0]*c00 + a[1]*c01 + a[2]*c02
	if det == 0 {
		return f32.Mat3{}, false
	}
	inv := 1 / det

	return f32.Mat3{
		float32(c00 * inv),
		float32((a[2]*a[7] - a[1]*a[8]) * inv),
		float32((a[1]*a[5] - a[2]*a[4]) * inv),
		float32(c01 * inv),
		float32((a[0]*a[8] - a[2]*a[6]) * inv),
		float32((a[2]*a[3] - a[0]*a[5]) * inv),
		float32(c02 * inv),
		float32((a[1]*a[6] - a[0]*a[7]) * inv),
		float32((a[0]*a[4] - a[1]*a[3]) * inv),
	}, true
}

// Identity3 is the 3x3 identity matrix.
var Identity3 = f32.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
