// Package dsp holds the float64 filter kernels shared by the encoder, the
// decoder and the post-filter.
//
// Products are always rounded with an explicit float64 conversion before they
// are accumulated. The conversion stops the compiler from fusing the multiply
// and the add, so every platform produces the same bits.
package dsp

// Order is the linear prediction order.
const Order = 10

const maxFilterLen = 160

// Mac returns acc + a*b without fused multiply-add.
func Mac(acc, a, b float64) float64 {
	return acc + float64(a*b)
}

// Msu returns acc - a*b without fused multiply-add.
func Msu(acc, a, b float64) float64 {
	return acc - float64(a*b)
}

// Dot returns the inner product of the first n samples of x and y.
func Dot(x, y []float64, n int) float64 {
	var s float64
	for i := 0; i < n; i++ {
		s = Mac(s, x[i], y[i])
	}
	return s
}

// Energy returns the sum of squares of the first n samples of x.
func Energy(x []float64, n int) float64 {
	return Dot(x, x, n)
}

// Convolve computes y[n] = sum_{i<=n} x[i]*h[n-i] for n < l.
func Convolve(x, h, y []float64, l int) {
	for n := 0; n < l; n++ {
		var s float64
		for i := 0; i <= n; i++ {
			s = Mac(s, x[i], h[n-i])
		}
		y[n] = s
	}
}

// Residu filters x through A(z). x[off-Order:off] must hold the filter
// history.
func Residu(a []float64, x []float64, off int, y []float64, l int) {
	for i := 0; i < l; i++ {
		s := x[off+i]
		for j := 1; j <= Order; j++ {
			s = Mac(s, a[j], x[off+i-j])
		}
		y[i] = s
	}
}

// SynFilt filters x through 1/A(z) using mem as the last Order outputs. When
// update is set mem receives the last Order outputs. x and y may alias.
func SynFilt(a []float64, x, y []float64, l int, mem []float64, update bool) {
	var tmp [Order + maxFilterLen]float64
	copy(tmp[:Order], mem[:Order])
	for i := 0; i < l; i++ {
		s := x[i]
		for j := 1; j <= Order; j++ {
			s = Msu(s, a[j], tmp[Order+i-j])
		}
		tmp[Order+i] = s
		y[i] = s
	}
	if update {
		copy(mem[:Order], tmp[l:l+Order])
	}
}

// WeightAz computes ap[i] = a[i]*gamma^i.
func WeightAz(a []float64, gamma float64, ap []float64) {
	ap[0] = a[0]
	fac := gamma
	for i := 1; i <= Order; i++ {
		ap[i] = float64(a[i] * fac)
		fac = float64(fac * gamma)
	}
}

// Biquad is a direct form I second order IIR section.
type Biquad struct {
	B, A   [3]float64
	x1, x2 float64
	y1, y2 float64
}

// NewBiquad returns a filter with numerator b and denominator a. a[0] is
// assumed to be 1 and the remaining taps are used with positive sign.
func NewBiquad(b, a [3]float64) *Biquad {
	return &Biquad{B: b, A: a}
}

// Process filters s in place.
func (f *Biquad) Process(s []float64) {
	for i := range s {
		x0 := s[i]
		y0 := float64(f.y1 * f.A[1])
		y0 = Mac(y0, f.y2, f.A[2])
		y0 = Mac(y0, x0, f.B[0])
		y0 = Mac(y0, f.x1, f.B[1])
		y0 = Mac(y0, f.x2, f.B[2])
		f.x2, f.x1 = f.x1, x0
		f.y2, f.y1 = f.y1, y0
		s[i] = y0
	}
}

// Reset clears the filter memory.
func (f *Biquad) Reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}
