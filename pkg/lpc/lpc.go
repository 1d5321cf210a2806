// Package lpc implements the linear prediction analysis of the codec: the
// windowed autocorrelation, Levinson-Durbin recursion and the conversions
// between predictor coefficients and line spectral pairs.
package lpc

import (
	"math"

	"celp-codec/pkg/dsp"
)

const (
	// Order is the prediction order M.
	Order = dsp.Order
	// NC is half the prediction order.
	NC = Order / 2
	// WindowSize is the analysis window length in samples.
	WindowSize = 240
	// GridPoints is the resolution of the LSP root search.
	GridPoints = 50

	maxReflection = 0.99945
)

// Coeffs holds A(z) = 1 + a[1]z^-1 + ... + a[M]z^-M.
type Coeffs [Order + 1]float64

// InitialLSP is the cosine domain LSP vector every session starts from.
var InitialLSP = [Order]float64{
	0.9595, 0.8413, 0.6549, 0.4154, 0.1423, -0.1423, -0.4154, -0.6549, -0.8413, -0.9595,
}

// Analyzer runs the per frame LP analysis. It keeps the last stable filter
// so that an unstable recursion is replaced rather than propagated.
type Analyzer struct {
	oldA  Coeffs
	oldRC [Order]float64
}

// NewAnalyzer returns an analyzer whose fallback filter is A(z) = 1.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{}
	a.Reset()
	return a
}

// Reset restores the fallback filter.
func (an *Analyzer) Reset() {
	an.oldA = Coeffs{1}
	an.oldRC = [Order]float64{}
}

// Analyze windows x (WindowSize samples), computes the lag windowed
// autocorrelation and returns the predictor, the reflection coefficients
// and the final prediction error.
func (an *Analyzer) Analyze(x []float64) (Coeffs, [Order]float64, float64) {
	r := Autocorr(x)
	LagWindow(&r)
	return an.Levinson(&r)
}

// Autocorr returns r[0..M] of the windowed signal. r[0] is floored at 1.
func Autocorr(x []float64) [Order + 1]float64 {
	var y [WindowSize]float64
	for i := 0; i < WindowSize; i++ {
		y[i] = float64(x[i] * hamWindow[i])
	}
	var r [Order + 1]float64
	for i := 0; i <= Order; i++ {
		r[i] = dsp.Dot(y[:], y[i:], WindowSize-i)
	}
	if r[0] < 1.0 {
		r[0] = 1.0
	}
	return r
}

// LagWindow applies white noise correction and the lag window in place.
func LagWindow(r *[Order + 1]float64) {
	for i := 0; i <= Order; i++ {
		r[i] = float64(r[i] * lagWindow[i])
	}
}

// Levinson solves the normal equations. If a reflection coefficient leaves
// the unit circle the previous stable solution is returned instead.
func (an *Analyzer) Levinson(r *[Order + 1]float64) (Coeffs, [Order]float64, float64) {
	var a Coeffs
	var rc [Order]float64

	a[0] = 1
	rc[0] = -r[1] / r[0]
	if math.Abs(rc[0]) >= maxReflection || math.IsNaN(rc[0]) {
		return an.oldA, an.oldRC, r[0]
	}
	a[1] = rc[0]
	perr := dsp.Mac(r[0], r[1], rc[0])

	for i := 2; i <= Order; i++ {
		var s float64
		for j := 0; j < i; j++ {
			s = dsp.Mac(s, r[i-j], a[j])
		}
		k := -s / perr
		if math.Abs(k) >= maxReflection || math.IsNaN(k) {
			return an.oldA, an.oldRC, perr
		}
		rc[i-1] = k
		for j := 1; j <= i/2; j++ {
			l := i - j
			at := dsp.Mac(a[j], k, a[l])
			a[l] = dsp.Mac(a[l], k, a[j])
			a[j] = at
		}
		a[i] = k
		perr = dsp.Mac(perr, k, s)
		if perr <= 0 {
			perr = 0.001
		}
	}

	an.oldA = a
	an.oldRC = rc
	return a, rc, perr
}

// chebyshev evaluates the Chebyshev series of f at x.
func chebyshev(x float64, f []float64) float64 {
	x2 := 2 * x
	b2 := 1.0
	b1 := x2 + f[1]
	for i := 2; i < NC; i++ {
		b0 := dsp.Mac(f[i]-b2, x2, b1)
		b2 = b1
		b1 = b0
	}
	return dsp.Mac(dsp.Mac(-b2, x, b1), 0.5, f[NC])
}

// AzToLSP finds the roots of the symmetric and antisymmetric polynomials of
// A(z) on the cosine grid. If fewer than M roots are found oldLSP is
// returned.
func AzToLSP(a Coeffs, oldLSP [Order]float64) [Order]float64 {
	var f1, f2 [NC + 1]float64
	f1[0], f2[0] = 1, 1
	for i := 0; i < NC; i++ {
		f1[i+1] = a[i+1] + a[Order-i] - f1[i]
		f2[i+1] = a[i+1] - a[Order-i] + f2[i]
	}

	var lsp [Order]float64
	nf := 0
	coef := f1[:]
	odd := false

	xlow := grid[0]
	ylow := chebyshev(xlow, coef)
	for j := 0; nf < Order && j < GridPoints; {
		j++
		xhigh, yhigh := xlow, ylow
		xlow = grid[j]
		ylow = chebyshev(xlow, coef)
		if !(float64(ylow*yhigh) <= 0) {
			continue
		}

		for i := 0; i < 2; i++ {
			xmid := 0.5 * (xlow + xhigh)
			ymid := chebyshev(xmid, coef)
			if float64(ylow*ymid) <= 0 {
				yhigh, xhigh = ymid, xmid
			} else {
				ylow, xlow = ymid, xmid
			}
		}

		x := xlow
		if yhigh != ylow {
			x = xlow - ylow*(xhigh-xlow)/(yhigh-ylow)
		}
		lsp[nf] = x
		nf++

		odd = !odd
		if odd {
			coef = f2[:]
		} else {
			coef = f1[:]
		}
		xlow = x
		ylow = chebyshev(xlow, coef)
	}

	if nf < Order {
		return oldLSP
	}
	return lsp
}

func lspPoly(lsp []float64, f *[NC + 1]float64) {
	f[0] = 1
	f[1] = -2 * lsp[0]
	for i := 2; i <= NC; i++ {
		b := -2 * lsp[2*i-2]
		f[i] = dsp.Mac(2*f[i-2], b, f[i-1])
		for j := i - 1; j > 1; j-- {
			f[j] = dsp.Mac(f[j]+f[j-2], b, f[j-1])
		}
		f[1] += b
	}
}

// LSPToAz converts a cosine domain LSP vector into predictor coefficients.
func LSPToAz(lsp [Order]float64) Coeffs {
	var f1, f2 [NC + 1]float64
	lspPoly(lsp[0:], &f1)
	lspPoly(lsp[1:], &f2)

	for i := NC; i > 0; i-- {
		f1[i] += f1[i-1]
		f2[i] -= f2[i-1]
	}

	var a Coeffs
	a[0] = 1
	for i, j := 1, Order; i <= NC; i, j = i+1, j-1 {
		a[i] = 0.5 * (f1[i] + f2[i])
		a[j] = 0.5 * (f1[i] - f2[i])
	}
	return a
}

// Interpolate returns the predictors of both subframes: the first uses the
// midpoint of old and new LSP vectors, the second the new vector.
func Interpolate(oldLSP, newLSP [Order]float64) [2]Coeffs {
	var mid [Order]float64
	for i := range mid {
		mid[i] = 0.5*oldLSP[i] + 0.5*newLSP[i]
	}
	return [2]Coeffs{LSPToAz(mid), LSPToAz(newLSP)}
}

// LSPToLSF maps cosine domain values to frequencies in radians.
func LSPToLSF(lsp [Order]float64) [Order]float64 {
	var lsf [Order]float64
	for i, v := range lsp {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		lsf[i] = math.Acos(v)
	}
	return lsf
}

// LSFToLSP maps frequencies in radians to the cosine domain.
func LSFToLSP(lsf [Order]float64) [Order]float64 {
	var lsp [Order]float64
	for i, v := range lsf {
		lsp[i] = math.Cos(v)
	}
	return lsp
}
