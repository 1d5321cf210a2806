package gain

import "celp-codec/pkg/dsp"

const (
	// GPClip caps the pitch gain while taming is active.
	GPClip = 0.95
	// ThreshErr is the accumulated error level that activates taming.
	ThreshErr = 60000.0

	zones      = 4
	zoneLen    = 40
	interpHalf = 10
)

// Taming tracks an estimate of how much the excitation error can grow
// through the adaptive codebook loop. The lag range is split into four
// zones of 40 samples; each holds the worst error of a subframe whose
// excitation is read back by lags falling in that zone.
type Taming struct {
	err [zones]float64
}

// NewTaming returns a tracker with every zone at 1.
func NewTaming() *Taming {
	t := &Taming{}
	t.Reset()
	return t
}

// Reset sets every zone to 1.
func (t *Taming) Reset() {
	for i := range t.err {
		t.err[i] = 1
	}
}

// Test reports whether the zones read by a lag of lag + frac/3 carry an
// error above ThreshErr, in which case the pitch gain must be limited.
func (t *Taming) Test(lag, frac int) bool {
	t1 := lag
	if frac > 0 {
		t1++
	}
	i := t1 - (zoneLen + interpHalf)
	if i < 0 {
		i = 0
	}
	zone1 := zone(i)
	zone2 := zone(t1 + interpHalf - 2)

	worst := -1.0
	for i := zone2; i >= zone1; i-- {
		if t.err[i] > worst {
			worst = t.err[i]
		}
	}
	return worst > ThreshErr
}

// Update records the error growth of a subframe coded with pitch gain gp
// and integer lag lag.
func (t *Taming) Update(gp float64, lag int) {
	worst := -1.0
	if n := lag - zoneLen; n < 0 {
		tmp := dsp.Mac(1, gp, t.err[0])
		if tmp > worst {
			worst = tmp
		}
		tmp = dsp.Mac(1, gp, tmp)
		if tmp > worst {
			worst = tmp
		}
	} else {
		for i := zone(n); i <= zone(lag-1); i++ {
			if tmp := dsp.Mac(1, gp, t.err[i]); tmp > worst {
				worst = tmp
			}
		}
	}

	for i := zones - 1; i > 0; i-- {
		t.err[i] = t.err[i-1]
	}
	t.err[0] = worst
}

// Worst returns the largest tracked error.
func (t *Taming) Worst() float64 {
	worst := t.err[0]
	for _, e := range t.err[1:] {
		if e > worst {
			worst = e
		}
	}
	return worst
}

func zone(i int) int {
	z := i / zoneLen
	if z >= zones {
		z = zones - 1
	}
	return z
}
