package codec

import (
	"math"

	"celp-codec/pkg/basicop"
	"celp-codec/pkg/lpc"
	"celp-codec/pkg/lsp"
)

const (
	// SID energy quantizer: 4 bits, 4 dB steps from -8 dB.
	sidEnergyBits = 4
	sidEnergyMin  = -8.0
	sidEnergyStep = 4.0

	cngSeed      int16 = 11111
	cngSmoothing       = 0.875
)

// quantizeEnergy maps a residual level in dB to its SID index.
func quantizeEnergy(db float64) int {
	idx := int(math.Floor((db-sidEnergyMin)/sidEnergyStep + 0.5))
	if idx < 0 {
		return 0
	}
	if idx >= 1<<sidEnergyBits {
		return 1<<sidEnergyBits - 1
	}
	return idx
}

func energyOf(idx int) float64 {
	return sidEnergyMin + float64(idx&(1<<sidEnergyBits-1))*sidEnergyStep
}

// comfortNoise holds the silence descriptor in use and generates the
// excitation that replaces coded speech. Encoder and decoder run identical
// copies so their histories stay aligned.
type comfortNoise struct {
	seed   int16
	gain   float64
	target float64
	lsf    [lpc.Order]float64
	active bool
}

func newComfortNoise() *comfortNoise {
	c := &comfortNoise{}
	c.reset()
	return c
}

func (c *comfortNoise) reset() {
	*c = comfortNoise{seed: cngSeed}
}

// update installs a new descriptor. The first one after speech takes
// effect immediately; later ones are approached smoothly.
func (c *comfortNoise) update(l1, l2, energy int) {
	c.lsf = lsp.DecodeSID(l1, l2)
	c.target = math.Pow(10, energyOf(energy)/20)
	if !c.active {
		c.gain = c.target
		c.active = true
	}
}

// hold installs lsf at the lowest level when no descriptor was received.
func (c *comfortNoise) hold(lsf [lpc.Order]float64) {
	c.lsf = lsf
	c.target = math.Pow(10, sidEnergyMin/20)
	if !c.active {
		c.gain = c.target
		c.active = true
	}
}

// stop marks the end of a non-speech period.
func (c *comfortNoise) stop() {
	c.active = false
}

// excitation fills out with scaled Gaussian noise.
func (c *comfortNoise) excitation(out []float64) {
	c.gain = cngSmoothing*c.gain + (1-cngSmoothing)*c.target
	for i := range out {
		out[i] = c.gain * basicop.Gauss(&c.seed)
	}
}
