package codec

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"celp-codec/pkg/acelp"
	"celp-codec/pkg/basicop"
	"celp-codec/pkg/bitstream"
	"celp-codec/pkg/dsp"
	"celp-codec/pkg/gain"
	"celp-codec/pkg/lpc"
	"celp-codec/pkg/lsp"
	"celp-codec/pkg/metrics"
	"celp-codec/pkg/pitch"
	"celp-codec/pkg/postfilter"
)

const (
	// Concealment state at reset.
	initialLag        = 60
	erasureSeed int16 = 21845
)

// Decoder turns parameter frames back into PCM. Lost and damaged frames
// are concealed; decoding a frame never fails once the frame is present or
// flagged as erased.
type Decoder struct {
	opts    Options
	variant Variant
	log     *logrus.Entry

	lspD  *lsp.Dequantizer
	gainD *gain.Dequantizer
	post  *postfilter.PostFilter
	hp    *postfilter.HighPass
	cng   *comfortNoise

	oldExc [excOff + FrameSize]float64
	memSyn [order]float64
	lspOld [order]float64
	sharp  float64
	oldLag int
	seed   int16

	lags [2]int
	rx   bitstream.RxType
}

// NewDecoder returns a decoder in its initial state.
func NewDecoder(opts ...Option) (*Decoder, error) {
	o, v, entry, err := resolve("decoder", opts)
	if err != nil {
		return nil, err
	}
	d := &Decoder{
		opts:    o,
		variant: v,
		log:     entry,
		lspD:    lsp.NewDequantizer(),
		gainD:   gain.NewDequantizer(),
		post:    postfilter.New(),
		hp:      postfilter.NewPostProcess(),
		cng:     newComfortNoise(),
	}
	d.Reset()

	if metrics.IsMetricsEnabled() {
		metrics.RecordSession("decoder", v.Name)
	}
	d.log.WithField("postfilter", o.PostFilter).Debug("decoder created")
	return d, nil
}

// Reset restores the initial state.
func (d *Decoder) Reset() {
	d.lspD.Reset()
	d.gainD.Reset()
	d.post.Reset()
	d.hp.Reset()
	d.cng.reset()

	d.oldExc = [excOff + FrameSize]float64{}
	d.memSyn = [order]float64{}
	d.lspOld = lpc.InitialLSP
	d.sharp = sharpMin
	d.oldLag = initialLag
	d.seed = erasureSeed
	d.lags = [2]int{}
	d.rx = bitstream.SpeechGood
}

// Variant returns the packet layout of the session.
func (d *Decoder) Variant() Variant {
	return d.variant
}

// LastLags returns the integer lags used for both subframes of the last
// frame.
func (d *Decoder) LastLags() [2]int {
	return d.lags
}

// LastRxType returns the classification of the last decoded frame.
func (d *Decoder) LastRxType() bitstream.RxType {
	return d.rx
}

// DecodeFrame reconstructs FrameSize samples from f. When erased is set, f
// is ignored and may be nil.
func (d *Decoder) DecodeFrame(f *bitstream.Frame, erased bool) ([]int16, error) {
	if f == nil && !erased {
		return nil, fmt.Errorf("%w: nil frame", ErrInvalidFrame)
	}

	rx := bitstream.Classify(f, erased, d.rx)

	var (
		syn [FrameSize]float64
		aq  [2]lpc.Coeffs
	)
	switch rx {
	case bitstream.SpeechGood, bitstream.SpeechBad:
		prm, err := d.speechParams(f, rx)
		if err != nil {
			rx = bitstream.SpeechBad
		}
		aq = d.decodeSpeech(prm, rx == bitstream.SpeechBad, syn[:])
	default:
		aq = d.decodeSilence(f, rx, syn[:])
	}
	if rx != d.rx {
		d.log.WithFields(logrus.Fields{"from": d.rx, "to": rx}).Debug("receive type change")
	}
	d.rx = rx

	out := syn
	if d.opts.PostFilter {
		d.post.Process(syn[:], aq, d.lags, out[:])
	}
	d.hp.Process(out[:])

	pcm := make([]int16, FrameSize)
	for i, v := range out {
		pcm[i] = toPCM(v)
	}
	copy(d.oldExc[:], d.oldExc[FrameSize:])

	if metrics.IsMetricsEnabled() {
		metrics.RecordFrameDecoded(d.variant.Name, rx.String())
	}
	return pcm, nil
}

func (d *Decoder) speechParams(f *bitstream.Frame, rx bitstream.RxType) ([]int, error) {
	if rx == bitstream.SpeechBad {
		return make([]int, len(bitstream.SpeechLayout)), nil
	}
	prm, err := f.Params()
	if err != nil {
		return make([]int, len(bitstream.SpeechLayout)), err
	}
	return prm, nil
}

func (d *Decoder) decodeSpeech(prm []int, bfi bool, syn []float64) [2]lpc.Coeffs {
	d.cng.stop()
	if bfi {
		d.log.Debug("concealing erased frame")
		if metrics.IsMetricsEnabled() {
			metrics.RecordConcealment(d.variant.Name, "erasure")
		}
	}

	lspNew := d.lspD.Dequantize(lsp.Indices{prm[0], prm[1]}, bfi)
	aq := lpc.Interpolate(d.lspOld, lspNew)
	d.lspOld = lspNew

	exc := d.oldExc[:]
	p := 2
	var r pitch.Range
	for sf := 0; sf < 2; sf++ {
		off := excOff + sf*SubframeSize
		first := sf == 0

		index := prm[p]
		p++
		badLag := bfi
		if first {
			if !pitch.CheckParity(index, prm[p]) && !bfi {
				badLag = true
				d.log.Debug("pitch parity error")
				if metrics.IsMetricsEnabled() {
					metrics.RecordConcealment(d.variant.Name, "parity")
				}
			}
			p++
		}

		var lag, frac int
		if badLag {
			lag = d.oldLag
			d.oldLag = min(d.oldLag+1, pitch.PitMax)
		} else {
			lag, frac = pitch.DecodeLag(index, first, r)
			d.oldLag = lag
		}
		if first {
			r = pitch.SecondRange(lag)
		}
		d.lags[sf] = lag

		pitch.PredLT3(exc, off, lag, frac, SubframeSize)

		codeIndex, signs := prm[p], prm[p+1]
		p += 2
		if bfi {
			codeIndex = int(basicop.Random(&d.seed)) & (1<<acelp.IndexBits - 1)
			signs = int(basicop.Random(&d.seed)) & (1<<acelp.SignBits - 1)
		}
		code := acelp.Decode(codeIndex, signs)
		acelp.Sharpen(&code, lag, d.sharp)

		gp, gc := d.gainD.Decode(prm[p], code[:], bfi)
		p++

		d.sharp = clampSharp(gp)
		for i := 0; i < SubframeSize; i++ {
			exc[off+i] = dsp.Mac(float64(gp*exc[off+i]), gc, code[i])
		}
		d.synthesize(aq[sf], off, syn[sf*SubframeSize:(sf+1)*SubframeSize])
	}
	return aq
}

// decodeSilence generates comfort noise from the current descriptor,
// installing a new one when the frame carries it.
func (d *Decoder) decodeSilence(f *bitstream.Frame, rx bitstream.RxType, syn []float64) [2]lpc.Coeffs {
	if rx == bitstream.RxSIDFirst || rx == bitstream.RxSIDUpdate {
		if prm, err := f.Params(); err == nil {
			d.cng.update(prm[0], prm[1], prm[2])
		}
	}
	if !d.cng.active {
		d.cng.hold(lpc.LSPToLSF(d.lspOld))
	}

	lspNew := lpc.LSFToLSP(d.cng.lsf)
	aq := lpc.Interpolate(d.lspOld, lspNew)
	d.lspOld = lspNew
	d.lspD.Memory().PushLSF(d.cng.lsf, 0)
	d.lspD.Hold(d.cng.lsf)
	d.gainD.Predictor().Reset()
	d.sharp = sharpMin

	for sf := 0; sf < 2; sf++ {
		off := excOff + sf*SubframeSize
		d.cng.excitation(d.oldExc[off : off+SubframeSize])
		d.synthesize(aq[sf], off, syn[sf*SubframeSize:(sf+1)*SubframeSize])
		d.lags[sf] = d.oldLag
	}
	return aq
}

// synthesize filters the excitation at off through 1/A(z). When the output
// overflows the excitation history is scaled down by 4 and the subframe is
// filtered again.
func (d *Decoder) synthesize(a lpc.Coeffs, off int, out []float64) {
	mem := d.memSyn
	dsp.SynFilt(a[:], d.oldExc[off:], out, SubframeSize, mem[:], false)
	if overflows(out) {
		d.log.Debug("synthesis overflow, rescaling excitation")
		if metrics.IsMetricsEnabled() {
			metrics.RecordOverflowRescale(d.variant.Name)
		}
		for i := 0; i < off+SubframeSize; i++ {
			v := d.oldExc[i] * 0.25
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			d.oldExc[i] = v
		}
		dsp.SynFilt(a[:], d.oldExc[off:], out, SubframeSize, mem[:], false)
		for i, v := range out {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				out[i] = 0
			}
		}
	}
	copy(d.memSyn[:], out[SubframeSize-order:])
}

func overflows(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.Abs(v) > overflowLimit {
			return true
		}
	}
	return false
}
