package codec

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"celp-codec/pkg/acelp"
	"celp-codec/pkg/bitstream"
	"celp-codec/pkg/dsp"
	"celp-codec/pkg/gain"
	"celp-codec/pkg/lpc"
	"celp-codec/pkg/lsp"
	"celp-codec/pkg/metrics"
	"celp-codec/pkg/pitch"
	"celp-codec/pkg/postfilter"
)

// Encoder turns PCM frames into parameter frames. Its output is a pure
// function of the input and the session state.
type Encoder struct {
	opts    Options
	variant Variant
	log     *logrus.Entry

	pre      *postfilter.HighPass
	analyzer *lpc.Analyzer
	lspQ     *lsp.Quantizer
	openLoop *pitch.OpenLoop
	gainQ    *gain.Quantizer
	taming   *gain.Taming
	vad      *vad
	cng      *comfortNoise
	tx       bitstream.TxState

	oldSpeech [speechBuf]float64
	oldWsp    [wspOff + FrameSize]float64
	oldExc    [excOff + FrameSize]float64
	lspOld    [order]float64
	lspOldQ   [order]float64
	memW      [order]float64
	memW0     [order]float64
	sharp     float64

	prevLag int
	lags    [2]int
	tamed   bool
	last    bitstream.FrameType
}

// NewEncoder returns an encoder in its initial state.
func NewEncoder(opts ...Option) (*Encoder, error) {
	o, v, entry, err := resolve("encoder", opts)
	if err != nil {
		return nil, err
	}
	e := &Encoder{
		opts:     o,
		variant:  v,
		log:      entry,
		pre:      postfilter.NewPreProcess(),
		analyzer: lpc.NewAnalyzer(),
		lspQ:     lsp.NewQuantizer(),
		openLoop: pitch.NewOpenLoop(),
		gainQ:    gain.NewQuantizer(),
		taming:   gain.NewTaming(),
		vad:      newVAD(o.VADThresholdDB),
		cng:      newComfortNoise(),
	}
	e.Reset()

	if metrics.IsMetricsEnabled() {
		metrics.RecordSession("encoder", v.Name)
	}
	e.log.WithField("dtx", o.DTX).Debug("encoder created")
	return e, nil
}

// Reset restores the initial state.
func (e *Encoder) Reset() {
	e.pre.Reset()
	e.analyzer.Reset()
	e.lspQ.Reset()
	e.openLoop.Reset()
	e.gainQ.Reset()
	e.taming.Reset()
	e.vad.reset()
	e.cng.reset()
	e.tx = bitstream.NewTxState()

	e.oldSpeech = [speechBuf]float64{}
	e.oldWsp = [wspOff + FrameSize]float64{}
	e.oldExc = [excOff + FrameSize]float64{}
	e.lspOld = lpc.InitialLSP
	e.lspOldQ = lpc.InitialLSP
	e.memW = [order]float64{}
	e.memW0 = [order]float64{}
	e.sharp = sharpMin

	e.prevLag = 0
	e.lags = [2]int{}
	e.tamed = false
	e.last = bitstream.Speech
}

// Variant returns the packet layout of the session.
func (e *Encoder) Variant() Variant {
	return e.variant
}

// LastLags returns the integer lags of both subframes of the last speech
// frame.
func (e *Encoder) LastLags() [2]int {
	return e.lags
}

// TamingActive reports whether the pitch gain was limited in the last
// frame.
func (e *Encoder) TamingActive() bool {
	return e.tamed
}

// RequestSIDUpdates schedules n silence descriptors beyond the regular
// update period, for a receiver that may have lost its comfort noise
// parameters. They go out during the current or next non-speech period as
// soon as the update counter allows. Without DTX it does nothing.
func (e *Encoder) RequestSIDUpdates(n int) {
	if !e.opts.DTX || n <= 0 {
		return
	}
	e.tx.SetHandoverDebt(e.tx.HandoverDebt + n)
	e.log.WithField("updates", e.tx.HandoverDebt).Debug("extra SID updates scheduled")
}

// LastFrameType returns the type of the last encoded frame.
func (e *Encoder) LastFrameType() bitstream.FrameType {
	return e.last
}

// EncodeFrame codes FrameSize samples.
func (e *Encoder) EncodeFrame(pcm []int16) (*bitstream.Frame, error) {
	return e.encodeFrame(pcm, false, false)
}

// encodeFrame codes one frame. forceSilent keeps a non-speech period going
// regardless of the detector and deferSID sends no descriptor in this
// frame; the packet layer uses both to keep a payload in transmit order.
func (e *Encoder) encodeFrame(pcm []int16, forceSilent, deferSID bool) (*bitstream.Frame, error) {
	if len(pcm) != FrameSize {
		e.log.WithField("samples", len(pcm)).Warn("rejected frame")
		return nil, fmt.Errorf("%w: got %d samples, want %d", ErrInvalidFrameLength, len(pcm), FrameSize)
	}

	in := e.oldSpeech[newSamples:]
	for i, s := range pcm {
		in[i] = float64(s)
	}
	e.pre.Process(in)

	speech := e.oldSpeech[speechOff : speechOff+FrameSize]
	a, _, _ := e.analyzer.Analyze(e.oldSpeech[:])
	lspNew := lpc.AzToLSP(a, e.lspOld)

	silent := false
	if e.opts.DTX {
		silent = e.vad.silent(e.vad.detect(speech)) || forceSilent
	}

	var (
		f   *bitstream.Frame
		err error
	)
	if silent {
		f, err = e.encodeSilence(lspNew, deferSID)
	} else {
		f, err = e.encodeSpeech(lspNew)
	}
	if err != nil {
		return nil, err
	}
	e.lspOld = lspNew

	if f.Type != e.last {
		e.log.WithFields(logrus.Fields{"from": e.last, "to": f.Type}).Debug("frame type change")
	}
	e.last = f.Type

	copy(e.oldSpeech[:], e.oldSpeech[FrameSize:])
	copy(e.oldWsp[:], e.oldWsp[FrameSize:])
	copy(e.oldExc[:], e.oldExc[FrameSize:])

	if metrics.IsMetricsEnabled() {
		metrics.RecordFrameEncoded(e.variant.Name, f.Type.String())
	}
	return f, nil
}

// weightedSpeech writes the LP residual of the frame into the excitation
// buffer and the perceptually weighted speech after it.
func (e *Encoder) weightedSpeech(aq [2]lpc.Coeffs) {
	for sf := 0; sf < 2; sf++ {
		off := sf * SubframeSize
		var ap, ap1 [order + 1]float64
		dsp.WeightAz(aq[sf][:], gamma1, ap[:])
		ap1[0] = 1
		for i := 1; i <= order; i++ {
			ap1[i] = dsp.Msu(ap[i], tilt, ap[i-1])
		}
		dsp.Residu(aq[sf][:], e.oldSpeech[:], speechOff+off, e.oldExc[excOff+off:], SubframeSize)
		dsp.SynFilt(ap1[:], e.oldExc[excOff+off:], e.oldWsp[wspOff+off:], SubframeSize, e.memW[:], true)
	}
}

func (e *Encoder) encodeSpeech(lspNew [order]float64) (*bitstream.Frame, error) {
	_, e.tx = bitstream.NextTx(e.tx, false)
	e.cng.stop()

	idx, lspQ := e.lspQ.Quantize(lspNew)
	aq := lpc.Interpolate(e.lspOldQ, lspQ)
	e.lspOldQ = lspQ

	prm := make([]int, 0, len(bitstream.SpeechLayout))
	prm = append(prm, idx[0], idx[1])

	e.weightedSpeech(aq)
	r := pitch.FirstRange(e.openLoop.Search(e.oldWsp[:], wspOff))

	exc := e.oldExc[:]
	e.tamed = false
	for sf := 0; sf < 2; sf++ {
		off := excOff + sf*SubframeSize
		first := sf == 0

		var ap [order + 1]float64
		dsp.WeightAz(aq[sf][:], gamma1, ap[:])

		// impulse response of the weighted synthesis filter
		var h, zero [SubframeSize]float64
		h[0] = 1
		dsp.SynFilt(ap[:], h[:], h[:], SubframeSize, zero[:order], false)

		var xn [SubframeSize]float64
		dsp.SynFilt(ap[:], exc[off:], xn[:], SubframeSize, e.memW0[:], false)

		lag, frac := pitch.ClosedLoop(exc, off, xn[:], h[:], r, first, e.prevLag)
		index := pitch.EncodeLag(lag, frac, first, r)
		prm = append(prm, index)
		if first {
			prm = append(prm, pitch.Parity(index))
			r = pitch.SecondRange(lag)
		}
		e.prevLag = lag
		e.lags[sf] = lag

		pitch.PredLT3(exc, off, lag, frac, SubframeSize)
		var y1 [SubframeSize]float64
		dsp.Convolve(exc[off:], h[:], y1[:], SubframeSize)
		gp, pitchCoeff := pitch.Gain(xn[:], y1[:])

		tame := e.taming.Test(lag, frac)
		if tame {
			e.tamed = true
			if gp > gain.GPClip {
				gp = gain.GPClip
			}
		}

		var xn2 [SubframeSize]float64
		for i := range xn2 {
			xn2[i] = dsp.Msu(xn[i], gp, y1[i])
		}
		inno := acelp.Search(xn2[:], h[:], lag, e.sharp)
		prm = append(prm, inno.Index, inno.Signs)

		coeff := gain.Correlations(xn[:], y1[:], inno.Filtered[:], pitchCoeff)
		gIndex, gpq, gcq := e.gainQ.Quantize(coeff, inno.Code[:], tame)
		prm = append(prm, gIndex)

		e.sharp = clampSharp(gpq)
		for i := 0; i < SubframeSize; i++ {
			exc[off+i] = dsp.Mac(float64(gpq*exc[off+i]), gcq, inno.Code[i])
		}
		e.taming.Update(gpq, lag)

		for j := 0; j < order; j++ {
			i := SubframeSize - order + j
			v := dsp.Msu(xn[i], gpq, y1[i])
			e.memW0[j] = dsp.Msu(v, gcq, inno.Filtered[i])
		}
	}

	if e.tamed {
		e.log.WithField("worst", e.taming.Worst()).Debug("pitch gain tamed")
		if metrics.IsMetricsEnabled() {
			metrics.RecordTaming(e.variant.Name)
		}
	}
	return bitstream.NewSpeechFrame(prm)
}

// encodeSilence codes a non-speech frame and runs the comfort noise
// generator the decoder will run, so both excitation histories match.
func (e *Encoder) encodeSilence(lspNew [order]float64, deferSID bool) (*bitstream.Frame, error) {
	ft, st := bitstream.NextTx(e.tx, true)
	if deferSID && ft != bitstream.NoData {
		// send it with the next frame instead
		ft = bitstream.NoData
		st.Prev = bitstream.NoData
		st.UpdateCounter = 1
	}
	e.tx = st

	f := bitstream.NewNoDataFrame()
	if ft != bitstream.NoData {
		l1, l2, lsfq := lsp.QuantizeSID(lpc.LSPToLSF(lspNew))
		aSID := lpc.LSPToAz(lpc.LSFToLSP(lsfq))

		var res [FrameSize]float64
		dsp.Residu(aSID[:], e.oldSpeech[:], speechOff, res[:], FrameSize)
		level := 10 * math.Log10(dsp.Energy(res[:], FrameSize)/FrameSize+0.01)
		energy := quantizeEnergy(level)

		e.cng.update(l1, l2, energy)
		var err error
		if f, err = bitstream.NewSIDFrame(ft, []int{l1, l2, energy}); err != nil {
			return nil, err
		}
	}

	if !e.cng.active {
		e.cng.hold(lpc.LSPToLSF(e.lspOldQ))
	}

	lspQ := lpc.LSFToLSP(e.cng.lsf)
	aq := lpc.Interpolate(e.lspOldQ, lspQ)
	e.lspOldQ = lspQ
	e.lspQ.Memory().PushLSF(e.cng.lsf, 0)
	e.gainQ.Predictor().Reset()
	e.taming.Reset()
	e.sharp = sharpMin
	e.tamed = false

	e.weightedSpeech(aq)
	exc := e.oldExc[:]
	for sf := 0; sf < 2; sf++ {
		off := excOff + sf*SubframeSize
		var ap [order + 1]float64
		dsp.WeightAz(aq[sf][:], gamma1, ap[:])

		var xn, y [SubframeSize]float64
		var zero [order]float64
		dsp.SynFilt(ap[:], exc[off:], xn[:], SubframeSize, e.memW0[:], false)
		e.cng.excitation(exc[off : off+SubframeSize])
		dsp.SynFilt(ap[:], exc[off:], y[:], SubframeSize, zero[:], false)
		for j := 0; j < order; j++ {
			i := SubframeSize - order + j
			e.memW0[j] = xn[i] - y[i]
		}
	}
	return f, nil
}
