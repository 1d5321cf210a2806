package bitstream

// FrameType is the transmit classification of a frame.
type FrameType int

const (
	Speech FrameType = iota
	SIDFirst
	SIDUpdate
	NoData
)

func (t FrameType) String() string {
	switch t {
	case Speech:
		return "speech"
	case SIDFirst:
		return "sid_first"
	case SIDUpdate:
		return "sid_update"
	case NoData:
		return "no_data"
	}
	return "unknown"
}

const (
	// sidPeriod is the number of frames between steady-state SID updates.
	sidPeriod = 8
	// sidFirstGap counts down to the first update after SIDFirst.
	sidFirstGap = 3
)

// TxState drives the choice of transmitted frame type while
// discontinuous transmission is on.
type TxState struct {
	Prev          FrameType
	UpdateCounter int
	HandoverDebt  int
}

// NewTxState returns the state of a transmitter that has just sent speech.
func NewTxState() TxState {
	return TxState{Prev: Speech, UpdateCounter: sidFirstGap}
}

// NextTx picks the type of the next frame. dtx reports whether the encoder
// produced a non-speech frame. The state is returned updated, st itself is
// not modified.
func NextTx(st TxState, dtx bool) (FrameType, TxState) {
	var ft FrameType
	if dtx {
		st.UpdateCounter--
		switch {
		case st.Prev == Speech:
			ft = SIDFirst
			st.UpdateCounter = sidFirstGap
		case st.HandoverDebt > 0 && st.UpdateCounter > 2:
			ft = SIDUpdate
			st.HandoverDebt--
		case st.UpdateCounter == 0:
			ft = SIDUpdate
			st.UpdateCounter = sidPeriod
		default:
			ft = NoData
		}
	} else {
		ft = Speech
		st.UpdateCounter = sidPeriod
	}
	st.Prev = ft
	return ft, st
}

// SetHandoverDebt schedules n extra SID updates, sent as soon as the
// counter allows.
func (st *TxState) SetHandoverDebt(n int) {
	st.HandoverDebt = n
}

// RxType is the receiver classification of a frame.
type RxType int

const (
	SpeechGood RxType = iota
	SpeechBad
	RxSIDFirst
	RxSIDUpdate
	SIDBad
	RxNoData
)

func (t RxType) String() string {
	switch t {
	case SpeechGood:
		return "speech_good"
	case SpeechBad:
		return "speech_bad"
	case RxSIDFirst:
		return "sid_first"
	case RxSIDUpdate:
		return "sid_update"
	case SIDBad:
		return "sid_bad"
	case RxNoData:
		return "no_data"
	}
	return "unknown"
}

// DTX reports whether the type belongs to a non-speech period.
func (t RxType) DTX() bool {
	return t == RxSIDFirst || t == RxSIDUpdate || t == SIDBad || t == RxNoData
}

// Classify maps a received frame to its receive type. An erased or
// missing frame, a bad sync word or a lost symbol makes the frame bad, as a
// bad SID when the previous frame was part of a non-speech period. A
// silence descriptor following speech opens a non-speech period.
func Classify(f *Frame, erased bool, prev RxType) RxType {
	bad := SpeechBad
	if prev.DTX() {
		bad = SIDBad
	}
	if erased || f == nil || f.Sync != SyncWord {
		return bad
	}
	switch len(f.Symbols) {
	case SpeechBits:
		if f.Damaged() {
			return SpeechBad
		}
		return SpeechGood
	case SIDBits:
		if f.Damaged() {
			return SIDBad
		}
		if !prev.DTX() {
			return RxSIDFirst
		}
		return RxSIDUpdate
	case 0:
		return RxNoData
	}
	return bad
}

// SyncErased marks a frame the channel flagged as lost.
const SyncErased uint16 = 0x6b20

// Erase turns f into a lost frame of the same size.
func (f *Frame) Erase() {
	f.Sync = SyncErased
	for i := range f.Symbols {
		f.Symbols[i] = 0
	}
}
