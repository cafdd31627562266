package note

import (
	"math/big"

	"github.com/jsphweid/harmalign/model"
	"github.com/jsphweid/harmalign/rhythm"
)

// VecLen is the width of a note feature vector.
const VecLen = 12

// Vector field offsets.
const (
	VecPitchClass = iota
	VecOctave
	VecPitchAboveMin
	VecLevel
	VecDuration
	VecOnsetProp
	VecOffsetProp
	VecDurationProp
	VecRelOnset
	VecDurFromPrev
	VecDurToNext
	VecSounding
)

// VecParams carries the chord-relative context for vectorizing one note.
type VecParams struct {
	ChordOnset    rhythm.Pos
	ChordOffset   rhythm.Pos
	ChordDuration *big.Rat
	Measures      model.MeasureMap
	MinPitch      int      // lowest MidiPitch in the window
	NoteOnset     *big.Rat // relative onset from the duration cache; nil = compute from positions
	DurFromPrev   *big.Rat // nil for the first note of the piece
	DurToNext     *big.Rat // nil for the last
}

func ratFloat(r *big.Rat) float64 {
	if r == nil {
		return 0
	}
	f, _ := r.Float64()
	return f
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// signedRange measures from a to b, negative when b precedes a. RangeLength
// only walks forward through the measure graph, so order the endpoints first.
func signedRange(a, b rhythm.Pos, measures model.MeasureMap) (*big.Rat, error) {
	if b.Less(a) {
		r, err := rhythm.RangeLength(b, a, measures)
		if err != nil {
			return nil, err
		}
		return r.Neg(r), nil
	}
	return rhythm.RangeLength(a, b, measures)
}

// ToVec renders the note as its fixed-width feature vector. With nil params
// the chord-relative fields are zero, which is what sequence-level datasets
// that have no chord context want.
func (n Note) ToVec(p *VecParams) ([]float64, error) {
	vec := make([]float64, VecLen)
	vec[VecPitchClass] = float64(n.PitchClass)
	vec[VecOctave] = float64(n.Octave)
	vec[VecLevel] = float64(n.Level)
	vec[VecDuration] = ratFloat(n.Duration)

	if p == nil {
		return vec, nil
	}

	vec[VecPitchAboveMin] = float64(n.MidiPitch() - p.MinPitch)

	relOnset := p.NoteOnset
	if relOnset == nil {
		// boundaries did not line up with the duration cache, so fall
		// back to raw positions against the chord's own onset
		var err error
		relOnset, err = signedRange(p.ChordOnset, n.Onset, p.Measures)
		if err != nil {
			return nil, err
		}
	}
	vec[VecRelOnset] = ratFloat(relOnset)

	chordDur := ratFloat(p.ChordDuration)
	if chordDur > 0 {
		onsetProp := ratFloat(relOnset) / chordDur
		durProp := ratFloat(n.Duration) / chordDur
		vec[VecOnsetProp] = clamp01(onsetProp)
		vec[VecOffsetProp] = clamp01(onsetProp + durProp)
		vec[VecDurationProp] = clamp01(durProp)
	}

	vec[VecDurFromPrev] = ratFloat(p.DurFromPrev)
	vec[VecDurToNext] = ratFloat(p.DurToNext)

	if n.Onset.Less(p.ChordOnset) && p.ChordOnset.Less(n.Offset) {
		vec[VecSounding] = 1
	}
	return vec, nil
}
