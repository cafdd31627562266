package piece

import (
	"math/big"

	"github.com/jsphweid/harmalign/chordlab"
	"github.com/jsphweid/harmalign/model"
	"github.com/jsphweid/harmalign/note"
	"github.com/jsphweid/harmalign/rhythm"
)

// WindowParams describe one chord's note window.
type WindowParams struct {
	Notes    []note.Note
	Measures model.MeasureMap

	ChordOnset    rhythm.Pos
	ChordOffset   rhythm.Pos
	ChordDuration *big.Rat

	// ChangeIndex is the note whose onset matches the chord's onset;
	// [OnsetIndex, OffsetIndex) are the chord's own notes.
	ChangeIndex int
	OnsetIndex  int
	OffsetIndex int

	// Window counts extra notes taken on each side; positions past either
	// end of the note sequence come out zero-filled.
	Window int

	DurationCache []*big.Rat

	// Chord is the ground-truth chord when there is one. When its
	// boundaries disagree with the supplied ones (externally predicted
	// ranges), relative onsets fall back to the chord's own positions.
	Chord *chordlab.Chord
}

// ChordNoteWindow extracts the fixed-width note tensor for one chord. The
// result has (OffsetIndex-OnsetIndex)+2*Window rows of note.VecLen columns,
// and row Window always lines up with OnsetIndex.
func ChordNoteWindow(p WindowParams) ([][]float64, error) {
	chordOnsetAligns := p.Chord == nil || p.Chord.Onset.Equal(p.ChordOnset)
	chordOffsetAligns := p.Chord == nil || p.Chord.Offset.Equal(p.ChordOffset)

	windowOnset := p.OnsetIndex - p.Window
	windowOffset := p.OffsetIndex + p.Window

	tensor := make([][]float64, windowOffset-windowOnset)
	for i := range tensor {
		tensor[i] = make([]float64, note.VecLen)
	}

	first := windowOnset
	if first < 0 {
		first = 0
	}
	last := windowOffset
	if last > len(p.Notes) {
		last = len(p.Notes)
	}
	if first >= last {
		return tensor, nil
	}

	minPitch := p.Notes[first].MidiPitch()
	for _, n := range p.Notes[first:last] {
		if n.MidiPitch() < minPitch {
			minPitch = n.MidiPitch()
		}
	}

	// relative onsets come from signed sums over the duration cache, but
	// only when the chord boundaries actually line up with it
	var noteOnsets []*big.Rat
	if p.DurationCache != nil && chordOnsetAligns {
		noteOnsets = make([]*big.Rat, 0, last-first)
		for i := first; i < last; i++ {
			onset := new(big.Rat)
			switch {
			case i < p.ChangeIndex:
				for _, gap := range p.DurationCache[i:p.ChangeIndex] {
					onset.Sub(onset, gap)
				}
			case i > p.ChangeIndex:
				for _, gap := range p.DurationCache[p.ChangeIndex:i] {
					onset.Add(onset, gap)
				}
			}
			noteOnsets = append(noteOnsets, onset)
		}
	}

	chordOnset := p.ChordOnset
	if !chordOnsetAligns {
		chordOnset = p.Chord.Onset
	}
	chordOffset := p.ChordOffset
	if !chordOffsetAligns {
		chordOffset = p.Chord.Offset
	}

	for i := first; i < last; i++ {
		params := note.VecParams{
			ChordOnset:    chordOnset,
			ChordOffset:   chordOffset,
			ChordDuration: p.ChordDuration,
			Measures:      p.Measures,
			MinPitch:      minPitch,
		}
		if noteOnsets != nil {
			params.NoteOnset = noteOnsets[i-first]
		}
		// neighbor durations come from the full note sequence, so
		// window-edge notes still see their true neighbors
		if i > 0 && p.DurationCache != nil {
			params.DurFromPrev = p.DurationCache[i-1]
		}
		if p.DurationCache != nil && i < len(p.DurationCache) {
			params.DurToNext = p.DurationCache[i]
		}

		vec, err := p.Notes[i].ToVec(&params)
		if err != nil {
			return nil, err
		}
		tensor[i-windowOnset] = vec
	}

	return tensor, nil
}
