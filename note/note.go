package note

import (
	"fmt"
	"math/big"

	"github.com/jsphweid/harmalign/model"
	"github.com/jsphweid/harmalign/pitch"
	"github.com/jsphweid/harmalign/rhythm"
)

// Note is one sounding note of a piece. Immutable once parsed.
type Note struct {
	PitchClass int // semitone class, C = 0
	Octave     int
	Onset      rhythm.Pos
	Offset     rhythm.Pos // derived: onset advanced by duration
	Duration   *big.Rat   // whole notes
	Level      int        // metrical level of the onset
	Voice      int
	Tied       bool
}

// MidiPitch is the note's absolute pitch height in semitones.
func (n Note) MidiPitch() int {
	return (n.Octave+1)*12 + n.PitchClass
}

// FromRow parses a notes-table row. Zero or missing durations and
// out-of-range pitches fail the row; the caller drops it and moves on.
func FromRow(row model.NoteRow, measures model.MeasureMap, cache *rhythm.LevelCache) (Note, error) {
	if row.Onset == nil {
		return Note{}, fmt.Errorf("missing onset")
	}
	if row.Duration == nil || row.Duration.Sign() <= 0 {
		return Note{}, fmt.Errorf("missing or zero duration")
	}
	if row.MIDI < 0 || row.MIDI > 127 {
		return Note{}, fmt.Errorf("malformed pitch %v", row.MIDI)
	}
	measure, ok := measures[row.MC]
	if !ok {
		return Note{}, fmt.Errorf("measure %v not in measure map", row.MC)
	}

	level, err := cache.Get(measure, row.Onset)
	if err != nil {
		return Note{}, err
	}

	onset := rhythm.Pos{MC: row.MC, Beat: row.Onset}
	offset, err := rhythm.PosAfter(onset, row.Duration, measures)
	if err != nil {
		return Note{}, err
	}

	return Note{
		PitchClass: row.MIDI % 12,
		Octave:     row.MIDI/12 - 1,
		Onset:      onset,
		Offset:     offset,
		Duration:   row.Duration,
		Level:      level,
		Voice:      row.Voice,
		Tied:       row.Tied,
	}, nil
}

func (n Note) ToData() model.NoteData {
	return model.NoteData{
		PitchClass: n.PitchClass,
		Octave:     n.Octave,
		Onset:      n.Onset.ToData(),
		Offset:     n.Offset.ToData(),
		Duration:   rhythm.FracStr(n.Duration),
		Level:      n.Level,
		Voice:      n.Voice,
		Tied:       n.Tied,
	}
}

func FromData(d model.NoteData) (Note, error) {
	onset, err := rhythm.PosFromData(d.Onset)
	if err != nil {
		return Note{}, err
	}
	offset, err := rhythm.PosFromData(d.Offset)
	if err != nil {
		return Note{}, err
	}
	duration, err := rhythm.ParseFrac(d.Duration)
	if err != nil {
		return Note{}, err
	}
	return Note{
		PitchClass: d.PitchClass,
		Octave:     d.Octave,
		Onset:      onset,
		Offset:     offset,
		Duration:   duration,
		Level:      d.Level,
		Voice:      d.Voice,
		Tied:       d.Tied,
	}, nil
}

// Name is for logs and inspect output, e.g. "F#4".
func (n Note) Name() string {
	return fmt.Sprintf("%v%v", pitch.ClassNames[n.PitchClass], n.Octave)
}
