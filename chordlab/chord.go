// Package chordlab holds the chord-label entity: parsing from corpus rows,
// repeat detection, and merging.
package chordlab

import (
	"fmt"
	"math/big"

	"github.com/jsphweid/harmalign/model"
	"github.com/jsphweid/harmalign/pitch"
	"github.com/jsphweid/harmalign/rhythm"
)

// Chord is one harmonic segment of a piece. Immutable except through
// MergeWith during construction.
type Chord struct {
	Root      int // semitone class
	Type      pitch.ChordType
	Inversion int
	Onset     rhythm.Pos
	Offset    rhythm.Pos
	Duration  *big.Rat

	GlobalTonic int
	GlobalMode  pitch.Mode
	LocalTonic  int
	LocalMode   pitch.Mode
}

// Options are the caller-supplied knobs for chord parsing.
type Options struct {
	// Reduction maps annotated chord types onto stored ones, e.g. every
	// seventh onto its triad. Types not in the map pass through.
	Reduction map[pitch.ChordType]pitch.ChordType
	// UseInversions keeps inversions in the symbol; false collapses them.
	UseInversions bool
	// UseRelative treats relative roots as new local keys rather than
	// symbols inside the annotated local key.
	UseRelative bool
}

// FromRow parses a chords-table row against the measure graph. Any malformed
// label fails just this row.
func FromRow(row model.ChordRow, measures model.MeasureMap, opts Options) (Chord, error) {
	if row.Onset == nil {
		return Chord{}, fmt.Errorf("missing onset")
	}
	if row.Duration == nil || row.Duration.Sign() < 0 {
		return Chord{}, fmt.Errorf("missing or negative duration")
	}

	globalTonic, err := pitch.ParseKeyName(row.GlobalKey)
	if err != nil {
		return Chord{}, err
	}
	globalMode := pitch.ModeMajor
	if row.GlobalKeyIsMinor {
		globalMode = pitch.ModeMinor
	}

	localTonic, err := pitch.NumeralRoot(row.LocalKey, globalTonic, globalMode)
	if err != nil {
		return Chord{}, err
	}
	localMode := pitch.ModeMajor
	if row.LocalKeyIsMinor {
		localMode = pitch.ModeMinor
	}

	// the numeral is always resolved through the relative root; the
	// UseRelative flag only decides which key the chord claims to be in
	rootTonic, rootMode := localTonic, localMode
	if row.RelativeRoot != "" {
		rootTonic, rootMode, err = pitch.ApplyRelativeRoot(localTonic, localMode, row.RelativeRoot)
		if err != nil {
			return Chord{}, err
		}
		if opts.UseRelative {
			localTonic, localMode = rootTonic, rootMode
		}
	}

	root, err := pitch.NumeralRoot(row.Numeral, rootTonic, rootMode)
	if err != nil {
		return Chord{}, err
	}

	chordType, err := pitch.ParseChordType(row.ChordType)
	if err != nil {
		return Chord{}, err
	}
	chordType = pitch.Reduce(chordType, opts.Reduction)

	inversion := 0
	if opts.UseInversions {
		inversion, err = pitch.InversionFromFigbass(row.FigBass)
		if err != nil {
			return Chord{}, err
		}
	}

	onset := rhythm.Pos{MC: row.MC, Beat: row.Onset}
	offset, err := rhythm.PosAfter(onset, row.Duration, measures)
	if err != nil {
		return Chord{}, err
	}

	return Chord{
		Root:        root,
		Type:        chordType,
		Inversion:   inversion,
		Onset:       onset,
		Offset:      offset,
		Duration:    row.Duration,
		GlobalTonic: globalTonic,
		GlobalMode:  globalMode,
		LocalTonic:  localTonic,
		LocalMode:   localMode,
	}, nil
}

// IsRepeated reports whether this chord is a repeat of its predecessor: same
// symbol in the same local key, with inversions compared only when the piece
// was built with them.
func (c Chord) IsRepeated(prev Chord, useInversion bool) bool {
	if c.Root != prev.Root || c.Type != prev.Type {
		return false
	}
	if useInversion && c.Inversion != prev.Inversion {
		return false
	}
	return c.LocalTonic == prev.LocalTonic && c.LocalMode == prev.LocalMode
}

// MergeWith absorbs a discarded repeat that follows this chord, extending the
// offset and duration to cover it.
func (c *Chord) MergeWith(next Chord) {
	c.Offset = next.Offset
	c.Duration = new(big.Rat).Add(c.Duration, next.Duration)
}

func (c Chord) ToData() model.ChordData {
	return model.ChordData{
		Root:        c.Root,
		ChordType:   c.Type.String(),
		Inversion:   c.Inversion,
		Onset:       c.Onset.ToData(),
		Offset:      c.Offset.ToData(),
		Duration:    rhythm.FracStr(c.Duration),
		GlobalTonic: c.GlobalTonic,
		GlobalMode:  int(c.GlobalMode),
		LocalTonic:  c.LocalTonic,
		LocalMode:   int(c.LocalMode),
	}
}

func FromData(d model.ChordData) (Chord, error) {
	chordType, err := pitch.ParseChordType(d.ChordType)
	if err != nil {
		return Chord{}, err
	}
	onset, err := rhythm.PosFromData(d.Onset)
	if err != nil {
		return Chord{}, err
	}
	offset, err := rhythm.PosFromData(d.Offset)
	if err != nil {
		return Chord{}, err
	}
	duration, err := rhythm.ParseFrac(d.Duration)
	if err != nil {
		return Chord{}, err
	}
	return Chord{
		Root:        d.Root,
		Type:        chordType,
		Inversion:   d.Inversion,
		Onset:       onset,
		Offset:      offset,
		Duration:    duration,
		GlobalTonic: d.GlobalTonic,
		GlobalMode:  pitch.Mode(d.GlobalMode),
		LocalTonic:  d.LocalTonic,
		LocalMode:   pitch.Mode(d.LocalMode),
	}, nil
}

// Name is for logs and inspect output, e.g. "G:Mm7/1".
func (c Chord) Name() string {
	return fmt.Sprintf("%v:%v/%v", pitch.ClassNames[c.Root], c.Type, c.Inversion)
}
