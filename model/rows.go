package model

import "math/big"

// MeasureRow is one row of a piece's measures table, after repeat resolution.
// The Next pointers form a single chain with exactly one terminal (nil) per
// piece. The core assumes this but does not enforce it.
type MeasureRow struct {
	MC      int
	ActDur  *big.Rat // actual duration in whole notes
	Offset  *big.Rat // internal offset for partial measures
	TimeSig string
	Next    *int // nil at piece end
}

type MeasureMap = map[int]MeasureRow

// NoteRow is one row of a piece's notes table. Fraction-valued fields are nil
// when the source cell was missing or unparseable; the note parser decides
// whether that sinks the row.
type NoteRow struct {
	MC       int
	Onset    *big.Rat
	Duration *big.Rat
	MIDI     int
	TPC      int
	Voice    int
	Tied     bool
}

// ChordRow is one row of a piece's chords table. Key and symbol fields are
// corpus label strings; empty string means missing.
type ChordRow struct {
	MC               int
	Onset            *big.Rat
	Duration         *big.Rat
	GlobalKey        string // e.g. "Ab", "f#"
	GlobalKeyIsMinor bool
	LocalKey         string // numeral relative to the global key, e.g. "V", "iii"
	LocalKeyIsMinor  bool
	RelativeRoot     string // e.g. "V" or "V/V", "" when absent
	Numeral          string // e.g. "ii", "#vii"
	ChordType        string // e.g. "M", "m", "o", "Mm7", "%7"
	FigBass          string // e.g. "", "6", "64", "65"
}
