// Package piece builds time-aligned piece representations from corpus rows:
// ordered notes, repeat-reduced chords and keys, the index arrays tying them
// together, and windowed per-chord note tensors.
package piece

import (
	"math/big"

	"github.com/jsphweid/harmalign/chordlab"
	"github.com/jsphweid/harmalign/keylab"
	"github.com/jsphweid/harmalign/note"
)

// Type tags the closed set of piece variants. Only the score-backed variant
// exists; midi- and audio-backed pieces would slot in here.
type Type int

const (
	TypeScore Type = iota
)

// Piece is one musical work after alignment. All accessors return views of
// construction-time state; nothing mutates after the constructor except the
// lazily built duration cache.
type Piece interface {
	Name() string
	DataType() Type

	// Inputs is the ordered note sequence, monotonically non-decreasing
	// by onset.
	Inputs() []note.Note

	// Chords is the repeat-reduced chord sequence.
	Chords() []chordlab.Chord

	// Keys is the repeat-reduced key sequence.
	Keys() []keylab.Key

	// ChordChangeIndices has one entry per chord: the index of the first
	// note at or after that chord's onset.
	ChordChangeIndices() []int

	// ChordRanges has one half-open note-index interval per chord. The
	// start can precede the change index when a note is still sounding
	// across the chord's onset.
	ChordRanges() [][2]int

	// KeyChangeIndices has one entry per key: the chord index where the
	// key begins.
	KeyChangeIndices() []int

	// KeyChangeInputIndices maps key changes all the way down to note
	// indices.
	KeyChangeInputIndices() []int

	// ChordsWithinRange returns the chords sounding anywhere in the note
	// index interval [start, stop). stop < 0 means to the end.
	ChordsWithinRange(start, stop int) []chordlab.Chord

	// DurationCache returns the inter-onset gap after each note, the last
	// entry measured to the final chord's offset. Computed once, reused
	// thereafter; first access from multiple goroutines is not safe.
	DurationCache() ([]*big.Rat, error)

	// ChordNoteInputs returns one windowed note tensor per chord, or per
	// supplied (range, changeIndex) pair when external chord boundaries
	// are being evaluated instead of the ground truth.
	ChordNoteInputs(window int, ranges [][2]int, changeIndices []int) ([][][]float64, error)
}
