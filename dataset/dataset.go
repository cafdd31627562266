// Package dataset turns built pieces into padded tensors ready for model
// training. Everything here consumes the piece package's outputs as plain
// arrays.
package dataset

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/jsphweid/harmalign/note"
	"github.com/jsphweid/harmalign/piece"
	"github.com/jsphweid/harmalign/pitch"
)

// Pad packs ragged tensors into one block, zero-padding each tensor's first
// dimension to the longest. The returned lengths give back the original
// first dimensions, so padded[i][:lengths[i]] is the original tensor.
func Pad(tensors [][][]float64) (padded [][][]float64, lengths []int) {
	lengths = make([]int, len(tensors))
	maxLen, width := 0, 0
	for i, t := range tensors {
		lengths[i] = len(t)
		if len(t) > maxLen {
			maxLen = len(t)
		}
		if len(t) > 0 && len(t[0]) > width {
			width = len(t[0])
		}
	}

	padded = make([][][]float64, len(tensors))
	for i, t := range tensors {
		block := make([][]float64, maxLen)
		for j := range block {
			block[j] = make([]float64, width)
			if j < len(t) {
				copy(block[j], t[j])
			}
		}
		padded[i] = block
	}
	return padded, lengths
}

// PadInts is Pad for integer target sequences.
func PadInts(seqs [][]int) (padded [][]int, lengths []int) {
	lengths = make([]int, len(seqs))
	maxLen := 0
	for i, s := range seqs {
		lengths[i] = len(s)
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	padded = make([][]int, len(seqs))
	for i, s := range seqs {
		block := make([]int, maxLen)
		copy(block, s)
		padded[i] = block
	}
	return padded, lengths
}

// ChordTransitionDataset trains chord-change detection: per piece, the full
// note vector sequence against the indices where chords change.
type ChordTransitionDataset struct {
	Inputs        [][][]float64
	Targets       [][]int
	InputLengths  []int
	TargetLengths []int
	Padded        bool
}

func NewChordTransitionDataset(pieces []piece.Piece) (*ChordTransitionDataset, error) {
	d := &ChordTransitionDataset{}
	for _, p := range pieces {
		notes := p.Inputs()
		stacked := make([][]float64, 0, len(notes))
		for _, n := range notes {
			vec, err := n.ToVec(nil)
			if err != nil {
				return nil, fmt.Errorf("vectorizing %v: %w", p.Name(), err)
			}
			stacked = append(stacked, vec)
		}
		d.Inputs = append(d.Inputs, stacked)
		d.Targets = append(d.Targets, append([]int{}, p.ChordChangeIndices()...))
	}
	return d, nil
}

func (d *ChordTransitionDataset) Pad() {
	d.Inputs, d.InputLengths = Pad(d.Inputs)
	d.Targets, d.TargetLengths = PadInts(d.Targets)
	d.Padded = true
}

// ChordClassificationDataset trains chord symbol recognition: one windowed
// note tensor per chord against the chord's one-hot symbol index.
type ChordClassificationDataset struct {
	Inputs       [][][]float64
	Targets      []int
	InputLengths []int
	Padded       bool
}

// ClassificationWindow is the context window used for classification inputs.
const ClassificationWindow = 2

func NewChordClassificationDataset(pieces []piece.Piece, useInversion bool) (*ChordClassificationDataset, error) {
	d := &ChordClassificationDataset{}
	for _, p := range pieces {
		for _, c := range p.Chords() {
			d.Targets = append(d.Targets, pitch.ChordSymbolIndex(c.Root, c.Type, c.Inversion, useInversion))
		}
		inputs, err := p.ChordNoteInputs(ClassificationWindow, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("windowing %v: %w", p.Name(), err)
		}
		d.Inputs = append(d.Inputs, inputs...)
	}
	return d, nil
}

// Pad only pads inputs; classification targets are already scalar.
func (d *ChordClassificationDataset) Pad() {
	d.Inputs, d.InputLengths = Pad(d.Inputs)
	d.Padded = true
}

// Splits shuffles pieces with the given seed and cuts them into contiguous
// slices proportional to props (normalized to sum to 1). A split that rounds
// down to nothing is logged and left nil.
func Splits(pieces []piece.Piece, props []float64, seed int64) ([][]piece.Piece, error) {
	total := 0.0
	for _, p := range props {
		total += p
	}
	if total == 0 {
		return nil, fmt.Errorf("split proportions sum to 0")
	}

	shuffled := append([]piece.Piece{}, pieces...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	res := make([][]piece.Piece, len(props))
	prop := 0.0
	for i, p := range props {
		start := int(float64(len(shuffled))*prop + 0.5)
		prop += p / total
		end := int(float64(len(shuffled))*prop + 0.5)
		if start == end {
			slog.Warn("split contains no pieces", "split", i, "prop", p)
			continue
		}
		res[i] = shuffled[start:end]
	}
	return res, nil
}

// NoteVecLen re-exports the note vector width for dataset consumers.
const NoteVecLen = note.VecLen
