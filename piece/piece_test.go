package piece

import (
	"math/big"
	"testing"

	"github.com/jsphweid/harmalign/model"
	"github.com/jsphweid/harmalign/note"
	"github.com/jsphweid/harmalign/rhythm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int {
	return &i
}

// three 4/4 measures chained 1 -> 2 -> 3
func testMeasures() model.MeasureMap {
	return model.MeasureMap{
		1: {MC: 1, ActDur: rhythm.Frac(1, 1), Offset: new(big.Rat), TimeSig: "4/4", Next: intPtr(2)},
		2: {MC: 2, ActDur: rhythm.Frac(1, 1), Offset: new(big.Rat), TimeSig: "4/4", Next: intPtr(3)},
		3: {MC: 3, ActDur: rhythm.Frac(1, 1), Offset: new(big.Rat), TimeSig: "4/4", Next: nil},
	}
}

func testNoteRows() []model.NoteRow {
	return []model.NoteRow{
		{MC: 1, Onset: rhythm.Frac(0, 1), Duration: rhythm.Frac(1, 2), MIDI: 60},
		{MC: 1, Onset: rhythm.Frac(1, 2), Duration: rhythm.Frac(1, 2), MIDI: 64},
		{MC: 2, Onset: rhythm.Frac(0, 1), Duration: rhythm.Frac(1, 4), MIDI: 67},
		{MC: 2, Onset: rhythm.Frac(1, 4), Duration: rhythm.Frac(1, 4), MIDI: 65},
		{MC: 2, Onset: rhythm.Frac(1, 2), Duration: rhythm.Frac(1, 2), MIDI: 62},
		{MC: 3, Onset: rhythm.Frac(0, 1), Duration: rhythm.Frac(1, 1), MIDI: 60},
	}
}

// four chord rows; rows 1 and 2 are the same dominant seventh, and row 3
// moves the local key to the dominant
func testChordRows() []model.ChordRow {
	return []model.ChordRow{
		{MC: 1, Onset: rhythm.Frac(0, 1), Duration: rhythm.Frac(1, 1), GlobalKey: "C", LocalKey: "I", Numeral: "I", ChordType: "M"},
		{MC: 2, Onset: rhythm.Frac(0, 1), Duration: rhythm.Frac(1, 2), GlobalKey: "C", LocalKey: "I", Numeral: "V", ChordType: "Mm7", FigBass: "7"},
		{MC: 2, Onset: rhythm.Frac(1, 2), Duration: rhythm.Frac(1, 2), GlobalKey: "C", LocalKey: "I", Numeral: "V", ChordType: "Mm7", FigBass: "7"},
		{MC: 3, Onset: rhythm.Frac(0, 1), Duration: rhythm.Frac(1, 1), GlobalKey: "C", LocalKey: "V", Numeral: "I", ChordType: "M"},
	}
}

func testPiece(t *testing.T) *ScorePiece {
	t.Helper()
	p, err := NewScorePiece(testNoteRows(), testChordRows(), testMeasures(), Options{
		Name:          "test",
		UseInversions: true,
		UseRelative:   true,
	})
	require.NoError(t, err)
	return p
}

func TestReductionMask(t *testing.T) {
	assert := assert.New(t)

	evens := []int{2, 2, 2, 3, 3, 4}
	mask := ReductionMask(len(evens), func(prev, next int) bool {
		return evens[prev] == evens[next]
	})
	assert.Equal([]bool{true, false, false, true, false, true}, mask)

	assert.Equal([]bool{}, ReductionMask(0, nil))
	assert.Equal([]bool{true}, ReductionMask(1, nil))
}

func TestReductionMaskIdempotent(t *testing.T) {
	vals := []int{2, 2, 2, 3, 3, 4, 4, 2}
	same := func(s []int) func(prev, next int) bool {
		return func(prev, next int) bool { return s[prev] == s[next] }
	}

	var reduced []int
	for i, keep := range ReductionMask(len(vals), same(vals)) {
		if keep {
			reduced = append(reduced, vals[i])
		}
	}
	require.Equal(t, []int{2, 3, 4, 2}, reduced)

	// no two adjacent survivors are repeats, so a second pass keeps all
	for _, keep := range ReductionMask(len(reduced), same(reduced)) {
		assert.True(t, keep)
	}
}

func TestNewScorePiece(t *testing.T) {
	p := testPiece(t)

	assert := assert.New(t)
	assert.Len(p.Inputs(), 6)
	assert.Len(p.Chords(), 3)
	assert.Equal([]int{0, 2, 5}, p.ChordChangeIndices())
	assert.Equal([][2]int{{0, 2}, {2, 5}, {5, 6}}, p.ChordRanges())
	assert.Equal(TypeScore, p.DataType())
	assert.Equal("test", p.Name())

	// the repeated dominant collapsed onto its first row, absorbing the
	// second row's extent
	merged := p.Chords()[1]
	assert.True(merged.Onset.Equal(rhythm.Pos{MC: 2, Beat: rhythm.Frac(0, 1)}))
	assert.True(merged.Offset.Equal(rhythm.Pos{MC: 3, Beat: rhythm.Frac(0, 1)}))
	assert.Equal(0, merged.Duration.Cmp(rhythm.Frac(1, 1)))
}

func TestNewScorePieceAlignmentInvariants(t *testing.T) {
	p := testPiece(t)

	changes := p.ChordChangeIndices()
	ranges := p.ChordRanges()
	require.Equal(t, len(p.Chords()), len(changes))
	require.Equal(t, len(changes), len(ranges))

	assert := assert.New(t)
	for i := range changes {
		if i > 0 {
			assert.LessOrEqual(changes[i-1], changes[i])
		}
		assert.LessOrEqual(ranges[i][0], changes[i])
		assert.LessOrEqual(changes[i], ranges[i][1])
	}
}

func TestNewScorePieceKeys(t *testing.T) {
	p := testPiece(t)

	assert := assert.New(t)
	require.Len(t, p.Keys(), 2)
	assert.Equal([]int{0, 2}, p.KeyChangeIndices())
	assert.Equal([]int{0, 5}, p.KeyChangeInputIndices())
	assert.Equal(0, p.Keys()[0].LocalTonic)
	assert.Equal(7, p.Keys()[1].LocalTonic)
}

func TestNewScorePieceDropsBadRows(t *testing.T) {
	noteRows := append(testNoteRows(), model.NoteRow{MC: 1, Onset: rhythm.Frac(0, 1), Duration: nil, MIDI: 60})
	chordRows := append(testChordRows(), model.ChordRow{MC: 1, Onset: rhythm.Frac(0, 1), Duration: rhythm.Frac(1, 1), GlobalKey: "C", LocalKey: "I", Numeral: "I", ChordType: "nope"})

	p, err := NewScorePiece(noteRows, chordRows, testMeasures(), Options{Name: "bad-rows"})
	require.NoError(t, err)
	assert.Len(t, p.Inputs(), 6)
	assert.Len(t, p.Chords(), 3)
}

func TestEmptyPiece(t *testing.T) {
	p, err := NewScorePiece(nil, nil, testMeasures(), Options{Name: "empty"})
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Empty(p.Inputs())
	assert.Empty(p.Chords())
	assert.Empty(p.Keys())
	assert.Empty(p.ChordChangeIndices())

	cache, err := p.DurationCache()
	require.NoError(t, err)
	assert.Empty(cache)

	tensors, err := p.ChordNoteInputs(2, nil, nil)
	require.NoError(t, err)
	assert.Empty(tensors)
}

func TestDurationCache(t *testing.T) {
	p := testPiece(t)

	cache, err := p.DurationCache()
	require.NoError(t, err)
	require.Len(t, cache, 6)

	want := []*big.Rat{
		rhythm.Frac(1, 2), rhythm.Frac(1, 2), rhythm.Frac(1, 4),
		rhythm.Frac(1, 4), rhythm.Frac(1, 2),
		// the last gap runs to the final chord's offset
		rhythm.Frac(1, 1),
	}
	for i, gap := range cache {
		assert.Equal(t, 0, gap.Cmp(want[i]), "gap %v", i)
	}

	// the gaps tile the span from the first onset to the last chord offset
	total := new(big.Rat)
	for _, gap := range cache {
		total.Add(total, gap)
	}
	span, err := rhythm.RangeLength(p.Inputs()[0].Onset, p.Chords()[2].Offset, p.Measures())
	require.NoError(t, err)
	assert.Equal(t, 0, total.Cmp(span))

	again, err := p.DurationCache()
	require.NoError(t, err)
	assert.Equal(t, cache, again)
}

func TestChordsWithinRange(t *testing.T) {
	p := testPiece(t)

	assert := assert.New(t)
	assert.Len(p.ChordsWithinRange(0, -1), 3)
	assert.Equal(p.Chords()[1:2], p.ChordsWithinRange(2, 5))
	// note 1 sounds during the first chord, so the range backs up to it
	assert.Equal(p.Chords()[0:2], p.ChordsWithinRange(1, 5))
	assert.Equal(p.Chords()[2:], p.ChordsWithinRange(5, -1))
}

func TestChordNoteInputs(t *testing.T) {
	p := testPiece(t)

	tensors, err := p.ChordNoteInputs(1, nil, nil)
	require.NoError(t, err)
	require.Len(t, tensors, 3)

	ranges := p.ChordRanges()
	for i, tensor := range tensors {
		assert.Len(t, tensor, ranges[i][1]-ranges[i][0]+2, "tensor %v", i)
	}

	// row Window of the first tensor is the chord's first note
	first := tensors[0]
	assert.Equal(t, 0.0, first[1][note.VecPitchClass])
	assert.Equal(t, 0.0, first[1][note.VecRelOnset])
	// window position before the piece start is zero-filled
	for col, v := range first[0] {
		assert.Equal(t, 0.0, v, "col %v", col)
	}
}

func TestChordNoteInputsExternalRanges(t *testing.T) {
	p := testPiece(t)

	tensors, err := p.ChordNoteInputs(0, [][2]int{{2, 5}}, []int{2})
	require.NoError(t, err)
	require.Len(t, tensors, 1)
	tensor := tensors[0]
	require.Len(t, tensor, 3)

	// duration is the duration-cache sum over the range, so proportions are
	// relative to a whole-note span
	assert := assert.New(t)
	assert.Equal(0.0, tensor[0][note.VecRelOnset])
	assert.Equal(0.25, tensor[1][note.VecRelOnset])
	assert.Equal(0.5, tensor[2][note.VecRelOnset])
	assert.Equal(0.0, tensor[0][note.VecOnsetProp])
	assert.Equal(0.25, tensor[1][note.VecOnsetProp])
	assert.Equal(0.5, tensor[2][note.VecOnsetProp])

	_, err = p.ChordNoteInputs(0, [][2]int{{2, 5}}, []int{2, 3})
	assert.Error(err)
}

func TestChordNoteInputsRejectsBadIndices(t *testing.T) {
	p := testPiece(t)

	cases := []struct {
		name    string
		ranges  [][2]int
		changes []int
	}{
		{"range end past notes", [][2]int{{0, 100}}, []int{0}},
		{"negative range start", [][2]int{{-1, 2}}, []int{0}},
		{"inverted range", [][2]int{{4, 2}}, []int{2}},
		{"negative change index", [][2]int{{0, 2}}, []int{-1}},
		{"change index past notes", [][2]int{{0, 6}}, []int{6}},
		{"change index past range end", [][2]int{{0, 2}}, []int{4}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := p.ChordNoteInputs(0, c.ranges, c.changes)
			assert.Error(t, err)
		})
	}
}

func TestChordNoteInputsNoNotes(t *testing.T) {
	// every note row failed to parse but the chords survived
	p, err := NewScorePiece(nil, testChordRows(), testMeasures(), Options{Name: "chords-only"})
	require.NoError(t, err)
	require.NotEmpty(t, p.Chords())

	_, err = p.ChordNoteInputs(1, nil, nil)
	assert.Error(t, err)
}

func TestDataRoundTrip(t *testing.T) {
	p := testPiece(t)
	data := p.ToData()

	restored, err := FromData(data, p.Measures())
	require.NoError(t, err)
	assert.Equal(t, data, restored.ToData())

	// the restored piece computes the same tensors
	want, err := p.ChordNoteInputs(1, nil, nil)
	require.NoError(t, err)
	got, err := restored.ChordNoteInputs(1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
