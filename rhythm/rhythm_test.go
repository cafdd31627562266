package rhythm

import (
	"math/big"
	"testing"

	"github.com/jsphweid/harmalign/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int {
	return &i
}

// three 4/4 measures chained 1 -> 2 -> 3
func testMeasures() model.MeasureMap {
	return model.MeasureMap{
		1: {MC: 1, ActDur: Frac(1, 1), Offset: new(big.Rat), TimeSig: "4/4", Next: intPtr(2)},
		2: {MC: 2, ActDur: Frac(1, 1), Offset: new(big.Rat), TimeSig: "4/4", Next: intPtr(3)},
		3: {MC: 3, ActDur: Frac(1, 1), Offset: new(big.Rat), TimeSig: "4/4", Next: nil},
	}
}

func TestRangeLengthSameMeasure(t *testing.T) {
	measures := testMeasures()
	a := Pos{MC: 2, Beat: Frac(1, 4)}
	b := Pos{MC: 2, Beat: Frac(3, 4)}

	assert := assert.New(t)
	forward, err := RangeLength(a, b, measures)
	require.NoError(t, err)
	assert.Equal(0, forward.Cmp(Frac(1, 2)))

	// antisymmetric within a measure
	backward, err := RangeLength(b, a, measures)
	require.NoError(t, err)
	assert.Equal(0, backward.Cmp(Frac(-1, 2)))
}

func TestRangeLengthAcrossMeasures(t *testing.T) {
	measures := testMeasures()
	start := Pos{MC: 1, Beat: Frac(1, 2)}
	end := Pos{MC: 3, Beat: Frac(1, 4)}

	// 1/2 left of measure 1, all of measure 2, 1/4 into measure 3
	length, err := RangeLength(start, end, measures)
	require.NoError(t, err)
	assert.Equal(t, 0, length.Cmp(Frac(7, 4)))
}

func TestRangeLengthUnreachable(t *testing.T) {
	measures := testMeasures()
	start := Pos{MC: 3, Beat: Frac(0, 1)}
	end := Pos{MC: 1, Beat: Frac(0, 1)}

	_, err := RangeLength(start, end, measures)
	assert.Error(t, err)
}

func TestPosAfter(t *testing.T) {
	measures := testMeasures()

	cases := []struct {
		name  string
		start Pos
		dur   *big.Rat
		want  Pos
	}{
		{"within measure", Pos{1, Frac(1, 4)}, Frac(1, 4), Pos{1, Frac(1, 2)}},
		{"spills to next", Pos{1, Frac(3, 4)}, Frac(1, 2), Pos{2, Frac(1, 4)}},
		{"spans a full measure", Pos{1, Frac(1, 2)}, Frac(2, 1), Pos{3, Frac(1, 2)}},
		{"overhang stays terminal", Pos{3, Frac(1, 2)}, Frac(1, 1), Pos{3, Frac(3, 2)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := PosAfter(c.start, c.dur, measures)
			require.NoError(t, err)
			assert.True(t, got.Equal(c.want), "got %v/%v", got.MC, got.Beat)
		})
	}
}

func TestLevelLengthsSimple(t *testing.T) {
	measure, beat, subbeat, err := LevelLengths("4/4")
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(0, measure.Cmp(Frac(1, 1)))
	assert.Equal(0, beat.Cmp(Frac(1, 4)))
	assert.Equal(0, subbeat.Cmp(Frac(1, 8)))
}

func TestLevelLengthsCompound(t *testing.T) {
	measure, beat, subbeat, err := LevelLengths("6/8")
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(0, measure.Cmp(Frac(3, 4)))
	assert.Equal(0, beat.Cmp(Frac(3, 8)))
	assert.Equal(0, subbeat.Cmp(Frac(1, 8)))
}

func TestLevelLengthsThreeFourIsSimple(t *testing.T) {
	// numerator 3 is not compound
	_, beat, subbeat, err := LevelLengths("3/4")
	require.NoError(t, err)
	assert.Equal(t, 0, beat.Cmp(Frac(1, 4)))
	assert.Equal(t, 0, subbeat.Cmp(Frac(1, 8)))
}

func TestLevelLengthsInvalid(t *testing.T) {
	for _, timesig := range []string{"", "44", "a/4", "4/b", "0/4", "4/0", "-3/4"} {
		_, _, _, err := LevelLengths(timesig)
		assert.Error(t, err, "timesig %q", timesig)
	}
}

func TestLevel(t *testing.T) {
	measure := model.MeasureRow{MC: 1, ActDur: Frac(1, 1), Offset: new(big.Rat), TimeSig: "4/4"}

	cases := []struct {
		beat *big.Rat
		want int
	}{
		{Frac(0, 1), 3},
		{Frac(1, 2), 2},
		{Frac(1, 4), 2},
		{Frac(3, 8), 1},
		{Frac(1, 8), 1},
		{Frac(1, 16), 0},
		{Frac(1, 3), 0},
	}
	for _, c := range cases {
		got, err := Level(c.beat, measure)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "beat %v", c.beat)
	}
}

func TestLevelCompound(t *testing.T) {
	measure := model.MeasureRow{MC: 1, ActDur: Frac(3, 4), Offset: new(big.Rat), TimeSig: "6/8"}

	// one beat in: 3 eighths
	got, err := Level(Frac(3, 8), measure)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = Level(Frac(1, 8), measure)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestLevelPartialMeasureOffset(t *testing.T) {
	// a pickup measure: beat 0 in the notation is 3/4 into the notated bar
	measure := model.MeasureRow{MC: 1, ActDur: Frac(1, 4), Offset: Frac(3, 4), TimeSig: "4/4"}

	got, err := Level(Frac(0, 1), measure)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = Level(Frac(1, 4), measure)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestLevelCache(t *testing.T) {
	measure := model.MeasureRow{MC: 1, ActDur: Frac(1, 1), Offset: new(big.Rat), TimeSig: "4/4"}
	cache := NewLevelCache()

	first, err := cache.Get(measure, Frac(1, 2))
	require.NoError(t, err)
	second, err := cache.Get(measure, Frac(1, 2))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, first)
}

func TestMeasuresDataRoundTrip(t *testing.T) {
	measures := testMeasures()
	data := MeasuresToData(measures)
	restored, err := MeasuresFromData(data)
	require.NoError(t, err)
	assert.Equal(t, MeasuresToData(restored), data)
}

func TestParseFrac(t *testing.T) {
	f, err := ParseFrac("3/4")
	require.NoError(t, err)
	assert.Equal(t, 0, f.Cmp(Frac(3, 4)))

	f, err = ParseFrac("0.5")
	require.NoError(t, err)
	assert.Equal(t, 0, f.Cmp(Frac(1, 2)))

	_, err = ParseFrac("lol")
	assert.Error(t, err)
}
