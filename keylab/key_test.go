package keylab

import (
	"testing"

	"github.com/jsphweid/harmalign/model"
	"github.com/jsphweid/harmalign/pitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRow(t *testing.T) {
	row := model.ChordRow{GlobalKey: "a", GlobalKeyIsMinor: true, LocalKey: "III"}
	k, err := FromRow(row)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(9, k.GlobalTonic)
	assert.Equal(pitch.ModeMinor, k.GlobalMode)
	// the mediant of a minor is C
	assert.Equal(0, k.LocalTonic)
	assert.Equal(pitch.ModeMajor, k.LocalMode)
	assert.False(k.HasRel)
	assert.Equal(0, k.RelTonic)
}

func TestFromRowRelativeRoot(t *testing.T) {
	row := model.ChordRow{GlobalKey: "C", LocalKey: "I", RelativeRoot: "vi"}
	k, err := FromRow(row)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.True(k.HasRel)
	assert.Equal(9, k.RelTonic)
	assert.Equal(pitch.ModeMinor, k.RelMode)

	tonic, mode := k.EffectiveTonic(true)
	assert.Equal(9, tonic)
	assert.Equal(pitch.ModeMinor, mode)

	tonic, mode = k.EffectiveTonic(false)
	assert.Equal(0, tonic)
	assert.Equal(pitch.ModeMajor, mode)
}

func TestFromRowRejectsBadRows(t *testing.T) {
	bad := []model.ChordRow{
		{GlobalKey: "", LocalKey: "I"},
		{GlobalKey: "C", LocalKey: "XI"},
		{GlobalKey: "C", LocalKey: "I", RelativeRoot: "nope"},
	}
	for i, row := range bad {
		_, err := FromRow(row)
		assert.Error(t, err, "row %v", i)
	}
}

func TestIsRepeated(t *testing.T) {
	rowA := model.ChordRow{GlobalKey: "C", LocalKey: "I"}
	rowB := model.ChordRow{GlobalKey: "C", LocalKey: "I", RelativeRoot: "V"}

	a, err := FromRow(rowA)
	require.NoError(t, err)
	b, err := FromRow(rowB)
	require.NoError(t, err)

	assert := assert.New(t)
	// same annotated local key, different relative reading
	assert.True(b.IsRepeated(a, false))
	assert.False(b.IsRepeated(a, true))

	// a different global key is never a repeat
	rowC := model.ChordRow{GlobalKey: "G", LocalKey: "IV"}
	c, err := FromRow(rowC)
	require.NoError(t, err)
	assert.False(c.IsRepeated(a, false))
}

func TestDataRoundTrip(t *testing.T) {
	row := model.ChordRow{GlobalKey: "f#", GlobalKeyIsMinor: true, LocalKey: "v", LocalKeyIsMinor: true, RelativeRoot: "V"}
	k, err := FromRow(row)
	require.NoError(t, err)

	restored := FromData(k.ToData())
	assert.Equal(t, k, restored)
	assert.Equal(t, k.ToData(), restored.ToData())
}
