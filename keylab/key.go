// Package keylab holds the key entity used for key segmentation.
package keylab

import (
	"fmt"

	"github.com/jsphweid/harmalign/model"
	"github.com/jsphweid/harmalign/pitch"
)

// Key is one key segment. It keeps both the annotated local key and the key
// implied by a relative root, so repeat detection can honor either reading.
type Key struct {
	GlobalTonic int
	GlobalMode  pitch.Mode
	LocalTonic  int
	LocalMode   pitch.Mode
	RelTonic    int
	RelMode     pitch.Mode
	HasRel      bool
}

// FromRow parses the key context of a chords-table row.
func FromRow(row model.ChordRow) (Key, error) {
	globalTonic, err := pitch.ParseKeyName(row.GlobalKey)
	if err != nil {
		return Key{}, err
	}
	globalMode := pitch.ModeMajor
	if row.GlobalKeyIsMinor {
		globalMode = pitch.ModeMinor
	}

	localTonic, err := pitch.NumeralRoot(row.LocalKey, globalTonic, globalMode)
	if err != nil {
		return Key{}, err
	}
	localMode := pitch.ModeMajor
	if row.LocalKeyIsMinor {
		localMode = pitch.ModeMinor
	}

	k := Key{
		GlobalTonic: globalTonic,
		GlobalMode:  globalMode,
		LocalTonic:  localTonic,
		LocalMode:   localMode,
		RelTonic:    localTonic,
		RelMode:     localMode,
	}
	if row.RelativeRoot != "" {
		relTonic, relMode, err := pitch.ApplyRelativeRoot(localTonic, localMode, row.RelativeRoot)
		if err != nil {
			return Key{}, err
		}
		k.RelTonic = relTonic
		k.RelMode = relMode
		k.HasRel = true
	}
	return k, nil
}

// EffectiveTonic is the tonic the key answers to: the relative root's key
// when useRelative and one is present, otherwise the annotated local key.
func (k Key) EffectiveTonic(useRelative bool) (int, pitch.Mode) {
	if useRelative && k.HasRel {
		return k.RelTonic, k.RelMode
	}
	return k.LocalTonic, k.LocalMode
}

// IsRepeated reports whether this key matches its predecessor under the
// chosen relative-root reading.
func (k Key) IsRepeated(prev Key, useRelative bool) bool {
	if k.GlobalTonic != prev.GlobalTonic || k.GlobalMode != prev.GlobalMode {
		return false
	}
	tonic, mode := k.EffectiveTonic(useRelative)
	prevTonic, prevMode := prev.EffectiveTonic(useRelative)
	return tonic == prevTonic && mode == prevMode
}

func (k Key) ToData() model.KeyData {
	return model.KeyData{
		GlobalTonic: k.GlobalTonic,
		GlobalMode:  int(k.GlobalMode),
		LocalTonic:  k.LocalTonic,
		LocalMode:   int(k.LocalMode),
		RelTonic:    k.RelTonic,
		RelMode:     int(k.RelMode),
		HasRel:      k.HasRel,
	}
}

func FromData(d model.KeyData) Key {
	return Key{
		GlobalTonic: d.GlobalTonic,
		GlobalMode:  pitch.Mode(d.GlobalMode),
		LocalTonic:  d.LocalTonic,
		LocalMode:   pitch.Mode(d.LocalMode),
		RelTonic:    d.RelTonic,
		RelMode:     pitch.Mode(d.RelMode),
		HasRel:      d.HasRel,
	}
}

// Name is for logs and inspect output, e.g. "d#:minor".
func (k Key) Name() string {
	tonic, mode := k.EffectiveTonic(true)
	return fmt.Sprintf("%v:%v", pitch.ClassNames[tonic], mode)
}
