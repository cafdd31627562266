package model

// Serialized piece structures. Fraction fields are stored as big.Rat strings
// ("3/4", "2") so that round-tripping is exact.

type PosData struct {
	MC   int    `json:"mc"`
	Beat string `json:"beat"`
}

type NoteData struct {
	PitchClass int     `json:"pitch_class"`
	Octave     int     `json:"octave"`
	Onset      PosData `json:"onset"`
	Offset     PosData `json:"offset"`
	Duration   string  `json:"duration"`
	Level      int     `json:"level"`
	Voice      int     `json:"voice"`
	Tied       bool    `json:"tied"`
}

type ChordData struct {
	Root        int     `json:"root"`
	ChordType   string  `json:"chord_type"`
	Inversion   int     `json:"inversion"`
	Onset       PosData `json:"onset"`
	Offset      PosData `json:"offset"`
	Duration    string  `json:"duration"`
	GlobalTonic int     `json:"global_tonic"`
	GlobalMode  int     `json:"global_mode"`
	LocalTonic  int     `json:"local_tonic"`
	LocalMode   int     `json:"local_mode"`
}

type KeyData struct {
	GlobalTonic int  `json:"global_tonic"`
	GlobalMode  int  `json:"global_mode"`
	LocalTonic  int  `json:"local_tonic"`
	LocalMode   int  `json:"local_mode"`
	RelTonic    int  `json:"rel_tonic"`
	RelMode     int  `json:"rel_mode"`
	HasRel      bool `json:"has_rel"`
}

type PieceData struct {
	Name         string      `json:"name"`
	Notes        []NoteData  `json:"notes"`
	Chords       []ChordData `json:"chords"`
	Keys         []KeyData   `json:"keys"`
	ChordChanges []int       `json:"chord_changes"`
	ChordRanges  [][2]int    `json:"chord_ranges"`
	KeyChanges   []int       `json:"key_changes"`
}

type MeasureData struct {
	MC      int    `json:"mc"`
	ActDur  string `json:"act_dur"`
	Offset  string `json:"offset"`
	TimeSig string `json:"timesig"`
	Next    *int   `json:"next"`
}

// PiecePayload is what gets packed into chunk files: the piece plus the
// measure graph needed to rebuild it for window extraction.
type PiecePayload struct {
	Piece    PieceData     `json:"piece"`
	Measures []MeasureData `json:"measures"`
}
