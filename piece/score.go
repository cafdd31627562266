package piece

import (
	"fmt"
	"log/slog"
	"math/big"
	"sort"

	"github.com/jsphweid/harmalign/chordlab"
	"github.com/jsphweid/harmalign/keylab"
	"github.com/jsphweid/harmalign/model"
	"github.com/jsphweid/harmalign/note"
	"github.com/jsphweid/harmalign/pitch"
	"github.com/jsphweid/harmalign/rhythm"
)

// Options configure piece construction.
type Options struct {
	Name string
	// Reduction maps annotated chord types onto stored ones (nil keeps
	// every type as annotated).
	Reduction     map[pitch.ChordType]pitch.ChordType
	UseInversions bool
	UseRelative   bool
}

// ScorePiece is the score-backed Piece variant. Built once, frozen after;
// only the duration cache is filled in lazily.
type ScorePiece struct {
	name     string
	measures model.MeasureMap

	notes        []note.Note
	chords       []chordlab.Chord
	keys         []keylab.Key
	chordChanges []int
	chordRanges  [][2]int
	keyChanges   []int

	durCache    []*big.Rat
	durCacheSet bool
}

// missing-value sentinel for the key-change diff; equal to itself, so two
// missing cells never split a key segment
const missingKey = "-1"

func orMissing(s string) string {
	if s == "" {
		return missingKey
	}
	return s
}

// keyTuple is the composite of the five key-defining columns of a chord row.
func keyTuple(row model.ChordRow) [5]string {
	return [5]string{
		orMissing(row.GlobalKey),
		fmt.Sprintf("%v", row.GlobalKeyIsMinor),
		fmt.Sprintf("%v", row.LocalKeyIsMinor),
		orMissing(row.LocalKey),
		orMissing(row.RelativeRoot),
	}
}

// rangeStart returns the index of the first note inside a range starting at
// onset: the first note that begins at or after the onset, or is still
// sounding across it. First match wins.
func rangeStart(onset rhythm.Pos, notes []note.Note) int {
	for i, n := range notes {
		if !n.Onset.Less(onset) || onset.Less(n.Offset) {
			return i
		}
	}
	return len(notes)
}

// NewScorePiece builds a piece from its three tables. Rows that fail to
// parse are logged and dropped; only a malformed measure graph or time
// signature aborts the whole piece.
func NewScorePiece(
	noteRows []model.NoteRow,
	chordRows []model.ChordRow,
	measures model.MeasureMap,
	opts Options,
) (*ScorePiece, error) {
	p := &ScorePiece{name: opts.Name, measures: measures}
	levels := rhythm.NewLevelCache()

	for i, row := range noteRows {
		n, err := note.FromRow(row, measures, levels)
		if err != nil {
			slog.Warn("skipping note row", "piece", opts.Name, "row", i, "err", err)
			continue
		}
		p.notes = append(p.notes, n)
	}

	chordOpts := chordlab.Options{
		Reduction:     opts.Reduction,
		UseInversions: opts.UseInversions,
		UseRelative:   opts.UseRelative,
	}
	var chords []chordlab.Chord
	var chordIlocs []int
	for i, row := range chordRows {
		c, err := chordlab.FromRow(row, measures, chordOpts)
		if err != nil {
			slog.Warn("skipping chord row", "piece", opts.Name, "row", i, "err", err)
			continue
		}
		chords = append(chords, c)
		chordIlocs = append(chordIlocs, i)
	}

	// collapse accidentally repeated chords; the survivor absorbs the
	// extent of each discarded repeat
	mask := ReductionMask(len(chords), func(prev, next int) bool {
		return chords[next].IsRepeated(chords[prev], opts.UseInversions)
	})
	var reducedIlocs []int
	for i, c := range chords {
		if mask[i] {
			p.chords = append(p.chords, c)
			reducedIlocs = append(reducedIlocs, chordIlocs[i])
		} else {
			p.chords[len(p.chords)-1].MergeWith(c)
		}
	}

	// the first note at or after each chord's onset, found with a single
	// forward scan over the note sequence
	p.chordChanges = make([]int, len(p.chords))
	noteIndex := 0
	for chordIndex, c := range p.chords {
		for noteIndex+1 < len(p.notes) && p.notes[noteIndex].Onset.Less(c.Onset) {
			noteIndex++
		}
		p.chordChanges[chordIndex] = noteIndex
	}

	p.chordRanges = make([][2]int, len(p.chords))
	for i, c := range p.chords {
		end := len(p.notes)
		if i+1 < len(p.chordChanges) {
			end = p.chordChanges[i+1]
		}
		p.chordRanges[i] = [2]int{rangeStart(c.Onset, p.notes), end}
	}

	// key segmentation: a new segment starts wherever any of the five
	// key-defining columns changes between surviving chord rows
	var keys []keylab.Key
	var keyChanges []int
	var prevTuple [5]string
	for i, iloc := range reducedIlocs {
		tuple := keyTuple(chordRows[iloc])
		if i > 0 && tuple == prevTuple {
			continue
		}
		prevTuple = tuple
		k, err := keylab.FromRow(chordRows[iloc])
		if err != nil {
			slog.Warn("skipping key change", "piece", opts.Name, "chord", i, "err", err)
			continue
		}
		keys = append(keys, k)
		keyChanges = append(keyChanges, i)
	}

	keyMask := ReductionMask(len(keys), func(prev, next int) bool {
		return keys[next].IsRepeated(keys[prev], opts.UseRelative)
	})
	for i, k := range keys {
		if keyMask[i] {
			p.keys = append(p.keys, k)
			p.keyChanges = append(p.keyChanges, keyChanges[i])
		}
	}

	return p, nil
}

// FromData restores a piece from its serialized form. The measure graph is
// not part of the serialization and must be supplied alongside.
func FromData(data model.PieceData, measures model.MeasureMap) (*ScorePiece, error) {
	p := &ScorePiece{name: data.Name, measures: measures}

	for _, d := range data.Notes {
		n, err := note.FromData(d)
		if err != nil {
			return nil, fmt.Errorf("restoring %v: %w", data.Name, err)
		}
		p.notes = append(p.notes, n)
	}
	for _, d := range data.Chords {
		c, err := chordlab.FromData(d)
		if err != nil {
			return nil, fmt.Errorf("restoring %v: %w", data.Name, err)
		}
		p.chords = append(p.chords, c)
	}
	for _, d := range data.Keys {
		p.keys = append(p.keys, keylab.FromData(d))
	}

	p.chordChanges = append([]int{}, data.ChordChanges...)
	p.chordRanges = append([][2]int{}, data.ChordRanges...)
	p.keyChanges = append([]int{}, data.KeyChanges...)
	return p, nil
}

func (p *ScorePiece) Name() string { return p.name }

func (p *ScorePiece) DataType() Type { return TypeScore }

func (p *ScorePiece) Inputs() []note.Note { return p.notes }

func (p *ScorePiece) Chords() []chordlab.Chord { return p.chords }

func (p *ScorePiece) Keys() []keylab.Key { return p.keys }

func (p *ScorePiece) ChordChangeIndices() []int { return p.chordChanges }

func (p *ScorePiece) ChordRanges() [][2]int { return p.chordRanges }

func (p *ScorePiece) KeyChangeIndices() []int { return p.keyChanges }

// Measures exposes the measure graph the piece was built against, for
// callers that restore pieces from serialized payloads.
func (p *ScorePiece) Measures() model.MeasureMap { return p.measures }

func (p *ScorePiece) KeyChangeInputIndices() []int {
	res := make([]int, len(p.keyChanges))
	for i, chordIndex := range p.keyChanges {
		res[i] = p.chordChanges[chordIndex]
	}
	return res
}

func (p *ScorePiece) ChordsWithinRange(start, stop int) []chordlab.Chord {
	startIndex := sort.SearchInts(p.chordChanges, start)
	if startIndex == len(p.chordChanges) || p.chordChanges[startIndex] != start {
		// no exact match: back up to the chord sounding during start
		startIndex--
	}
	if startIndex < 0 {
		startIndex = 0
	}
	if stop < 0 {
		return p.chords[startIndex:]
	}
	endIndex := startIndex + sort.SearchInts(p.chordChanges[startIndex:], stop)
	return p.chords[startIndex:endIndex]
}

// DurationCache computes the inter-onset gaps once and memoizes them. The
// final note's gap runs to the last chord's offset, via a synthetic terminal
// onset.
func (p *ScorePiece) DurationCache() ([]*big.Rat, error) {
	if p.durCacheSet {
		return p.durCache, nil
	}

	cache := make([]*big.Rat, len(p.notes))
	if len(p.notes) > 0 {
		last := p.notes[len(p.notes)-1].Offset
		if len(p.chords) > 0 {
			last = p.chords[len(p.chords)-1].Offset
		}
		for i, n := range p.notes {
			next := last
			if i+1 < len(p.notes) {
				next = p.notes[i+1].Onset
			}
			gap, err := rhythm.RangeLength(n.Onset, next, p.measures)
			if err != nil {
				return nil, fmt.Errorf("duration cache for %v: %w", p.name, err)
			}
			cache[i] = gap
		}
	}

	p.durCache = cache
	p.durCacheSet = true
	return p.durCache, nil
}

func (p *ScorePiece) ChordNoteInputs(window int, ranges [][2]int, changeIndices []int) ([][][]float64, error) {
	useRealChords := false
	if ranges == nil {
		useRealChords = true
		ranges = p.chordRanges
	}
	if changeIndices == nil {
		useRealChords = true
		changeIndices = p.chordChanges
	}
	if len(ranges) != len(changeIndices) {
		return nil, fmt.Errorf("got %v ranges but %v change indices", len(ranges), len(changeIndices))
	}
	if len(ranges) == 0 {
		return nil, nil
	}
	if len(p.chords) == 0 {
		return nil, fmt.Errorf("piece %v has no chords", p.name)
	}

	// ranges and change indices may come straight from clients
	for i, r := range ranges {
		if r[0] < 0 || r[0] > r[1] || r[1] > len(p.notes) {
			return nil, fmt.Errorf("note range %v out of bounds for %v notes", r, len(p.notes))
		}
		if c := changeIndices[i]; c < 0 || c >= len(p.notes) || c > r[1] {
			return nil, fmt.Errorf("change index %v out of bounds for range %v of %v notes", c, r, len(p.notes))
		}
	}

	durCache, err := p.DurationCache()
	if err != nil {
		return nil, err
	}
	lastOffset := p.chords[len(p.chords)-1].Offset

	res := make([][][]float64, 0, len(ranges))
	for i, r := range ranges {
		onsetIndex, offsetIndex := r[0], r[1]
		changeIndex := changeIndices[i]

		var chord *chordlab.Chord
		duration := new(big.Rat)
		if useRealChords {
			chord = &p.chords[i]
			duration = chord.Duration
		} else {
			for _, gap := range durCache[changeIndex:offsetIndex] {
				duration.Add(duration, gap)
			}
		}

		onset := p.notes[changeIndex].Onset
		offset := lastOffset
		if offsetIndex < len(p.notes) {
			offset = p.notes[offsetIndex].Onset
		}

		tensor, err := ChordNoteWindow(WindowParams{
			Notes:         p.notes,
			Measures:      p.measures,
			ChordOnset:    onset,
			ChordOffset:   offset,
			ChordDuration: duration,
			ChangeIndex:   changeIndex,
			OnsetIndex:    onsetIndex,
			OffsetIndex:   offsetIndex,
			Window:        window,
			DurationCache: durCache,
			Chord:         chord,
		})
		if err != nil {
			return nil, err
		}
		res = append(res, tensor)
	}
	return res, nil
}

// ToData flattens the piece to primitives. Round-tripping through FromData
// reproduces every array exactly.
func (p *ScorePiece) ToData() model.PieceData {
	data := model.PieceData{
		Name:         p.name,
		Notes:        make([]model.NoteData, len(p.notes)),
		Chords:       make([]model.ChordData, len(p.chords)),
		Keys:         make([]model.KeyData, len(p.keys)),
		ChordChanges: append([]int{}, p.chordChanges...),
		ChordRanges:  append([][2]int{}, p.chordRanges...),
		KeyChanges:   append([]int{}, p.keyChanges...),
	}
	for i, n := range p.notes {
		data.Notes[i] = n.ToData()
	}
	for i, c := range p.chords {
		data.Chords[i] = c.ToData()
	}
	for i, k := range p.keys {
		data.Keys[i] = k.ToData()
	}
	return data
}
