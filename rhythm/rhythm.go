package rhythm

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/jsphweid/harmalign/model"
)

// Pos is a metrical position: a measure id plus a beat offset within the
// measure, where a beat of 1 is one whole note. After repeat resolution the
// measure ids of a piece are monotonic along the Next chain, so ordering is
// plain lexicographic.
type Pos struct {
	MC   int
	Beat *big.Rat
}

func (p Pos) Less(other Pos) bool {
	if p.MC != other.MC {
		return p.MC < other.MC
	}
	return p.Beat.Cmp(other.Beat) < 0
}

func (p Pos) Equal(other Pos) bool {
	return p.MC == other.MC && p.Beat.Cmp(other.Beat) == 0
}

func (p Pos) ToData() model.PosData {
	return model.PosData{MC: p.MC, Beat: FracStr(p.Beat)}
}

func PosFromData(d model.PosData) (Pos, error) {
	beat, err := ParseFrac(d.Beat)
	if err != nil {
		return Pos{}, err
	}
	return Pos{MC: d.MC, Beat: beat}, nil
}

// RangeLength returns the whole-note duration between two metrical positions.
// When the positions share a measure it is just the beat difference (which may
// be negative). Otherwise the remaining duration of the start measure is
// accumulated, then every measure along the Next chain, then the end beat.
// The caller must guarantee the end measure is reachable; a cyclic graph
// would never terminate, which is on whoever broke the single-terminal
// invariant upstream.
func RangeLength(start, end Pos, measures model.MeasureMap) (*big.Rat, error) {
	if start.MC == end.MC {
		return new(big.Rat).Sub(end.Beat, start.Beat), nil
	}

	m, ok := measures[start.MC]
	if !ok {
		return nil, fmt.Errorf("measure %v not in measure map", start.MC)
	}

	length := new(big.Rat).Sub(m.ActDur, start.Beat)
	current := m.Next
	for current != nil && *current != end.MC {
		m, ok = measures[*current]
		if !ok {
			return nil, fmt.Errorf("measure %v not in measure map", *current)
		}
		length.Add(length, m.ActDur)
		current = m.Next
	}
	if current == nil {
		return nil, fmt.Errorf("measure %v unreachable from measure %v", end.MC, start.MC)
	}

	return length.Add(length, end.Beat), nil
}

// PosAfter advances a position by a duration, walking the Next chain when the
// duration spills past the end of a measure. Overhang past the terminal
// measure stays in the terminal measure.
func PosAfter(start Pos, dur *big.Rat, measures model.MeasureMap) (Pos, error) {
	mc := start.MC
	beat := new(big.Rat).Add(start.Beat, dur)
	for {
		m, ok := measures[mc]
		if !ok {
			return Pos{}, fmt.Errorf("measure %v not in measure map", mc)
		}
		if beat.Cmp(m.ActDur) < 0 || m.Next == nil {
			return Pos{MC: mc, Beat: beat}, nil
		}
		beat.Sub(beat, m.ActDur)
		mc = *m.Next
	}
}

// LevelLengths derives the measure, beat and subbeat note-value lengths from a
// "numerator/denominator" time signature. A numerator above 3 and divisible
// by 3 is compound meter (3 subbeats per beat); everything else is simple
// meter (2 subbeats per beat). A malformed signature is a configuration
// problem, not a data-quality one, so it surfaces as an error immediately.
func LevelLengths(timesig string) (measure, beat, subbeat *big.Rat, err error) {
	parts := strings.Split(timesig, "/")
	if len(parts) != 2 {
		return nil, nil, nil, fmt.Errorf("invalid time signature %q", timesig)
	}
	num, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid time signature %q", timesig)
	}
	den, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid time signature %q", timesig)
	}
	if num <= 0 || den <= 0 {
		return nil, nil, nil, fmt.Errorf("invalid time signature %q", timesig)
	}

	if num > 3 && num%3 == 0 {
		// compound meter
		subbeat = big.NewRat(1, int64(den))
		beat = new(big.Rat).Mul(subbeat, big.NewRat(3, 1))
	} else {
		beat = big.NewRat(1, int64(den))
		subbeat = new(big.Rat).Mul(beat, big.NewRat(1, 2))
	}
	return big.NewRat(int64(num), int64(den)), beat, subbeat, nil
}

// Level classifies a beat offset within a measure:
//
//	3: downbeat
//	2: beat
//	1: subbeat
//	0: anything lower
//
// The measure's internal offset shifts the beat first so partial measures
// keep their downbeats where the notation says they are.
func Level(beat *big.Rat, measure model.MeasureRow) (int, error) {
	measureLen, beatLen, subbeatLen, err := LevelLengths(measure.TimeSig)
	if err != nil {
		return 0, err
	}

	b := new(big.Rat).Add(beat, measure.Offset)
	switch {
	case isMultiple(b, measureLen):
		return 3, nil
	case isMultiple(b, beatLen):
		return 2, nil
	case isMultiple(b, subbeatLen):
		return 1, nil
	}
	return 0, nil
}

// LevelCache memoizes Level results across the row parses of one piece, where
// the same (measure, beat) pairs come up over and over. It is scoped to a
// single construction and never shared across goroutines.
type LevelCache struct {
	levels map[int]map[string]int
}

func NewLevelCache() *LevelCache {
	return &LevelCache{levels: make(map[int]map[string]int)}
}

func (c *LevelCache) Get(measure model.MeasureRow, beat *big.Rat) (int, error) {
	byBeat, ok := c.levels[measure.MC]
	if !ok {
		byBeat = make(map[string]int)
		c.levels[measure.MC] = byBeat
	}
	key := beat.RatString()
	if level, ok := byBeat[key]; ok {
		return level, nil
	}
	level, err := Level(beat, measure)
	if err != nil {
		return 0, err
	}
	byBeat[key] = level
	return level, nil
}

// MeasuresToData flattens a measure map for serialization, sorted by mc.
func MeasuresToData(measures model.MeasureMap) []model.MeasureData {
	mcs := make([]int, 0, len(measures))
	for mc := range measures {
		mcs = append(mcs, mc)
	}
	sort.Ints(mcs)
	res := make([]model.MeasureData, 0, len(mcs))
	for _, mc := range mcs {
		m := measures[mc]
		res = append(res, model.MeasureData{
			MC:      m.MC,
			ActDur:  FracStr(m.ActDur),
			Offset:  FracStr(m.Offset),
			TimeSig: m.TimeSig,
			Next:    m.Next,
		})
	}
	return res
}

func MeasuresFromData(data []model.MeasureData) (model.MeasureMap, error) {
	measures := make(model.MeasureMap, len(data))
	for _, d := range data {
		actDur, err := ParseFrac(d.ActDur)
		if err != nil {
			return nil, fmt.Errorf("measure %v: %w", d.MC, err)
		}
		offset, err := ParseFrac(d.Offset)
		if err != nil {
			return nil, fmt.Errorf("measure %v: %w", d.MC, err)
		}
		measures[d.MC] = model.MeasureRow{
			MC:      d.MC,
			ActDur:  actDur,
			Offset:  offset,
			TimeSig: d.TimeSig,
			Next:    d.Next,
		}
	}
	return measures, nil
}
