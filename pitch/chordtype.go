package pitch

import "fmt"

// ChordType is the quality of a chord symbol, triads and sevenths.
type ChordType int

const (
	Major ChordType = iota
	Minor
	Diminished
	Augmented
	MajMaj7
	MajMin7
	MinMin7
	MinMaj7
	Dim7
	HalfDim7
	AugMin7
	AugMaj7

	NumChordTypes = 12
)

var chordTypeNames = [NumChordTypes]string{
	"M", "m", "o", "+", "MM7", "Mm7", "mm7", "mM7", "o7", "%7", "+7", "+M7",
}

func (ct ChordType) String() string {
	if ct < 0 || ct >= NumChordTypes {
		return "?"
	}
	return chordTypeNames[ct]
}

var chordTypesByName = map[string]ChordType{
	"M": Major, "m": Minor, "o": Diminished, "+": Augmented,
	"MM7": MajMaj7, "Mm7": MajMin7, "mm7": MinMin7, "mM7": MinMaj7,
	"o7": Dim7, "%7": HalfDim7, "+7": AugMin7, "+M7": AugMaj7,
}

func ParseChordType(s string) (ChordType, error) {
	ct, ok := chordTypesByName[s]
	if !ok {
		return 0, fmt.Errorf("unknown chord type %q", s)
	}
	return ct, nil
}

func IsSeventh(ct ChordType) bool {
	return ct >= MajMaj7
}

// NoReduction leaves every chord type as annotated.
var NoReduction = map[ChordType]ChordType{}

// TriadReduction collapses every seventh onto its underlying triad.
var TriadReduction = map[ChordType]ChordType{
	MajMaj7: Major, MajMin7: Major,
	MinMin7: Minor, MinMaj7: Minor,
	Dim7: Diminished, HalfDim7: Diminished,
	AugMin7: Augmented, AugMaj7: Augmented,
}

// Reduce applies a caller-supplied reduction map, passing through types the
// map does not mention.
func Reduce(ct ChordType, reduction map[ChordType]ChordType) ChordType {
	if reduced, ok := reduction[ct]; ok {
		return reduced
	}
	return ct
}

var figbassInversions = map[string]int{
	"": 0, "6": 1, "64": 2,
	"7": 0, "65": 1, "43": 2, "2": 3, "42": 3,
}

// InversionFromFigbass maps a figured-bass label to an inversion number.
func InversionFromFigbass(figbass string) (int, error) {
	inv, ok := figbassInversions[figbass]
	if !ok {
		return 0, fmt.Errorf("unknown figured bass %q", figbass)
	}
	return inv, nil
}

// maximum inversions per chord symbol in the one-hot vocabulary: root
// position plus up to three inversions for sevenths
const numInversions = 4

// NumChordSymbols is the size of the chord one-hot vocabulary.
const NumChordSymbols = NumPitchClasses * NumChordTypes * numInversions

// ChordSymbolIndex returns the dense one-hot index of a chord symbol. With
// useInversion false every inversion collapses onto root position.
func ChordSymbolIndex(root int, ct ChordType, inversion int, useInversion bool) int {
	if !useInversion {
		inversion = 0
	}
	return (root*NumChordTypes+int(ct))*numInversions + inversion
}
