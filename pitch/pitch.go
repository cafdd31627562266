package pitch

import (
	"fmt"
	"strings"
)

const NumPitchClasses = 12

// ClassNames maps semitone pitch classes to their plain names.
var ClassNames = [NumPitchClasses]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

type Mode int

const (
	ModeMajor Mode = iota
	ModeMinor
)

func (m Mode) String() string {
	if m == ModeMinor {
		return "minor"
	}
	return "major"
}

var letterClasses = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// AccidentalAdjustment counts the sharps or flats on one end of a symbol and
// returns the adjustment in semitones plus the symbol with them stripped.
// inFront handles prefixed accidentals ("#vii"), otherwise suffixed ("Ab").
func AccidentalAdjustment(s string, inFront bool) (int, string) {
	adj := 0
	if inFront {
		for len(s) > 0 && (s[0] == '#' || s[0] == 'b') {
			if s[0] == '#' {
				adj++
			} else {
				adj--
			}
			s = s[1:]
		}
		return adj, s
	}
	for len(s) > 1 && (s[len(s)-1] == '#' || s[len(s)-1] == 'b') {
		if s[len(s)-1] == '#' {
			adj++
		} else {
			adj--
		}
		s = s[:len(s)-1]
	}
	return adj, s
}

// ParseKeyName parses a key name like "Ab" or "f#" into a semitone pitch
// class. Case carries mode in corpus labels but is ignored here; the minor
// flag columns are authoritative for mode.
func ParseKeyName(name string) (int, error) {
	adj, letter := AccidentalAdjustment(name, false)
	if len(letter) != 1 {
		return 0, fmt.Errorf("malformed key name %q", name)
	}
	class, ok := letterClasses[letter[0]&^0x20]
	if !ok {
		return 0, fmt.Errorf("malformed key name %q", name)
	}
	return ((class+adj)%NumPitchClasses + NumPitchClasses) % NumPitchClasses, nil
}

var majorDegrees = [7]int{0, 2, 4, 5, 7, 9, 11}
var minorDegrees = [7]int{0, 2, 3, 5, 7, 8, 10}

var numeralDegrees = map[string]int{
	"I": 0, "II": 1, "III": 2, "IV": 3, "V": 4, "VI": 5, "VII": 6,
}

// ParseNumeral splits a roman numeral like "#vii" into its scale degree
// (0-based), accidental adjustment, and whether it was written lowercase.
func ParseNumeral(numeral string) (degree, adj int, lower bool, err error) {
	adj, rest := AccidentalAdjustment(numeral, true)
	if rest == "" {
		return 0, 0, false, fmt.Errorf("malformed numeral %q", numeral)
	}
	lower = rest == strings.ToLower(rest)
	degree, ok := numeralDegrees[strings.ToUpper(rest)]
	if !ok {
		return 0, 0, false, fmt.Errorf("malformed numeral %q", numeral)
	}
	return degree, adj, lower, nil
}

// NumeralRoot resolves a roman numeral against a key to a semitone pitch
// class, respecting the key's mode for the degree and any accidentals on the
// numeral.
func NumeralRoot(numeral string, tonic int, mode Mode) (int, error) {
	degree, adj, _, err := ParseNumeral(numeral)
	if err != nil {
		return 0, err
	}
	degrees := majorDegrees
	if mode == ModeMinor {
		degrees = minorDegrees
	}
	class := tonic + degrees[degree] + adj
	return (class%NumPitchClasses + NumPitchClasses) % NumPitchClasses, nil
}

// ApplyRelativeRoot folds a relative-root label (possibly a chain like
// "V/V") into the key it is relative to, returning the implied local key. A
// lowercase numeral implies a minor key.
func ApplyRelativeRoot(tonic int, mode Mode, relative string) (int, Mode, error) {
	parts := strings.Split(relative, "/")
	// chains apply right to left: "V/V" is the dominant of the dominant
	for i := len(parts) - 1; i >= 0; i-- {
		root, err := NumeralRoot(parts[i], tonic, mode)
		if err != nil {
			return 0, ModeMajor, err
		}
		_, _, lower, err := ParseNumeral(parts[i])
		if err != nil {
			return 0, ModeMajor, err
		}
		tonic = root
		if lower {
			mode = ModeMinor
		} else {
			mode = ModeMajor
		}
	}
	return tonic, mode, nil
}
