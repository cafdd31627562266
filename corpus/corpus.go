// Package corpus loads the raw per-piece tables (files, measures, notes,
// chords) from tab-separated corpus exports. It only types the cells; all
// musical validation happens in the entity parsers.
package corpus

import (
	"encoding/csv"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jsphweid/harmalign/model"
	"github.com/jsphweid/harmalign/rhythm"
)

const (
	FilesTable    = "files.tsv"
	MeasuresTable = "measures.tsv"
	NotesTable    = "notes.tsv"
	ChordsTable   = "chords.tsv"
)

type FileInfo struct {
	Corpus   string
	Filename string
}

// Corpus holds every table of a corpus export, grouped by piece id.
type Corpus struct {
	Files    map[int]FileInfo
	Measures map[int]model.MeasureMap
	Notes    map[int][]model.NoteRow
	Chords   map[int][]model.ChordRow
}

// row gives name-based access to one TSV record.
type row struct {
	cols   map[string]int
	fields []string
}

func (r row) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	v := r.fields[i]
	// corpus exports write missing cells a few different ways
	if v == "NA" || v == "NaN" || v == "<NA>" {
		return ""
	}
	return v
}

func (r row) intOr(name string, fallback int) int {
	v, err := strconv.Atoi(r.str(name))
	if err != nil {
		return fallback
	}
	return v
}

func (r row) boolVal(name string) bool {
	switch r.str(name) {
	case "1", "True", "true", "TRUE":
		return true
	}
	return false
}

// fracOrNil leaves missing or malformed fractions nil; the entity parsers
// decide whether that sinks the row.
func (r row) fracOrNil(name string) *big.Rat {
	v := r.str(name)
	if v == "" {
		return nil
	}
	f, err := rhythm.ParseFrac(v)
	if err != nil {
		return nil
	}
	return f
}

func readTable(path string, fn func(r row)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("reading %v: %w", path, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("reading %v: no header row", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	for _, fields := range records[1:] {
		fn(row{cols: cols, fields: fields})
	}
	return nil
}

// Load reads the four corpus tables from dir.
func Load(dir string) (*Corpus, error) {
	c := &Corpus{
		Files:    make(map[int]FileInfo),
		Measures: make(map[int]model.MeasureMap),
		Notes:    make(map[int][]model.NoteRow),
		Chords:   make(map[int][]model.ChordRow),
	}

	err := readTable(filepath.Join(dir, FilesTable), func(r row) {
		id := r.intOr("id", -1)
		if id < 0 {
			return
		}
		c.Files[id] = FileInfo{Corpus: r.str("corpus"), Filename: r.str("filename")}
	})
	if err != nil {
		return nil, err
	}

	err = readTable(filepath.Join(dir, MeasuresTable), func(r row) {
		id := r.intOr("id", -1)
		if id < 0 {
			return
		}
		m := model.MeasureRow{
			MC:      r.intOr("mc", 0),
			ActDur:  r.fracOrNil("act_dur"),
			Offset:  r.fracOrNil("offset"),
			TimeSig: r.str("timesig"),
		}
		if m.ActDur == nil {
			m.ActDur = new(big.Rat)
		}
		if m.Offset == nil {
			m.Offset = new(big.Rat)
		}
		if next := r.str("next"); next != "" {
			if n, err := strconv.Atoi(next); err == nil {
				m.Next = &n
			}
		}
		if c.Measures[id] == nil {
			c.Measures[id] = make(model.MeasureMap)
		}
		c.Measures[id][m.MC] = m
	})
	if err != nil {
		return nil, err
	}

	err = readTable(filepath.Join(dir, NotesTable), func(r row) {
		id := r.intOr("id", -1)
		if id < 0 {
			return
		}
		c.Notes[id] = append(c.Notes[id], model.NoteRow{
			MC:       r.intOr("mc", 0),
			Onset:    r.fracOrNil("onset"),
			Duration: r.fracOrNil("duration"),
			MIDI:     r.intOr("midi", -1),
			TPC:      r.intOr("tpc", 0),
			Voice:    r.intOr("voice", 0),
			Tied:     r.boolVal("tied"),
		})
	})
	if err != nil {
		return nil, err
	}

	err = readTable(filepath.Join(dir, ChordsTable), func(r row) {
		id := r.intOr("id", -1)
		if id < 0 {
			return
		}
		c.Chords[id] = append(c.Chords[id], model.ChordRow{
			MC:               r.intOr("mc", 0),
			Onset:            r.fracOrNil("onset"),
			Duration:         r.fracOrNil("duration"),
			GlobalKey:        r.str("globalkey"),
			GlobalKeyIsMinor: r.boolVal("globalkey_is_minor"),
			LocalKey:         r.str("localkey"),
			LocalKeyIsMinor:  r.boolVal("localkey_is_minor"),
			RelativeRoot:     r.str("relativeroot"),
			Numeral:          r.str("numeral"),
			ChordType:        r.str("chord_type"),
			FigBass:          r.str("figbass"),
		})
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}
