package corpus

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/jsphweid/harmalign/piece"
)

// BuildPieces turns every loadable piece of the corpus into a ScorePiece,
// sorted by id. A piece with any missing table is logged and skipped, as is
// a piece whose construction fails: no partial piece ever comes back.
// maxNum caps the number of pieces, 0 meaning all of them.
func BuildPieces(c *Corpus, maxNum int, opts piece.Options) []*piece.ScorePiece {
	ids := make([]int, 0, len(c.Files))
	for id := range c.Files {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var pieces []*piece.ScorePiece
	for _, id := range ids {
		if maxNum > 0 && len(pieces) >= maxNum {
			break
		}
		info := c.Files[id]
		name := fmt.Sprintf("%v/%v", info.Corpus, info.Filename)

		measures, ok := c.Measures[id]
		if !ok {
			slog.Warn("measures table has no data for piece", "piece", name, "id", id)
			continue
		}
		noteRows, ok := c.Notes[id]
		if !ok {
			slog.Warn("notes table has no data for piece", "piece", name, "id", id)
			continue
		}
		chordRows, ok := c.Chords[id]
		if !ok {
			slog.Warn("chords table has no data for piece", "piece", name, "id", id)
			continue
		}

		pieceOpts := opts
		pieceOpts.Name = name
		p, err := piece.NewScorePiece(noteRows, chordRows, measures, pieceOpts)
		if err != nil {
			slog.Error("error building piece", "piece", name, "id", id, "err", err)
			continue
		}
		pieces = append(pieces, p)
	}
	return pieces
}
