package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/jsphweid/harmalign/catalog"
	"github.com/jsphweid/harmalign/chunk"
	"github.com/jsphweid/harmalign/constants"
	"github.com/jsphweid/harmalign/corpus"
	"github.com/jsphweid/harmalign/dataset"
	"github.com/jsphweid/harmalign/model"
	"github.com/jsphweid/harmalign/piece"
	"github.com/jsphweid/harmalign/rhythm"
	"github.com/jsphweid/harmalign/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds pieces and datasets from the corpus",
	Long:  `Builds pieces and datasets from the corpus`,
	Run: func(cmd *cobra.Command, args []string) {
		var maxNum int
		if len(args) == 1 {
			arg1, err := strconv.Atoi(args[0])
			if err != nil {
				panic(err)
			}
			maxNum = arg1
		}

		Build(maxNum)
	},
}

// Build runs the whole pipeline: corpus tables in, chunks plus catalog plus
// padded datasets out. Exported for the e2e test.
func Build(maxNum int) {
	outDir := constants.GetIndexDir()
	util.RecreateOutputDir(outDir)

	c, err := corpus.Load(constants.GetCorpusDir())
	if err != nil {
		panic("Could not load corpus: " + err.Error())
	}

	pieces := corpus.BuildPieces(c, maxNum, piece.Options{
		UseInversions: true,
		UseRelative:   true,
	})
	fmt.Printf("Built %v of %v corpus pieces\n", len(pieces), len(c.Files))

	cat, err := catalog.Open(filepath.Join(outDir, constants.CatalogFile))
	if err != nil {
		panic("Could not open catalog: " + err.Error())
	}
	defer cat.Close()

	payloads := make([]model.PiecePayload, 0, len(pieces))
	for i, p := range pieces {
		fmt.Printf("Packing %v of %v pieces\n", i+1, len(pieces))
		payloads = append(payloads, model.PiecePayload{
			Piece:    p.ToData(),
			Measures: rhythm.MeasuresToData(p.Measures()),
		})

		if err := cat.RecordPiece(pieceRecord(p)); err != nil {
			panic("Could not record piece in catalog: " + err.Error())
		}
	}

	chunks := chunk.CreateAll(payloads)
	util.CreateBinary(filepath.Join(outDir, constants.AllChunksFile), chunks)

	writeDatasets(outDir, pieces)
}

func pieceRecord(p *piece.ScorePiece) catalog.PieceRecord {
	rec := catalog.PieceRecord{
		Name:      p.Name(),
		NumNotes:  len(p.Inputs()),
		NumChords: len(p.Chords()),
		NumKeys:   len(p.Keys()),
	}
	cache, err := p.DurationCache()
	if err != nil {
		panic("Could not compute duration cache: " + err.Error())
	}
	for _, gap := range cache {
		f, _ := gap.Float64()
		rec.TotalDuration += f
	}
	return rec
}

func writeDatasets(outDir string, scorePieces []*piece.ScorePiece) {
	pieces := make([]piece.Piece, len(scorePieces))
	for i, p := range scorePieces {
		pieces[i] = p
	}

	transition, err := dataset.NewChordTransitionDataset(pieces)
	if err != nil {
		panic("Could not build chord transition dataset: " + err.Error())
	}
	transition.Pad()
	util.CreateBinary(filepath.Join(outDir, constants.TransitionDatasetFile), transition)

	classification, err := dataset.NewChordClassificationDataset(pieces, true)
	if err != nil {
		panic("Could not build chord classification dataset: " + err.Error())
	}
	classification.Pad()
	util.CreateBinary(filepath.Join(outDir, constants.ClassificationDatasetFile), classification)
}
