package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jsphweid/harmalign/catalog"
	"github.com/jsphweid/harmalign/constants"
	"github.com/jsphweid/harmalign/db"
	"github.com/jsphweid/harmalign/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a report",
	Long:  `Creates a report`,
	Run: func(cmd *cobra.Command, args []string) {
		report()
	},
}

func analyzeChunkFiles() (numFiles int64, numBytes uint64) {
	files, err := os.ReadDir(constants.GetIndexDir())
	if err != nil {
		panic("Could not read dir because: " + err.Error())
	}

	var sizes []int64
	r, _ := regexp.Compile("^[0-9a-fA-F]{8}-([0-9a-fA-F]{4}-){3}[0-9a-fA-F]{12}.dat$")
	for _, file := range files {
		if r.MatchString(file.Name()) {
			numFiles += 1
			info, err := file.Info()
			if err != nil {
				panic("Could not get file stats")
			}
			sizes = append(sizes, info.Size())
		}
	}
	return numFiles, util.Sum(sizes)
}

func report() {
	cat, err := catalog.Open(filepath.Join(constants.GetIndexDir(), constants.CatalogFile))
	if err != nil {
		panic("Could not open catalog: " + err.Error())
	}
	defer cat.Close()

	stats, err := cat.Stats()
	if err != nil {
		panic("Could not read catalog stats: " + err.Error())
	}

	numChunks, chunkBytes := analyzeChunkFiles()

	fmt.Printf("pieces: %v\n", stats.NumPieces)
	fmt.Printf("notes: %v\n", stats.NumNotes)
	fmt.Printf("chords: %v\n", stats.NumChords)
	fmt.Printf("keys: %v\n", stats.NumKeys)
	fmt.Printf("total duration (whole notes): %.1f\n", stats.TotalDuration)
	fmt.Printf("chunks: %v (%v bytes)\n", numChunks, chunkBytes)

	if constants.GetMetadataDB() == "" {
		return
	}

	recs, err := cat.AllPieces()
	if err != nil {
		panic("Could not list catalog pieces: " + err.Error())
	}
	for start := 0; start < len(recs); start += 10 {
		end := util.Min(start+10, len(recs))
		var names []string
		for _, rec := range recs[start:end] {
			names = append(names, rec.Name)
		}
		for name, meta := range db.GetPieceMetadatas(names) {
			fmt.Printf("%v: %v - %v (%v)\n", name, meta.Composer, meta.Title, meta.Year)
		}
	}
}
