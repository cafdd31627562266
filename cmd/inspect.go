package cmd

import (
	"fmt"
	"sort"

	"github.com/jsphweid/harmalign/chunk"
	"github.com/jsphweid/harmalign/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspects a chunk",
	Long:  `Inspects a chunk`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		inspect(args[0])
	},
}

func inspect(path string) {
	f := util.OpenFileOrPanic(path)
	defer f.Close()

	index, indexLength, err := chunk.ReadIndex(f)
	if err != nil {
		panic("Could not read chunk index: " + err.Error())
	}

	fmt.Printf("index bytes: %v\n", indexLength)
	names := util.GetKeys(index)
	sort.Strings(names)
	for _, name := range names {
		pair := index[name]
		fmt.Printf("piece: %v\n", name)
		fmt.Printf("range: %v\n", pair)
	}
}
