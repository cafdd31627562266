package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "harmalign",
	Short: "Harmonic analysis dataset builder",
	Long:  `Builds aligned note/chord/key datasets from annotated score corpora.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
