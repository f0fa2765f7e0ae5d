package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pixst",
	Short: "Manage and duplicate microscopy object graphs",
	Long: `pixst manages projects, datasets, images and their annotations
and duplicates entire graphs of them without copying the underlying
binary pixel data.`,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the config file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
