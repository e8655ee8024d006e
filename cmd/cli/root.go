package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reposcribe-cli",
	Short: "reposcribe-cli is a CLI tool for the documentation pipeline",
	Long:  `A command-line interface for inspecting the repository documentation pipeline.`,
}

func Execute() error {
	return rootCmd.Execute()
}
