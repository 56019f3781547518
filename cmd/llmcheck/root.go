package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "llmcheck"}

	root.AddCommand(serveCMD(), migrateCMD(), scanCMD(), grantCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
