package main

import (
	"os"

	"github.com/hevytools/notion-sync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
