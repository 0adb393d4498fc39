package main

import (
	"os"

	"github.com/agentic-research/rootjson/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
