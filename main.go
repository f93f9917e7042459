package main

import (
	"os"

	"github.com/dineshmc1/rag-based-research-paper-assistant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
