package main

import (
	"os"

	"github.com/idw-coder/quizterm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
