package main

import (
	"os"

	"github.com/wonny/fundfactor/cmd/fundfactor/commands"
)

// main is the entry point for the fundfactor CLI
// ⭐ single CLI entry point: go run ./cmd/fundfactor [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
