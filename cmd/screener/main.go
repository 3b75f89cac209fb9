package main

import (
	"os"

	"github.com/ymlin/twscreener/cmd/screener/commands"
)

// main is the entry point for the screener CLI
// ⭐ 統一 CLI 入口: go run ./cmd/screener [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
