package main

import (
	"log/slog"
	"os"

	"github.com/bankcap/banketl/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		slog.Error("banketl failed", "err", err)
		os.Exit(1)
	}
}
