package main

import (
	"os"

	"github.com/rbarbosa/gastos-tracker/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
