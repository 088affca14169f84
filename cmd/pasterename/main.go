// Package main provides the CLI entry point for pasterename.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; settings come from the file and environment.
	_ = godotenv.Load()

	if err := newApp(os.Stdin).rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
