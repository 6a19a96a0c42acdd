package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tripmesh/concierge/cmd/cli/commands"
	"github.com/tripmesh/concierge/internal/logger"
)

func main() {
	// .env is optional for the CLI
	_ = godotenv.Load()
	logger.InitializeAndConfigure()

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
