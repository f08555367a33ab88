package main

import (
	"github.com/joho/godotenv"

	"github.com/DankHaloRing/Vibe-Studio1/internal/cli"
)

func main() {
	// API keys may live in a local .env; a missing file is fine.
	godotenv.Load()

	cli.Execute()
}
