package main

import (
	"github.com/joho/godotenv"

	"intentbot/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
