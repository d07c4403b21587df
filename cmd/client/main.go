package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/cli"
)

func main() {
	// a missing .env is fine; variables may come from the real environment
	_ = godotenv.Load()

	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
