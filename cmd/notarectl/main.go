package main

import (
	"context"
	"fmt"
	"os"

	"notare/internal/commands"
)

func main() {
	if err := commands.New().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "notarectl: %v\n", err)
		os.Exit(1)
	}
}
