package main

import (
	"fmt"
	"os"

	"fxconvert/internal/app"
)

func main() {
	if err := app.Run(os.Args[1:]); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "fxconvert: %v\n", err)
		os.Exit(1)
	}
}
