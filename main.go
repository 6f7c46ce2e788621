package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/thenoetrevino/tablero/cmd"
	"github.com/thenoetrevino/tablero/internal/cli"
)

func main() {
	err := cmd.Execute()
	if err == nil {
		return
	}

	// Command failures were already reported by the formatter
	var exit *cli.ExitCodeError
	if !errors.As(err, &exit) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCodeFor(err))
}
