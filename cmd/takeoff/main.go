// Command takeoff runs the BOQ engine over an extraction JSON file from the
// command line.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

func main() {
	app := &App{
		Now:    time.Now,
		Styled: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
	if err := NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
