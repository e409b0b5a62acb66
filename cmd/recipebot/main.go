// recipebot searches recipes from the terminal, by keyboard or voice,
// and keeps the last results for offline use.
//
// Usage:
//
//	recipebot [global flags] [tui]
//	recipebot [global flags] search <query...>
//	recipebot [global flags] saved
package main

import (
	"fmt"
	"os"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	app := newCLIApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
