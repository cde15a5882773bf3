// filedash - command-line dashboard for a personal file-storage service.
package main

import (
	"fmt"
	"os"

	"github.com/filedash/filedash/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
