// Command houseprice estimates house prices from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/okian/houseprice/internal/cli"
)

func main() {
	if err := cli.New(cli.Options{}).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
