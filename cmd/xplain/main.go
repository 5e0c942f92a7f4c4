// Command xplain inspects ML model graphs and compiler IR.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/xplain/internal/cli"
)

func main() {
	if err := cli.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "xplain: load .env: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(cli.Main(os.Args[1:], os.Stdout, os.Stderr))
}
