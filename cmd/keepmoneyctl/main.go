// Command keepmoneyctl manages a keepmoney ledger database from the shell.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
