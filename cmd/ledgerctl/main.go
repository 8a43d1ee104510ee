package main

import (
	"os"

	"construction-sales-ledger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
