package main

import (
	"os"

	"github.com/marketplace-ledger/ledger-service/cmd/ledgerctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
