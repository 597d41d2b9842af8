// Package main provides the ledger API server and its maintenance commands.
package main

import (
	"os"

	_ "github.com/lib/pq"

	"github.com/go-petr/pet-ledger/cmd/ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
