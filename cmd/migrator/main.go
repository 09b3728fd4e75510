package main

import (
	"github.com/galxe/wallet-migrator/cmd/migrator/cmd"
)

func main() {
	cmd.Execute()
}
