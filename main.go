package main

import (
	"os"

	"github.com/jlynch25/ticketbox/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
