// Command timebank tracks a persistent, real-time time balance.
package main

import (
	"os"

	"github.com/tutu-network/timebank/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
