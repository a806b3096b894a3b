package main

import (
	"fmt"
	"os"

	"github.com/eamoe/jira-flow-metrics/cmd/jira-flow-metrics/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
