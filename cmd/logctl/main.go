package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/devlogs/internal/logctl"
)

func main() {
	if err := logctl.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
