package main

import (
	"os"

	"github.com/ranwatch-systems/ranwatch/tools/kpm-seeder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
