package main

import (
	"os"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
