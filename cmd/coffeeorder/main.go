package main

import (
	"os"

	"github.com/project-sy789/coffeeorder-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
