package main

import "github.com/andrescamacho/outpost-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
