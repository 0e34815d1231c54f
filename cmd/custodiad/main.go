package main

import "github.com/vennlabs/custodiad/internal/cli"

func main() {
	cli.Execute()
}
