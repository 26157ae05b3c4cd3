package main

import "github.com/mcoot/secrets/internal/cli"

func main() {
	cli.Execute()
}
