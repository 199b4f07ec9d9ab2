package main

import "github.com/iliyamo/bookit/internal/cli"

func main() {
	cli.Execute()
}
