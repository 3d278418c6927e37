package main

import "txjs-cli/internal/cli"

func main() {
	cli.Execute()
}
