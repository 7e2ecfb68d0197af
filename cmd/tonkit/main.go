package main

import "github.com/openton/tonkit/internal/cli"

func main() {
	cli.Execute()
}
