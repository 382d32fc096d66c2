package main

import "github.com/pscheid92/gamebridge/internal/cli"

func main() {
	cli.Execute()
}
