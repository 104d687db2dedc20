package main

import "github.com/LeJamon/goTokend/internal/cli"

func main() {
	cli.Execute()
}
