package main

import "github.com/qolzam/forum/internal/cli"

func main() {
	cli.Execute()
}
