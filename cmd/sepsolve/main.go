package main

import "github.com/forestbook1/sep-solver-sub001/internal/cli"

func main() {
	cli.Execute()
}
