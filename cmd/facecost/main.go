package main

import "github.com/Simplici0/facecost/internal/cli"

func main() {
	cli.Execute()
}
