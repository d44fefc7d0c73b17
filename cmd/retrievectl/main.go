package main

import "github.com/kailas-cloud/docretriever/internal/cli"

func main() {
	cli.Execute()
}
