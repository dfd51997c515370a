package main

import (
	"github.com/solstice-ai/artemis-connectors/internal/cli"
)

func main() {
	cli.Execute()
}
