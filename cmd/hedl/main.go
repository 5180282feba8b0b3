package main

import (
	"os"

	"github.com/hedl-dev/hedl/cmd/hedl/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
