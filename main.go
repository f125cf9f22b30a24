package main

import (
	"os"

	"github.com/thenoetrevino/chores/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
