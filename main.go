package main

import (
	"packvault/cmd"
)

func main() {
	cmd.Execute()
}
