package main

import (
	cmd "github.com/kerbaras/shinobix/cmd/shinobix"
)

func main() {
	cmd.Execute()
}
