// Package main is the entry point for the salesdash application
package main

import (
	"github.com/salesdash/salesdash/cmd"
)

func main() {
	cmd.Execute()
}
