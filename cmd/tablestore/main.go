/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/ssargent/tablestore/cmd/tablestore/cmd"
)

func main() {
	cmd.Execute()
}
