package main

import (
	"github.com/posixfs/fs-contract-tests/cmd"
)

func main() {
	cmd.Execute()
}
