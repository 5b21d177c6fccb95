package main

import (
	"github.com/moa/storefront/cmd"
)

func main() {
	cmd.Start()
}
