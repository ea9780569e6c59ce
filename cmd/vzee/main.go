package main

import "github.com/vzeefun/vzee/internal/cli"

func main() {
	cli.Execute()
}
