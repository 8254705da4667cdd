package main

import "github.com/ercanvas/locamoo/internal/cli"

func main() {
	cli.Execute()
}
