package main

import "github.com/kestrelwm/xflash/cmd/xflash/commands"

func main() {
	commands.Execute()
}
