package main

import "github.com/zinc-sig/ghostci/cmd"

func main() {
	cmd.Execute()
}
