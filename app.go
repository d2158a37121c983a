package main

import "github.com/masmgr/treediff-go/cmd"

func main() {
	cmd.Run()
}
