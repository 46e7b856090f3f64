package main

import "github.com/relloyd/billpipe/cmd"

func main() {
	cmd.Execute()
}
