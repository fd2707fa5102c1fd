package main

import "github.com/agrobio/biobot/cmd"

func main() {
	cmd.Execute()
}
