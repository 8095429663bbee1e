package main

import "intentbot/cmd"

func main() {
	cmd.Execute()
}
