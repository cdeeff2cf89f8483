package main

import "guild-sync/cmd"

func main() {
	cmd.Execute()
}
