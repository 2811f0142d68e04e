package main

import "github.com/bryanchriswhite/gamewatch/cmd/gamewatch/commands"

func main() {
	commands.Execute()
}
