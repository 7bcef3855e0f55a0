package main

import (
	"os"

	"github.com/ln64-git/monitorspaces/src/cli"
	"github.com/ln64-git/monitorspaces/src/utility"
)

var version = "0.1.0"

func main() {
	logger := utility.NewLogger(utility.ModeCLI, utility.INFO)
	utility.SetDefault(logger)

	c := cli.NewCLI(version, logger)
	err := c.CreateCommands().Execute()
	c.Logger().Close()
	if err != nil {
		os.Exit(1)
	}
}
