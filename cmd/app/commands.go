package main

import (
	"github.com/urfave/cli/v3"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getCryptoCommands()...)
	cmds = append(cmds, getRegistryCommands()...)
	cmds = append(cmds, getSessionCommands()...)
	return cmds
}

// formatFlag is the shared --format flag of commands printing a result.
func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}
