package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/agentdeck/agentdeck/internal/pkg/logs"
)

func main() {
	cmd := &cli.Command{
		Name:  "agentdeck",
		Usage: "Backend for the AgentDeck agent dashboard",
		Commands: []*cli.Command{
			serveHwd.cmd(),
			triggerHwd.cmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logs.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}
