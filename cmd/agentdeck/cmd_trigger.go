package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/agentdeck/agentdeck/internal/consts"
	"github.com/agentdeck/agentdeck/internal/trigger"
)

var triggerHwd = &TriggerRunner{}

type TriggerRunner struct{}

func (r *TriggerRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "trigger",
		Usage: "Inspect scheduled triggers",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all persisted triggers",
				Action: r.list,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "store",
						Usage: "Path to the trigger store file",
						Value: consts.DefaultTriggerStorePath(),
					},
				},
			},
			{
				Name:      "describe",
				Usage:     "Print the human-readable description of a cron expression",
				ArgsUsage: "<cron expression>",
				Action:    r.describe,
			},
			{
				Name:      "validate",
				Usage:     "Validate a cron expression and show its schedule",
				ArgsUsage: "<cron expression>",
				Action:    r.validate,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "timezone",
						Usage: "IANA timezone for next-run computation",
						Value: "UTC",
					},
				},
			},
		},
	}
}

func (r *TriggerRunner) list(_ context.Context, cmd *cli.Command) error {
	store := trigger.NewStore(cmd.String("store"))
	if err := store.Load(); err != nil {
		return fmt.Errorf("load triggers: %w", err)
	}

	fmt.Print(trigger.FormatList(store.List()))
	return nil
}

func (r *TriggerRunner) describe(_ context.Context, cmd *cli.Command) error {
	expr := cmd.Args().First()
	if expr == "" {
		return fmt.Errorf("usage: agentdeck trigger describe \"0 8 * * 1\"")
	}

	parsed, err := trigger.ValidateCron(expr)
	if err != nil {
		return err
	}

	fmt.Println(parsed.Describe())
	return nil
}

func (r *TriggerRunner) validate(_ context.Context, cmd *cli.Command) error {
	expr := cmd.Args().First()
	if expr == "" {
		return fmt.Errorf("usage: agentdeck trigger validate \"0 8 * * 1\"")
	}

	parsed, err := trigger.ValidateCron(expr)
	if err != nil {
		return err
	}

	timezone := cmd.String("timezone")
	next, err := parsed.NextRun(timezone, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("expression: %s\n", parsed.Expression)
	fmt.Printf("schedule:   %s\n", parsed.Describe())
	fmt.Printf("next run:   %s (%s)\n", next.Format(time.RFC3339), timezone)
	return nil
}
